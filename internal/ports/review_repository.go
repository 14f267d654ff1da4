package ports

import (
	"context"

	"reviewdesk/internal/domain/catalog"
)

// CanonicalRecord is the published catalog entity.
type CanonicalRecord struct {
	RecordID  string
	Fields    catalog.Fields
	Status    string
	CreatedAt string
	UpdatedAt string
}

// ChangeRequest is a proposed creation or modification awaiting review.
// Update requests carry their proposal as FieldChange rows; add requests
// carry the whole proposed record in Payload.
type ChangeRequest struct {
	RequestID      string
	Type           catalog.RequestType
	TargetRecordID *string
	SubmittedBy    string
	SubmittedAt    string
	Status         catalog.RequestStatus
	ReviewedBy     *string
	ReviewedAt     *string
	Payload        catalog.Fields
}

// FieldChange is the proposed value and independent review state for one
// field of an update request.
type FieldChange struct {
	RequestID  string
	Field      string
	Value      catalog.FieldValue
	Status     catalog.FieldStatus
	ApprovedBy *string
	ApprovedAt *string
}

// FieldChangeUpdate is a single-row overwrite of a field's review state.
// Status is always written. ApprovedBy/ApprovedAt are written as given
// (nil clears). Value is written only when non-nil.
type FieldChangeUpdate struct {
	Value      *catalog.FieldValue
	Status     catalog.FieldStatus
	ApprovedBy *string
	ApprovedAt *string
}

type RequestFilter struct {
	Status catalog.RequestStatus
	Type   catalog.RequestType
	Limit  int
	Offset int
}

type RecordFilter struct {
	Limit  int
	Offset int
}

// ReviewRepository persists change requests and canonical records.
// Mutating methods participate in an ambient transaction when one is
// present in the context; reads outside a transaction see committed
// state only.
type ReviewRepository interface {
	GetRequest(ctx context.Context, requestID string) (ChangeRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]ChangeRequest, error)
	CreateRequest(ctx context.Context, request ChangeRequest, changes []FieldChange) error
	MarkRequestReviewed(ctx context.Context, requestID string, status catalog.RequestStatus, reviewer string, reviewedAt string) error

	GetFieldChange(ctx context.Context, requestID string, field string) (FieldChange, error)
	ListFieldChanges(ctx context.Context, requestID string) ([]FieldChange, error)
	UpdateFieldChange(ctx context.Context, requestID string, field string, update FieldChangeUpdate) error

	GetRecord(ctx context.Context, recordID string) (CanonicalRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]CanonicalRecord, error)
	CreateRecord(ctx context.Context, record CanonicalRecord) error
	PatchRecordFields(ctx context.Context, recordID string, merge catalog.Fields, updatedAt string) error
}
