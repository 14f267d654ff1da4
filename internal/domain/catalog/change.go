package catalog

import "fmt"

// RequestType distinguishes proposals for brand-new records from edits to
// existing ones.
type RequestType string

const (
	RequestTypeAdd    RequestType = "add"
	RequestTypeUpdate RequestType = "update"
)

func ParseRequestType(raw string) (RequestType, error) {
	switch RequestType(raw) {
	case RequestTypeAdd, RequestTypeUpdate:
		return RequestType(raw), nil
	default:
		return "", fmt.Errorf("%w: request type %q", ErrInvalidRequestType, raw)
	}
}

// RequestStatus is the overall review state of a change request.
// Reviewed and rejected are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusReviewed RequestStatus = "reviewed"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusReviewed || s == RequestStatusRejected
}

// FieldStatus is the independent review state of one proposed field.
// Approve and reject overwrite the current state directly; reset returns
// a decided field to pending without making a new decision.
type FieldStatus string

const (
	FieldStatusPending  FieldStatus = "pending"
	FieldStatusApproved FieldStatus = "approved"
	FieldStatusRejected FieldStatus = "rejected"
)

const RecordStatusApproved = "approved"

// FieldDecision is one proposed field together with its review state, the
// unit the merge rules operate on.
type FieldDecision struct {
	Name   string
	Status FieldStatus
	Value  FieldValue
}

// Bookkeeping keys carried on submitted payloads that must never appear
// as fields of a created record.
var bookkeepingKeys = map[string]struct{}{
	"id":          {},
	"type":        {},
	"target":      {},
	"status":      {},
	"submittedBy": {},
	"submittedAt": {},
	"reviewedBy":  {},
	"reviewedAt":  {},
}

func IsBookkeepingKey(name string) bool {
	_, ok := bookkeepingKeys[name]
	return ok
}
