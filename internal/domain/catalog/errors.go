package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotFound = errors.New("change request not found")
	ErrRecordNotFound  = errors.New("canonical record not found")
	ErrFieldNotFound   = errors.New("field change not found")

	ErrInvalidRequestType = errors.New("invalid request type")
	ErrInvalidFieldValue  = errors.New("invalid field value")
	ErrUpdateTypeRequired = errors.New("operation requires an update request")
	ErrAddTypeRequired    = errors.New("operation requires an add request")
	ErrTargetRequired     = errors.New("update request has no target record")
	ErrReviewerRequired   = errors.New("reviewer is required")
)

// AlreadyReviewedError reports an attempt to mutate a request that has
// already reached a terminal state.
type AlreadyReviewedError struct {
	RequestID string
	Status    RequestStatus
}

func (e *AlreadyReviewedError) Error() string {
	return fmt.Sprintf("change request %s already %s", e.RequestID, e.Status)
}

// IncompleteReviewError reports a commit attempted while relevant fields
// are still pending. UnresolvedFields names exactly which ones.
type IncompleteReviewError struct {
	RequestID        string
	UnresolvedFields []string
}

func (e *IncompleteReviewError) Error() string {
	return fmt.Sprintf(
		"change request %s has unresolved fields: %s",
		e.RequestID,
		strings.Join(e.UnresolvedFields, ", "),
	)
}

// TargetMissingError reports that a commit's target record vanished
// between submission and reconciliation.
type TargetMissingError struct {
	RecordID string
}

func (e *TargetMissingError) Error() string {
	return fmt.Sprintf("target record %s no longer exists", e.RecordID)
}
