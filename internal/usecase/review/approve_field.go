package review

import (
	"context"
	"errors"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// ApproveField marks one proposed field of an update request approved.
// The canonical record is not touched; only the field's review state
// changes. For asset-typed fields the record's current blobs are deleted
// first, best effort, since they go stale once this field reconciles.
func (s *Service) ApproveField(ctx context.Context, input FieldDecisionInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	reviewer, err := requireReviewer(input.Reviewer)
	if err != nil {
		return err
	}

	req, change, err := s.loadPendingFieldChange(ctx, input.RequestID, input.Field)
	if err != nil {
		return err
	}

	if s.profile.IsAssetField(change.Field) && req.TargetRecordID != nil {
		record, err := s.repo.GetRecord(ctx, *req.TargetRecordID)
		switch {
		case errors.Is(err, catalog.ErrRecordNotFound):
			// Nothing to clean; the commit will surface the missing target.
		case err != nil:
			return err
		default:
			if current, ok := record.Fields[change.Field]; ok {
				s.cleanupAssets(ctx, req.RequestID, change.Field, current)
			}
		}
	}

	now := nowUTCString()
	return s.repo.UpdateFieldChange(ctx, req.RequestID, change.Field, ports.FieldChangeUpdate{
		Status:     catalog.FieldStatusApproved,
		ApprovedBy: &reviewer,
		ApprovedAt: &now,
	})
}

// loadPendingFieldChange verifies the shared field-operation
// preconditions: request exists and is pending, is an update request,
// and the field is part of its proposal.
func (s *Service) loadPendingFieldChange(ctx context.Context, requestID string, field string) (ports.ChangeRequest, ports.FieldChange, error) {
	req, err := s.loadPendingRequest(ctx, requestID)
	if err != nil {
		return ports.ChangeRequest{}, ports.FieldChange{}, err
	}
	if req.Type != catalog.RequestTypeUpdate {
		return ports.ChangeRequest{}, ports.FieldChange{}, catalog.ErrUpdateTypeRequired
	}

	change, err := s.repo.GetFieldChange(ctx, requestID, field)
	if err != nil {
		return ports.ChangeRequest{}, ports.FieldChange{}, err
	}
	return req, change, nil
}
