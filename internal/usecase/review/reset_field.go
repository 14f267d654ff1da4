package review

import (
	"context"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// ResetField returns one field to pending and clears its approver
// metadata. The proposed value is left as-is; blobs deleted by an
// earlier decision are not restored.
func (s *Service) ResetField(ctx context.Context, input FieldDecisionInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	if _, err := requireReviewer(input.Reviewer); err != nil {
		return err
	}

	req, change, err := s.loadPendingFieldChange(ctx, input.RequestID, input.Field)
	if err != nil {
		return err
	}

	return s.repo.UpdateFieldChange(ctx, req.RequestID, change.Field, ports.FieldChangeUpdate{
		Status: catalog.FieldStatusPending,
	})
}

// ResetAllFields returns every field of an update request to pending.
func (s *Service) ResetAllFields(ctx context.Context, input ResetAllFieldsInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	if _, err := requireReviewer(input.Reviewer); err != nil {
		return err
	}

	req, err := s.loadPendingRequest(ctx, input.RequestID)
	if err != nil {
		return err
	}
	if req.Type != catalog.RequestTypeUpdate {
		return catalog.ErrUpdateTypeRequired
	}

	changes, err := s.repo.ListFieldChanges(ctx, req.RequestID)
	if err != nil {
		return err
	}

	for _, change := range changes {
		if err := s.repo.UpdateFieldChange(ctx, req.RequestID, change.Field, ports.FieldChangeUpdate{
			Status: catalog.FieldStatusPending,
		}); err != nil {
			return err
		}
	}
	return nil
}
