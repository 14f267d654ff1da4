package review

import (
	"context"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// RejectField marks one proposed field rejected. For asset-typed fields
// the newly uploaded blobs are deleted, best effort, and the proposed
// value is blanked so a later merge cannot apply a stale overwrite.
func (s *Service) RejectField(ctx context.Context, input FieldDecisionInput) error {
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

	update := ports.FieldChangeUpdate{
		Status: catalog.FieldStatusRejected,
	}

	if s.profile.IsAssetField(change.Field) {
		s.cleanupAssets(ctx, req.RequestID, change.Field, change.Value)
		empty := change.Value.Empty()
		update.Value = &empty
	}

	return s.repo.UpdateFieldChange(ctx, req.RequestID, change.Field, update)
}
