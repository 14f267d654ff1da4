package review

import (
	"context"

	"reviewdesk/internal/domain/catalog"
)

// RejectCreation closes an add request as rejected. No record is
// created. Blobs the submitter already uploaded stay where they are;
// their cleanup belongs to an out-of-band janitor, not this flow.
func (s *Service) RejectCreation(ctx context.Context, input RejectCreationInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	reviewer, err := requireReviewer(input.Reviewer)
	if err != nil {
		return err
	}

	req, err := s.loadPendingRequest(ctx, input.RequestID)
	if err != nil {
		return err
	}
	if req.Type != catalog.RequestTypeAdd {
		return catalog.ErrAddTypeRequired
	}

	if err := s.repo.MarkRequestReviewed(ctx, req.RequestID, catalog.RequestStatusRejected, reviewer, nowUTCString()); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheRequestStatusKey(req.RequestID), string(catalog.RequestStatusRejected))
	return nil
}
