package review

import (
	"context"

	"reviewdesk/internal/domain/catalog"
)

// RejectAll terminates a request of either type as rejected, regardless
// of individual field states. The canonical record is never touched. A
// second call on the same request fails with AlreadyReviewedError rather
// than silently succeeding.
func (s *Service) RejectAll(ctx context.Context, input RejectAllInput) error {
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

	if err := s.repo.MarkRequestReviewed(ctx, req.RequestID, catalog.RequestStatusRejected, reviewer, nowUTCString()); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheRequestStatusKey(req.RequestID), string(catalog.RequestStatusRejected))
	return nil
}
