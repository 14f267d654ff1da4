package review

import (
	"context"
	"errors"

	"reviewdesk/internal/domain/catalog"
)

// CommitUpdate reconciles an update request: approved fields are merged
// into the target record and the request is closed as reviewed, in one
// transaction. Preconditions are re-validated inside the transaction so
// a stale read cannot turn into a bad commit; a failed commit leaves the
// request pending and is safe to retry.
func (s *Service) CommitUpdate(ctx context.Context, input CommitUpdateInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	reviewer, err := requireReviewer(input.Reviewer)
	if err != nil {
		return err
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadPendingRequest(txCtx, input.RequestID)
		if err != nil {
			return err
		}
		if req.Type != catalog.RequestTypeUpdate {
			return catalog.ErrUpdateTypeRequired
		}
		if req.TargetRecordID == nil || *req.TargetRecordID == "" {
			return catalog.ErrTargetRequired
		}

		changes, err := s.repo.ListFieldChanges(txCtx, req.RequestID)
		if err != nil {
			return err
		}

		decisions := decisionsOf(changes)
		ignore := s.profile.IgnoreSet()

		if unresolved := catalog.UnresolvedFields(decisions, ignore); len(unresolved) > 0 {
			return &catalog.IncompleteReviewError{
				RequestID:        req.RequestID,
				UnresolvedFields: unresolved,
			}
		}

		merge := catalog.MergeSet(decisions, ignore)
		if err := s.repo.PatchRecordFields(txCtx, *req.TargetRecordID, merge, now); err != nil {
			if errors.Is(err, catalog.ErrRecordNotFound) {
				return &catalog.TargetMissingError{RecordID: *req.TargetRecordID}
			}
			return err
		}

		return s.repo.MarkRequestReviewed(txCtx, req.RequestID, catalog.RequestStatusReviewed, reviewer, now)
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheRequestStatusKey(input.RequestID), string(catalog.RequestStatusReviewed))
	return nil
}
