package review

import (
	"context"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// ApproveCreation turns an add request into a new canonical record and
// closes the request as reviewed, in one transaction. The record id is
// reserved before the transaction: asset storage paths are namespaced by
// record id, so the identity must exist before any upload reference even
// though the record row is written later. Returns the new record id.
func (s *Service) ApproveCreation(ctx context.Context, input ApproveCreationInput) (string, error) {
	if err := s.checkDeps(ctx); err != nil {
		return "", err
	}

	reviewer, err := requireReviewer(input.Reviewer)
	if err != nil {
		return "", err
	}

	recordID := s.newRecordID()
	now := nowUTCString()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadPendingRequest(txCtx, input.RequestID)
		if err != nil {
			return err
		}
		if req.Type != catalog.RequestTypeAdd {
			return catalog.ErrAddTypeRequired
		}

		fields := catalog.BuildCreationPayload(req.Payload)
		fields = catalog.LimitFacadePhotos(fields, s.profile.Facade.Field, s.profile.Facade.MaxPhotos)

		if err := s.repo.CreateRecord(txCtx, ports.CanonicalRecord{
			RecordID:  recordID,
			Fields:    fields,
			Status:    catalog.RecordStatusApproved,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		return s.repo.MarkRequestReviewed(txCtx, req.RequestID, catalog.RequestStatusReviewed, reviewer, now)
	}); err != nil {
		return "", err
	}

	s.setCacheBestEffort(ctx, cacheRequestStatusKey(input.RequestID), string(catalog.RequestStatusReviewed))
	return recordID, nil
}
