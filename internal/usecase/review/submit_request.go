package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// SubmitRequest creates a pending change request. The production
// submission flow lives outside this core; this entry point exists for
// the seed command and tests, and applies the same structural rules that
// flow does: native JSON values become tagged field values, and fields
// the profile declares as asset-typed are promoted to asset references.
func (s *Service) SubmitRequest(ctx context.Context, input SubmitRequestInput) (string, error) {
	if err := s.checkDeps(ctx); err != nil {
		return "", err
	}

	reqType, err := catalog.ParseRequestType(input.Type)
	if err != nil {
		return "", err
	}

	submittedBy := strings.TrimSpace(input.SubmittedBy)
	if submittedBy == "" {
		return "", errors.New("submitter is required")
	}

	request := ports.ChangeRequest{
		RequestID:   uuid.NewString(),
		Type:        reqType,
		SubmittedBy: submittedBy,
		SubmittedAt: nowUTCString(),
		Status:      catalog.RequestStatusPending,
		Payload:     catalog.Fields{},
	}

	var changes []ports.FieldChange

	switch reqType {
	case catalog.RequestTypeAdd:
		if len(input.Payload) == 0 {
			return "", errors.New("add request requires a payload")
		}
		payload, err := s.convertFields(input.Payload)
		if err != nil {
			return "", err
		}
		request.Payload = payload

	case catalog.RequestTypeUpdate:
		target := strings.TrimSpace(input.TargetRecordID)
		if target == "" {
			return "", catalog.ErrTargetRequired
		}
		if len(input.Changes) == 0 {
			return "", errors.New("update request requires proposed changes")
		}
		if _, err := s.repo.GetRecord(ctx, target); err != nil {
			return "", err
		}
		request.TargetRecordID = &target

		proposed, err := s.convertFields(input.Changes)
		if err != nil {
			return "", err
		}
		for _, name := range catalog.SortedFieldNames(proposed) {
			changes = append(changes, ports.FieldChange{
				RequestID: request.RequestID,
				Field:     name,
				Value:     proposed[name],
				Status:    catalog.FieldStatusPending,
			})
		}
	}

	if err := s.repo.CreateRequest(ctx, request, changes); err != nil {
		return "", err
	}

	s.setCacheBestEffort(ctx, cacheRequestStatusKey(request.RequestID), string(catalog.RequestStatusPending))
	return request.RequestID, nil
}

func (s *Service) convertFields(in map[string]any) (catalog.Fields, error) {
	out := make(catalog.Fields, len(in))
	for name, raw := range in {
		value, err := catalog.FromNative(raw)
		if err != nil {
			return nil, err
		}
		if s.profile.IsAssetField(name) {
			value = value.AsAssetRefs()
		}
		out[name] = value
	}
	return out, nil
}
