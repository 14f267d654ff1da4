package review

import (
	"context"
	"errors"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// ListRequests returns request summaries for moderation queue views.
func (s *Service) ListRequests(ctx context.Context, filter ports.RequestFilter) ([]RequestListItem, error) {
	if err := s.checkDeps(ctx); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]RequestListItem, 0, len(requests))
	for _, req := range requests {
		items = append(items, summarize(req))
	}
	return items, nil
}

// GetRequest returns request detail including its field changes.
func (s *Service) GetRequest(ctx context.Context, requestID string) (RequestDetail, error) {
	if err := s.checkDeps(ctx); err != nil {
		return RequestDetail{}, err
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return RequestDetail{}, err
	}

	detail := RequestDetail{
		RequestListItem: summarize(req),
		Payload:         nativeFields(req.Payload),
	}

	if req.Type == catalog.RequestTypeUpdate {
		changes, err := s.repo.ListFieldChanges(ctx, requestID)
		if err != nil {
			return RequestDetail{}, err
		}
		detail.Changes = make([]FieldChangeItem, 0, len(changes))
		for _, change := range changes {
			detail.Changes = append(detail.Changes, FieldChangeItem{
				Field:      change.Field,
				Value:      change.Value.Native(),
				Status:     string(change.Status),
				ApprovedBy: derefString(change.ApprovedBy),
				ApprovedAt: derefString(change.ApprovedAt),
			})
		}
	}

	return detail, nil
}

// GetRequestDiff builds the reviewer's per-field view: current canonical
// value against the proposed one. Add requests diff against an empty
// record; a vanished update target shows nil current values rather than
// failing the read.
func (s *Service) GetRequestDiff(ctx context.Context, requestID string) ([]FieldDiff, error) {
	if err := s.checkDeps(ctx); err != nil {
		return nil, err
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Type == catalog.RequestTypeAdd {
		fields := catalog.BuildCreationPayload(req.Payload)
		names := catalog.SortedFieldNames(fields)
		diffs := make([]FieldDiff, 0, len(names))
		for _, name := range names {
			diffs = append(diffs, FieldDiff{
				Field:    name,
				Proposed: fields[name].Native(),
				Status:   string(req.Status),
			})
		}
		return diffs, nil
	}

	var current catalog.Fields
	if req.TargetRecordID != nil {
		record, err := s.repo.GetRecord(ctx, *req.TargetRecordID)
		switch {
		case errors.Is(err, catalog.ErrRecordNotFound):
			// Shown as an empty current side; commit will report it.
		case err != nil:
			return nil, err
		default:
			current = record.Fields
		}
	}

	changes, err := s.repo.ListFieldChanges(ctx, requestID)
	if err != nil {
		return nil, err
	}

	diffs := make([]FieldDiff, 0, len(changes))
	for _, change := range changes {
		diff := FieldDiff{
			Field:    change.Field,
			Proposed: change.Value.Native(),
			Status:   string(change.Status),
		}
		if existing, ok := current[change.Field]; ok {
			diff.Current = existing.Native()
		}
		diffs = append(diffs, diff)
	}
	return diffs, nil
}

// GetRecord returns one canonical record.
func (s *Service) GetRecord(ctx context.Context, recordID string) (RecordDetail, error) {
	if err := s.checkDeps(ctx); err != nil {
		return RecordDetail{}, err
	}

	record, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return RecordDetail{}, err
	}
	return toRecordDetail(record), nil
}

// ListRecords pages through the canonical catalog.
func (s *Service) ListRecords(ctx context.Context, filter ports.RecordFilter) ([]RecordDetail, error) {
	if err := s.checkDeps(ctx); err != nil {
		return nil, err
	}

	records, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]RecordDetail, 0, len(records))
	for _, record := range records {
		items = append(items, toRecordDetail(record))
	}
	return items, nil
}

func summarize(req ports.ChangeRequest) RequestListItem {
	return RequestListItem{
		RequestID:      req.RequestID,
		Type:           string(req.Type),
		TargetRecordID: derefString(req.TargetRecordID),
		SubmittedBy:    req.SubmittedBy,
		SubmittedAt:    req.SubmittedAt,
		Status:         string(req.Status),
		ReviewedBy:     derefString(req.ReviewedBy),
		ReviewedAt:     derefString(req.ReviewedAt),
	}
}

func nativeFields(fields catalog.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		out[name] = v.Native()
	}
	return out
}

func toRecordDetail(record ports.CanonicalRecord) RecordDetail {
	return RecordDetail{
		RecordID:  record.RecordID,
		Fields:    nativeFields(record.Fields),
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
