package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/errs"
	"reviewdesk/internal/infrastructure/persistence/sqlite/model"
	"reviewdesk/internal/ports"
)

type ReviewRepository struct {
	db *gorm.DB
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *ReviewRepository) GetRequest(ctx context.Context, requestID string) (ports.ChangeRequest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ChangeRequest{}, err
	}

	var row model.ChangeRequest
	if err := db.Where("request_id = ?", requestID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ChangeRequest{}, catalog.ErrRequestNotFound
		}
		return ports.ChangeRequest{}, errs.Wrap(err, "query change request")
	}
	return mapRequest(row)
}

func (r *ReviewRepository) ListRequests(ctx context.Context, filter ports.RequestFilter) ([]ports.ChangeRequest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ChangeRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.ChangeRequest
	if err := query.Order("submitted_at asc, request_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query change requests")
	}

	items := make([]ports.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		item, err := mapRequest(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ReviewRepository) CreateRequest(ctx context.Context, request ports.ChangeRequest, changes []ports.FieldChange) error {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}

		payloadJSON, err := catalog.EncodeFields(request.Payload)
		if err != nil {
			return err
		}

		row := model.ChangeRequest{
			RequestID:      request.RequestID,
			Type:           string(request.Type),
			TargetRecordID: request.TargetRecordID,
			SubmittedBy:    request.SubmittedBy,
			SubmittedAt:    request.SubmittedAt,
			Status:         string(request.Status),
			ReviewedBy:     request.ReviewedBy,
			ReviewedAt:     request.ReviewedAt,
			PayloadJSON:    payloadJSON,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert change request")
		}

		for _, change := range changes {
			valueJSON, err := catalog.EncodeValue(change.Value)
			if err != nil {
				return err
			}
			changeRow := model.FieldChange{
				RequestID:  request.RequestID,
				Field:      change.Field,
				ValueJSON:  valueJSON,
				Status:     string(change.Status),
				ApprovedBy: change.ApprovedBy,
				ApprovedAt: change.ApprovedAt,
			}
			if err := db.Create(&changeRow).Error; err != nil {
				return errs.Wrap(err, "insert field change")
			}
		}
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.CreateRequest(ports.WithTxContext(ctx, tx), request, changes)
	})
}

func (r *ReviewRepository) MarkRequestReviewed(ctx context.Context, requestID string, status catalog.RequestStatus, reviewer string, reviewedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.ChangeRequest{}).
		Where("request_id = ?", requestID).
		Updates(map[string]any{
			"status":      string(status),
			"reviewed_by": reviewer,
			"reviewed_at": reviewedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update change request status")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrRequestNotFound
	}
	return nil
}

func (r *ReviewRepository) GetFieldChange(ctx context.Context, requestID string, field string) (ports.FieldChange, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.FieldChange{}, err
	}

	var row model.FieldChange
	if err := db.Where("request_id = ? AND field = ?", requestID, field).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FieldChange{}, catalog.ErrFieldNotFound
		}
		return ports.FieldChange{}, errs.Wrap(err, "query field change")
	}
	return mapFieldChange(row)
}

func (r *ReviewRepository) ListFieldChanges(ctx context.Context, requestID string) ([]ports.FieldChange, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.FieldChange
	if err := db.
		Where("request_id = ?", requestID).
		Order("field asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query field changes")
	}

	items := make([]ports.FieldChange, 0, len(rows))
	for _, row := range rows {
		item, err := mapFieldChange(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ReviewRepository) UpdateFieldChange(ctx context.Context, requestID string, field string, update ports.FieldChangeUpdate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	values := map[string]any{
		"status":      string(update.Status),
		"approved_by": update.ApprovedBy,
		"approved_at": update.ApprovedAt,
	}
	if update.Value != nil {
		valueJSON, err := catalog.EncodeValue(*update.Value)
		if err != nil {
			return err
		}
		values["value_json"] = valueJSON
	}

	result := db.Model(&model.FieldChange{}).
		Where("request_id = ? AND field = ?", requestID, field).
		Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update field change")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrFieldNotFound
	}
	return nil
}

func (r *ReviewRepository) GetRecord(ctx context.Context, recordID string) (ports.CanonicalRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CanonicalRecord{}, err
	}
	return getRecordByID(db, recordID)
}

func (r *ReviewRepository) ListRecords(ctx context.Context, filter ports.RecordFilter) ([]ports.CanonicalRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Record{}).Order("created_at asc, record_id asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Record
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query records")
	}

	items := make([]ports.CanonicalRecord, 0, len(rows))
	for _, row := range rows {
		item, err := mapRecord(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ReviewRepository) CreateRecord(ctx context.Context, record ports.CanonicalRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	fieldsJSON, err := catalog.EncodeFields(record.Fields)
	if err != nil {
		return err
	}

	row := model.Record{
		RecordID:   record.RecordID,
		FieldsJSON: fieldsJSON,
		Status:     record.Status,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert record")
	}
	return nil
}

// PatchRecordFields overlays merge onto the stored field map in place.
// An empty merge still verifies the record exists and bumps updated_at,
// so reconciliation observes a vanished target consistently.
func (r *ReviewRepository) PatchRecordFields(ctx context.Context, recordID string, merge catalog.Fields, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var row model.Record
	if err := db.Where("record_id = ?", recordID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.ErrRecordNotFound
		}
		return errs.Wrap(err, "query record")
	}

	fields, err := catalog.DecodeFields(row.FieldsJSON)
	if err != nil {
		return err
	}

	fieldsJSON, err := catalog.EncodeFields(catalog.ApplyMerge(fields, merge))
	if err != nil {
		return err
	}

	if err := db.Model(&model.Record{}).
		Where("record_id = ?", recordID).
		Updates(map[string]any{
			"fields_json": fieldsJSON,
			"updated_at":  updatedAt,
		}).Error; err != nil {
		return errs.Wrap(err, "update record fields")
	}
	return nil
}

func getRecordByID(db *gorm.DB, recordID string) (ports.CanonicalRecord, error) {
	var row model.Record
	if err := db.Where("record_id = ?", recordID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CanonicalRecord{}, catalog.ErrRecordNotFound
		}
		return ports.CanonicalRecord{}, errs.Wrap(err, "query record")
	}
	return mapRecord(row)
}

func mapRequest(row model.ChangeRequest) (ports.ChangeRequest, error) {
	payload, err := catalog.DecodeFields(row.PayloadJSON)
	if err != nil {
		return ports.ChangeRequest{}, err
	}

	return ports.ChangeRequest{
		RequestID:      row.RequestID,
		Type:           catalog.RequestType(row.Type),
		TargetRecordID: row.TargetRecordID,
		SubmittedBy:    row.SubmittedBy,
		SubmittedAt:    row.SubmittedAt,
		Status:         catalog.RequestStatus(row.Status),
		ReviewedBy:     row.ReviewedBy,
		ReviewedAt:     row.ReviewedAt,
		Payload:        payload,
	}, nil
}

func mapFieldChange(row model.FieldChange) (ports.FieldChange, error) {
	value, err := catalog.DecodeValue(row.ValueJSON)
	if err != nil {
		return ports.FieldChange{}, err
	}

	return ports.FieldChange{
		RequestID:  row.RequestID,
		Field:      row.Field,
		Value:      value,
		Status:     catalog.FieldStatus(row.Status),
		ApprovedBy: row.ApprovedBy,
		ApprovedAt: row.ApprovedAt,
	}, nil
}

func mapRecord(row model.Record) (ports.CanonicalRecord, error) {
	fields, err := catalog.DecodeFields(row.FieldsJSON)
	if err != nil {
		return ports.CanonicalRecord{}, err
	}

	return ports.CanonicalRecord{
		RecordID:  row.RecordID,
		Fields:    fields,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
