package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/infrastructure/persistence/sqlite/model"
	"reviewdesk/internal/infrastructure/persistence/sqlite/uow"
	"reviewdesk/internal/ports"
)

func setupRepo(t *testing.T) (*ReviewRepository, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "catalog.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&model.Record{}, &model.ChangeRequest{}, &model.FieldChange{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewReviewRepository(db), db
}

func seedRequest(t *testing.T, repo *ReviewRepository, requestID string, target string) {
	t.Helper()

	request := ports.ChangeRequest{
		RequestID:   requestID,
		Type:        catalog.RequestTypeUpdate,
		SubmittedBy: "diner-7",
		SubmittedAt: "2026-01-10T09:00:00Z",
		Status:      catalog.RequestStatusPending,
		Payload:     catalog.Fields{},
	}
	if target != "" {
		request.TargetRecordID = &target
	}
	changes := []ports.FieldChange{
		{RequestID: requestID, Field: "name", Value: catalog.StringValue("Bistro"), Status: catalog.FieldStatusPending},
		{RequestID: requestID, Field: "price", Value: catalog.NumberValue(25), Status: catalog.FieldStatusPending},
	}
	if err := repo.CreateRequest(context.Background(), request, changes); err != nil {
		t.Fatalf("create request: %v", err)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	seedRequest(t, repo, "req-1", "rec-1")

	req, err := repo.GetRequest(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Type != catalog.RequestTypeUpdate || req.Status != catalog.RequestStatusPending {
		t.Fatalf("request = %+v", req)
	}
	if req.TargetRecordID == nil || *req.TargetRecordID != "rec-1" {
		t.Fatalf("target = %v, want rec-1", req.TargetRecordID)
	}

	changes, err := repo.ListFieldChanges(ctx, "req-1")
	if err != nil {
		t.Fatalf("ListFieldChanges: %v", err)
	}
	if len(changes) != 2 || changes[0].Field != "name" || changes[1].Field != "price" {
		t.Fatalf("changes = %+v, want name then price", changes)
	}
	if changes[0].Value.Str != "Bistro" || changes[1].Value.Num != 25 {
		t.Fatalf("values did not survive the round trip: %+v", changes)
	}

	if _, err := repo.GetRequest(ctx, "ghost"); !errors.Is(err, catalog.ErrRequestNotFound) {
		t.Fatalf("missing request err = %v, want ErrRequestNotFound", err)
	}
	if _, err := repo.GetFieldChange(ctx, "req-1", "ghost"); !errors.Is(err, catalog.ErrFieldNotFound) {
		t.Fatalf("missing field err = %v, want ErrFieldNotFound", err)
	}
}

func TestUpdateFieldChangeWritesValueOnlyWhenSet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	seedRequest(t, repo, "req-1", "rec-1")

	reviewer := "mod-1"
	when := "2026-01-10T10:00:00Z"
	if err := repo.UpdateFieldChange(ctx, "req-1", "name", ports.FieldChangeUpdate{
		Status:     catalog.FieldStatusApproved,
		ApprovedBy: &reviewer,
		ApprovedAt: &when,
	}); err != nil {
		t.Fatalf("UpdateFieldChange: %v", err)
	}

	change, err := repo.GetFieldChange(ctx, "req-1", "name")
	if err != nil {
		t.Fatalf("GetFieldChange: %v", err)
	}
	if change.Status != catalog.FieldStatusApproved || change.Value.Str != "Bistro" {
		t.Fatalf("change = %+v, want approved with the value untouched", change)
	}
	if change.ApprovedBy == nil || *change.ApprovedBy != "mod-1" {
		t.Fatalf("approvedBy = %v", change.ApprovedBy)
	}

	// A nil ApprovedBy/ApprovedAt clears the metadata; a non-nil Value
	// overwrites the stored one.
	blank := catalog.StringValue("")
	if err := repo.UpdateFieldChange(ctx, "req-1", "name", ports.FieldChangeUpdate{
		Status: catalog.FieldStatusRejected,
		Value:  &blank,
	}); err != nil {
		t.Fatalf("UpdateFieldChange reject: %v", err)
	}

	change, err = repo.GetFieldChange(ctx, "req-1", "name")
	if err != nil {
		t.Fatalf("GetFieldChange: %v", err)
	}
	if change.Status != catalog.FieldStatusRejected || change.Value.Str != "" {
		t.Fatalf("change = %+v, want rejected with blanked value", change)
	}
	if change.ApprovedBy != nil || change.ApprovedAt != nil {
		t.Fatalf("approver metadata not cleared: %+v", change)
	}

	if err := repo.UpdateFieldChange(ctx, "req-1", "ghost", ports.FieldChangeUpdate{Status: catalog.FieldStatusPending}); !errors.Is(err, catalog.ErrFieldNotFound) {
		t.Fatalf("missing field err = %v, want ErrFieldNotFound", err)
	}
}

func TestPatchRecordFields(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	if err := repo.CreateRecord(ctx, ports.CanonicalRecord{
		RecordID: "rec-1",
		Fields: catalog.Fields{
			"name":    catalog.StringValue("Old Bistro"),
			"cuisine": catalog.StringValue("french"),
		},
		Status:    "approved",
		CreatedAt: "2026-01-10T09:00:00Z",
		UpdatedAt: "2026-01-10T09:00:00Z",
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	merge := catalog.Fields{
		"name":  catalog.StringValue("Bistro"),
		"price": catalog.NumberValue(25),
	}
	if err := repo.PatchRecordFields(ctx, "rec-1", merge, "2026-01-11T09:00:00Z"); err != nil {
		t.Fatalf("PatchRecordFields: %v", err)
	}

	record, err := repo.GetRecord(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record.Fields["name"].Str != "Bistro" || record.Fields["price"].Num != 25 {
		t.Fatalf("merged fields = %+v", record.Fields)
	}
	if record.Fields["cuisine"].Str != "french" {
		t.Fatalf("untouched field lost: %+v", record.Fields)
	}
	if record.UpdatedAt != "2026-01-11T09:00:00Z" {
		t.Fatalf("updated_at = %q", record.UpdatedAt)
	}

	if err := repo.PatchRecordFields(ctx, "ghost", merge, "2026-01-11T09:00:00Z"); !errors.Is(err, catalog.ErrRecordNotFound) {
		t.Fatalf("missing record err = %v, want ErrRecordNotFound", err)
	}
}

func TestTransactionRollbackLeavesRequestPending(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	seedRequest(t, repo, "req-1", "rec-1")

	unit := uow.NewUnitOfWork(db)
	failure := errors.New("boom")

	err := unit.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.MarkRequestReviewed(txCtx, "req-1", catalog.RequestStatusReviewed, "mod-1", "2026-01-10T10:00:00Z"); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("WithTx err = %v, want the injected failure", err)
	}

	req, err := repo.GetRequest(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Status != catalog.RequestStatusPending {
		t.Fatalf("request status = %q, want pending after rollback", req.Status)
	}
	if req.ReviewedBy != nil {
		t.Fatalf("reviewedBy = %v, want nil after rollback", req.ReviewedBy)
	}
}

func TestOperationsJoinAmbientTransaction(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	seedRequest(t, repo, "req-1", "rec-1")

	unit := uow.NewUnitOfWork(db)
	err := unit.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.MarkRequestReviewed(txCtx, "req-1", catalog.RequestStatusRejected, "mod-1", "2026-01-10T10:00:00Z"); err != nil {
			return err
		}

		// The uncommitted write is visible inside the transaction.
		req, err := repo.GetRequest(txCtx, "req-1")
		if err != nil {
			return err
		}
		if req.Status != catalog.RequestStatusRejected {
			t.Fatalf("in-tx status = %q, want rejected", req.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	req, err := repo.GetRequest(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Status != catalog.RequestStatusRejected {
		t.Fatalf("committed status = %q, want rejected", req.Status)
	}
}

func TestListRequestsFilters(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	seedRequest(t, repo, "req-1", "rec-1")
	if err := repo.CreateRequest(ctx, ports.ChangeRequest{
		RequestID:   "req-2",
		Type:        catalog.RequestTypeAdd,
		SubmittedBy: "diner-8",
		SubmittedAt: "2026-01-10T09:30:00Z",
		Status:      catalog.RequestStatusPending,
		Payload:     catalog.Fields{"name": catalog.StringValue("Cafe")},
	}, nil); err != nil {
		t.Fatalf("create add request: %v", err)
	}

	adds, err := repo.ListRequests(ctx, ports.RequestFilter{Type: catalog.RequestTypeAdd})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(adds) != 1 || adds[0].RequestID != "req-2" {
		t.Fatalf("adds = %+v", adds)
	}
	if adds[0].Payload["name"].Str != "Cafe" {
		t.Fatalf("payload = %+v", adds[0].Payload)
	}

	all, err := repo.ListRequests(ctx, ports.RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests all: %v", err)
	}
	if len(all) != 2 || all[0].RequestID != "req-1" {
		t.Fatalf("all = %+v, want submitted_at order", all)
	}

	limited, err := repo.ListRequests(ctx, ports.RequestFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListRequests paged: %v", err)
	}
	if len(limited) != 1 || limited[0].RequestID != "req-2" {
		t.Fatalf("paged = %+v", limited)
	}
}
