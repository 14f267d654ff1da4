package review

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/infrastructure/cache"
	"reviewdesk/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "reviewdesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "reviewdesk/internal/infrastructure/persistence/sqlite/uow"
	"reviewdesk/internal/ports"
)

type fakeAssetStore struct {
	deleted  []string
	failWith error
}

func (f *fakeAssetStore) Delete(_ context.Context, path string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func setupServiceWithDB(t *testing.T) (*Service, *fakeAssetStore, *gorm.DB) {
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

	if err := db.AutoMigrate(
		&model.Record{},
		&model.ChangeRequest{},
		&model.FieldChange{},
		&model.ReviewKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	assets := &fakeAssetStore{}
	repo := sqliterepo.NewReviewRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	kv := cache.NewSQLiteCache(db)
	svc := NewService(repo, uow, kv, assets, DefaultProfile())
	return svc, assets, db
}

func setupService(t *testing.T) (*Service, *fakeAssetStore) {
	t.Helper()
	svc, assets, _ := setupServiceWithDB(t)
	return svc, assets
}

func seedRecord(t *testing.T, svc *Service, fields map[string]any) string {
	t.Helper()
	ctx := context.Background()

	converted, err := svc.convertFields(fields)
	if err != nil {
		t.Fatalf("convert record fields: %v", err)
	}

	now := nowUTCString()
	recordID := "rec-" + t.Name()
	if err := svc.repo.CreateRecord(ctx, ports.CanonicalRecord{
		RecordID:  recordID,
		Fields:    converted,
		Status:    catalog.RecordStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}
	return recordID
}

func submitUpdate(t *testing.T, svc *Service, target string, changes map[string]any) string {
	t.Helper()

	requestID, err := svc.SubmitRequest(context.Background(), SubmitRequestInput{
		Type:           "update",
		TargetRecordID: target,
		SubmittedBy:    "diner-7",
		Changes:        changes,
	})
	if err != nil {
		t.Fatalf("submit update request: %v", err)
	}
	return requestID
}

func submitAdd(t *testing.T, svc *Service, payload map[string]any) string {
	t.Helper()

	requestID, err := svc.SubmitRequest(context.Background(), SubmitRequestInput{
		Type:        "add",
		SubmittedBy: "diner-7",
		Payload:     payload,
	})
	if err != nil {
		t.Fatalf("submit add request: %v", err)
	}
	return requestID
}

func fieldChange(t *testing.T, svc *Service, requestID string, field string) ports.FieldChange {
	t.Helper()

	change, err := svc.repo.GetFieldChange(context.Background(), requestID, field)
	if err != nil {
		t.Fatalf("get field change %s: %v", field, err)
	}
	return change
}

func requestStatus(t *testing.T, svc *Service, requestID string) catalog.RequestStatus {
	t.Helper()

	req, err := svc.repo.GetRequest(context.Background(), requestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	return req.Status
}
