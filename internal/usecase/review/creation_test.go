package review

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

func TestApproveCreationCreatesRecord(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.newRecordID = func() string { return "rec-fixed" }

	requestID := submitAdd(t, svc, map[string]any{
		"name":        "New Cafe",
		"isManager":   true,
		"contactName": "Ana",
	})

	recordID, err := svc.ApproveCreation(ctx, ApproveCreationInput{RequestID: requestID, Reviewer: "mod-1"})
	if err != nil {
		t.Fatalf("ApproveCreation: %v", err)
	}
	if recordID != "rec-fixed" {
		t.Fatalf("record id = %q, want the reserved rec-fixed", recordID)
	}

	record, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record.Status != catalog.RecordStatusApproved {
		t.Fatalf("record status = %q, want approved", record.Status)
	}
	if record.Fields["name"] != "New Cafe" {
		t.Fatalf("record name = %v, want New Cafe", record.Fields["name"])
	}
	if record.Fields["contactName"] != "Ana" {
		t.Fatalf("manager contact dropped: %v", record.Fields)
	}

	if got := requestStatus(t, svc, requestID); got != catalog.RequestStatusReviewed {
		t.Fatalf("request status = %q, want reviewed", got)
	}
}

func TestApproveCreationStripsContactsForNonManagers(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	requestID := submitAdd(t, svc, map[string]any{
		"name":         "New Cafe",
		"isManager":    false,
		"contactName":  "Ana",
		"contactPhone": "555-0101",
		"contactEmail": "ana@example.com",
	})

	recordID, err := svc.ApproveCreation(ctx, ApproveCreationInput{RequestID: requestID, Reviewer: "mod-1"})
	if err != nil {
		t.Fatalf("ApproveCreation: %v", err)
	}

	record, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	for _, field := range []string{"contactName", "contactPhone", "contactEmail"} {
		if _, ok := record.Fields[field]; ok {
			t.Fatalf("field %s survived for a non-manager submitter", field)
		}
	}
	if record.Fields["isManager"] != false {
		t.Fatalf("isManager = %v, want false kept on the record", record.Fields["isManager"])
	}
}

func TestApproveCreationDropsBookkeepingKeys(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	requestID := submitAdd(t, svc, map[string]any{
		"name":        "New Cafe",
		"submittedBy": "diner-7",
		"status":      "pending",
	})

	recordID, err := svc.ApproveCreation(ctx, ApproveCreationInput{RequestID: requestID, Reviewer: "mod-1"})
	if err != nil {
		t.Fatalf("ApproveCreation: %v", err)
	}

	record, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	for _, key := range []string{"submittedBy", "status"} {
		if _, ok := record.Fields[key]; ok {
			t.Fatalf("bookkeeping key %s leaked into the record", key)
		}
	}
}

func TestApproveCreationLimitsFacadePhotos(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	requestID := submitAdd(t, svc, map[string]any{
		"name": "New Cafe",
		"facadePhotoUrls": []any{
			"gs://photos/facade-1.jpg",
			"gs://photos/facade-2.jpg",
			"gs://photos/facade-3.jpg",
		},
		"menuPhotoUrls": []any{
			"gs://photos/menu-1.jpg",
			"gs://photos/menu-2.jpg",
		},
	})

	recordID, err := svc.ApproveCreation(ctx, ApproveCreationInput{RequestID: requestID, Reviewer: "mod-1"})
	if err != nil {
		t.Fatalf("ApproveCreation: %v", err)
	}

	record, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	facade, _ := record.Fields["facadePhotoUrls"].([]string)
	if !reflect.DeepEqual(facade, []string{"gs://photos/facade-1.jpg"}) {
		t.Fatalf("facadePhotoUrls = %v, want only the first photo", facade)
	}
	menu, _ := record.Fields["menuPhotoUrls"].([]string)
	if len(menu) != 2 {
		t.Fatalf("menuPhotoUrls = %v, want both photos kept", menu)
	}
}

func TestApproveCreationRejectsUpdateRequests(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	recordID := seedRecord(t, svc, map[string]any{"name": "Old Bistro"})
	requestID := submitUpdate(t, svc, recordID, map[string]any{"name": "Bistro"})

	if _, err := svc.ApproveCreation(ctx, ApproveCreationInput{RequestID: requestID, Reviewer: "mod-1"}); !errors.Is(err, catalog.ErrAddTypeRequired) {
		t.Fatalf("err = %v, want ErrAddTypeRequired", err)
	}
}

func TestRejectCreationClosesWithoutRecord(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	requestID := submitAdd(t, svc, map[string]any{"name": "Spam Cafe"})

	if err := svc.RejectCreation(ctx, RejectCreationInput{RequestID: requestID, Reviewer: "mod-1"}); err != nil {
		t.Fatalf("RejectCreation: %v", err)
	}

	if got := requestStatus(t, svc, requestID); got != catalog.RequestStatusRejected {
		t.Fatalf("request status = %q, want rejected", got)
	}
	records, err := svc.ListRecords(ctx, ports.RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want none", len(records))
	}

	err = svc.RejectCreation(ctx, RejectCreationInput{RequestID: requestID, Reviewer: "mod-1"})
	var already *catalog.AlreadyReviewedError
	if !errors.As(err, &already) {
		t.Fatalf("second rejection err = %v, want AlreadyReviewedError", err)
	}
}

func TestRejectAllClosesUpdateRequest(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	recordID := seedRecord(t, svc, map[string]any{"name": "Old Bistro"})
	requestID := submitUpdate(t, svc, recordID, map[string]any{"name": "Spam"})

	if err := svc.ApproveField(ctx, FieldDecisionInput{RequestID: requestID, Field: "name", Reviewer: "mod-1"}); err != nil {
		t.Fatalf("ApproveField: %v", err)
	}
	if err := svc.RejectAll(ctx, RejectAllInput{RequestID: requestID, Reviewer: "mod-2"}); err != nil {
		t.Fatalf("RejectAll: %v", err)
	}

	// The approved field never reaches the record.
	record, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record.Fields["name"] != "Old Bistro" {
		t.Fatalf("record name = %v, want Old Bistro", record.Fields["name"])
	}

	err = svc.RejectAll(ctx, RejectAllInput{RequestID: requestID, Reviewer: "mod-2"})
	var already *catalog.AlreadyReviewedError
	if !errors.As(err, &already) {
		t.Fatalf("second RejectAll err = %v, want AlreadyReviewedError", err)
	}
	if already.Status != catalog.RequestStatusRejected {
		t.Fatalf("terminal status = %q, want rejected", already.Status)
	}
}
