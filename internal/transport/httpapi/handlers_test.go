package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"reviewdesk/internal/infrastructure/cache"
	"reviewdesk/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "reviewdesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "reviewdesk/internal/infrastructure/persistence/sqlite/uow"
	"reviewdesk/internal/usecase/review"
)

type nopAssets struct{}

func (nopAssets) Delete(context.Context, string) error { return nil }

func setupAPI(t *testing.T) *httptest.Server {
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

	svc := review.NewService(
		sqliterepo.NewReviewRepository(db),
		sqliteuow.NewUnitOfWork(db),
		cache.NewSQLiteCache(db),
		nopAssets{},
		review.DefaultProfile(),
	)

	ts := httptest.NewServer(NewServer(svc).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method string, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func submitUpdateRequest(t *testing.T, ts *httptest.Server, target string, changes map[string]any) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/requests", map[string]any{
		"type":        "update",
		"target":      target,
		"submittedBy": "diner-7",
		"changes":     changes,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, body %v", resp.StatusCode, body)
	}
	requestID, _ := body["requestId"].(string)
	if requestID == "" {
		t.Fatalf("missing requestId in %v", body)
	}
	return requestID
}

func createRecordViaAdd(t *testing.T, ts *httptest.Server, payload map[string]any) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/requests", map[string]any{
		"type":        "add",
		"submittedBy": "diner-7",
		"payload":     payload,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit add status = %d, body %v", resp.StatusCode, body)
	}
	requestID := body["requestId"].(string)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/approve-creation", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("approve-creation status = %d, body %v", resp.StatusCode, body)
	}
	recordID, _ := body["recordId"].(string)
	if recordID == "" {
		t.Fatalf("missing recordId in %v", body)
	}
	return recordID
}

func TestHealthz(t *testing.T) {
	ts := setupAPI(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestReviewFlowOverHTTP(t *testing.T) {
	ts := setupAPI(t)

	recordID := createRecordViaAdd(t, ts, map[string]any{"name": "Old Bistro", "price": 20})
	requestID := submitUpdateRequest(t, ts, recordID, map[string]any{
		"name":  "Bistro",
		"price": 25,
	})

	// Commit before any decision fails with the unresolved field names.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/commit", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("early commit status = %d, body %v", resp.StatusCode, body)
	}
	unresolved, _ := body["unresolvedFields"].([]any)
	if len(unresolved) != 2 {
		t.Fatalf("unresolvedFields = %v, want name and price", body["unresolvedFields"])
	}

	for _, field := range []string{"name", "price"} {
		resp, body = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/fields/"+field+"/approve", map[string]any{"reviewer": "mod-1"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("approve %s status = %d, body %v", field, resp.StatusCode, body)
		}
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/commit", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("commit status = %d, body %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/records/"+recordID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get record status = %d", resp.StatusCode)
	}
	fields, _ := body["fields"].(map[string]any)
	if fields["name"] != "Bistro" || fields["price"] != float64(25) {
		t.Fatalf("record fields = %v", fields)
	}

	// A second commit conflicts.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/commit", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second commit status = %d, body %v", resp.StatusCode, body)
	}
	if body["status"] != "reviewed" {
		t.Fatalf("conflict body = %v", body)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	ts := setupAPI(t)

	// Unknown request id.
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/requests/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown request status = %d, want 404", resp.StatusCode)
	}

	// Unknown record id.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/records/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown record status = %d, want 404", resp.StatusCode)
	}

	// Invalid request type.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/requests", map[string]any{
		"type":        "merge",
		"submittedBy": "diner-7",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad type status = %d, want 400", resp.StatusCode)
	}

	// Missing reviewer on a decision.
	recordID := createRecordViaAdd(t, ts, map[string]any{"name": "Old Bistro"})
	requestID := submitUpdateRequest(t, ts, recordID, map[string]any{"name": "Bistro"})
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/fields/name/approve", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing reviewer status = %d, want 400", resp.StatusCode)
	}

	// Reject twice, second conflicts.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/reject", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first reject status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/requests/"+requestID+"/reject", map[string]any{"reviewer": "mod-1"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second reject status = %d, want 409", resp.StatusCode)
	}
}

func TestListRequestsEndpoint(t *testing.T) {
	ts := setupAPI(t)

	recordID := createRecordViaAdd(t, ts, map[string]any{"name": "Old Bistro"})
	submitUpdateRequest(t, ts, recordID, map[string]any{"name": "Bistro"})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/requests?status=pending", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	requests, _ := body["requests"].([]any)
	if len(requests) != 1 {
		t.Fatalf("pending requests = %v", body["requests"])
	}
}
