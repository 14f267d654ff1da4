package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reviewdesk/internal/bootstrap/logging"
	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/errs"
	"reviewdesk/internal/ports"
	"reviewdesk/internal/usecase/review"
)

type reviewerBody struct {
	Reviewer string `json:"reviewer"`
}

type submitBody struct {
	Type           string         `json:"type"`
	TargetRecordID string         `json:"target"`
	SubmittedBy    string         `json:"submittedBy"`
	Payload        map[string]any `json:"payload"`
	Changes        map[string]any `json:"changes"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	filter := ports.RequestFilter{
		Status: catalog.RequestStatus(r.URL.Query().Get("status")),
		Type:   catalog.RequestType(r.URL.Query().Get("type")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	items, err := s.svc.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": items})
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	requestID, err := s.svc.SubmitRequest(r.Context(), review.SubmitRequestInput{
		Type:           body.Type,
		TargetRecordID: body.TargetRecordID,
		SubmittedBy:    body.SubmittedBy,
		Payload:        body.Payload,
		Changes:        body.Changes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"requestId": requestID})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.GetRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGetRequestDiff(w http.ResponseWriter, r *http.Request) {
	diffs, err := s.svc.GetRequestDiff(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": diffs})
}

func (s *Server) handleApproveField(w http.ResponseWriter, r *http.Request) {
	s.fieldDecision(w, r, s.svc.ApproveField)
}

func (s *Server) handleRejectField(w http.ResponseWriter, r *http.Request) {
	s.fieldDecision(w, r, s.svc.RejectField)
}

func (s *Server) handleResetField(w http.ResponseWriter, r *http.Request) {
	s.fieldDecision(w, r, s.svc.ResetField)
}

func (s *Server) fieldDecision(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, input review.FieldDecisionInput) error) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := op(r.Context(), review.FieldDecisionInput{
		RequestID: chi.URLParam(r, "requestID"),
		Field:     chi.URLParam(r, "field"),
		Reviewer:  body.Reviewer,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetAllFields(w http.ResponseWriter, r *http.Request) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.ResetAllFields(r.Context(), review.ResetAllFieldsInput{
		RequestID: chi.URLParam(r, "requestID"),
		Reviewer:  body.Reviewer,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommitUpdate(w http.ResponseWriter, r *http.Request) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.CommitUpdate(r.Context(), review.CommitUpdateInput{
		RequestID: chi.URLParam(r, "requestID"),
		Reviewer:  body.Reviewer,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

func (s *Server) handleApproveCreation(w http.ResponseWriter, r *http.Request) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	recordID, err := s.svc.ApproveCreation(r.Context(), review.ApproveCreationInput{
		RequestID: chi.URLParam(r, "requestID"),
		Reviewer:  body.Reviewer,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"recordId": recordID})
}

func (s *Server) handleRejectCreation(w http.ResponseWriter, r *http.Request) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.RejectCreation(r.Context(), review.RejectCreationInput{
		RequestID: chi.URLParam(r, "requestID"),
		Reviewer:  body.Reviewer,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (s *Server) handleRejectAll(w http.ResponseWriter, r *http.Request) {
	var body reviewerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.RejectAll(r.Context(), review.RejectAllInput{
		RequestID: chi.URLParam(r, "requestID"),
		Reviewer:  body.Reviewer,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListRecords(r.Context(), ports.RecordFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": items})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.svc.GetRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

var errBadBody = errors.New("invalid request body")

func decodeBody(r *http.Request, out any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return errBadBody
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errBadBody
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the domain taxonomy onto HTTP statuses. Incomplete
// review responses carry the unresolved field names so the UI can show
// exactly what is left.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var incomplete *catalog.IncompleteReviewError
	var alreadyReviewed *catalog.AlreadyReviewedError
	var targetMissing *catalog.TargetMissingError

	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":            incomplete.Error(),
			"unresolvedFields": incomplete.UnresolvedFields,
		})
	case errors.As(err, &alreadyReviewed):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  alreadyReviewed.Error(),
			"status": string(alreadyReviewed.Status),
		})
	case errors.As(err, &targetMissing):
		writeJSON(w, http.StatusConflict, map[string]string{"error": targetMissing.Error()})
	case errors.Is(err, catalog.ErrRequestNotFound),
		errors.Is(err, catalog.ErrRecordNotFound),
		errors.Is(err, catalog.ErrFieldNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrInvalidRequestType),
		errors.Is(err, catalog.ErrInvalidFieldValue),
		errors.Is(err, catalog.ErrUpdateTypeRequired),
		errors.Is(err, catalog.ErrAddTypeRequired),
		errors.Is(err, catalog.ErrTargetRequired),
		errors.Is(err, catalog.ErrReviewerRequired),
		errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
