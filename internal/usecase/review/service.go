package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

// Service hosts the review engines: per-field approval, reconciliation
// of update requests, creation approval of add requests, and rejection.
type Service struct {
	repo    ports.ReviewRepository
	uow     ports.UnitOfWork
	cache   ports.Cache
	assets  ports.AssetStore
	profile ReviewProfile

	// newRecordID reserves a record identity before any document or
	// asset path exists under it. Overridable in tests.
	newRecordID func() string
}

// NewService wires review usecases with repository, unit of work,
// optional cache and the asset store.
func NewService(repo ports.ReviewRepository, uow ports.UnitOfWork, cache ports.Cache, assets ports.AssetStore, profile ReviewProfile) *Service {
	return &Service{
		repo:        repo,
		uow:         uow,
		cache:       cache,
		assets:      assets,
		profile:     profile,
		newRecordID: uuid.NewString,
	}
}

type FieldDecisionInput struct {
	RequestID string
	Field     string
	Reviewer  string
}

type ResetAllFieldsInput struct {
	RequestID string
	Reviewer  string
}

type CommitUpdateInput struct {
	RequestID string
	Reviewer  string
}

type ApproveCreationInput struct {
	RequestID string
	Reviewer  string
}

type RejectCreationInput struct {
	RequestID string
	Reviewer  string
}

type RejectAllInput struct {
	RequestID string
	Reviewer  string
}

type SubmitRequestInput struct {
	Type           string
	TargetRecordID string
	SubmittedBy    string
	Payload        map[string]any
	Changes        map[string]any
}

type RequestListItem struct {
	RequestID      string `json:"requestId"`
	Type           string `json:"type"`
	TargetRecordID string `json:"target,omitempty"`
	SubmittedBy    string `json:"submittedBy"`
	SubmittedAt    string `json:"submittedAt"`
	Status         string `json:"status"`
	ReviewedBy     string `json:"reviewedBy,omitempty"`
	ReviewedAt     string `json:"reviewedAt,omitempty"`
}

type FieldChangeItem struct {
	Field      string `json:"field"`
	Value      any    `json:"value"`
	Status     string `json:"status"`
	ApprovedBy string `json:"approvedBy,omitempty"`
	ApprovedAt string `json:"approvedAt,omitempty"`
}

type RequestDetail struct {
	RequestListItem
	Payload map[string]any    `json:"payload,omitempty"`
	Changes []FieldChangeItem `json:"changes,omitempty"`
}

type FieldDiff struct {
	Field    string `json:"field"`
	Current  any    `json:"current"`
	Proposed any    `json:"proposed"`
	Status   string `json:"status"`
}

type RecordDetail struct {
	RecordID  string         `json:"recordId"`
	Fields    map[string]any `json:"fields"`
	Status    string         `json:"status"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

func (s *Service) checkDeps(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.repo == nil {
		return errors.New("review repository is required")
	}
	if s.uow == nil {
		return errors.New("review unit of work is required")
	}
	return nil
}

// loadPendingRequest reads a request and rejects terminal ones, the
// shared precondition of every mutating operation.
func (s *Service) loadPendingRequest(ctx context.Context, requestID string) (ports.ChangeRequest, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return ports.ChangeRequest{}, err
	}
	if req.Status.Terminal() {
		return ports.ChangeRequest{}, &catalog.AlreadyReviewedError{
			RequestID: req.RequestID,
			Status:    req.Status,
		}
	}
	return req, nil
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}
