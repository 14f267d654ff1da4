package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"reviewdesk/internal/usecase/review"
)

// Server exposes the review engines over HTTP, one operation per route,
// matching the one-operation-per-reviewer-click contract of the
// moderation UI.
type Server struct {
	svc *review.Service
}

func NewServer(svc *review.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealthz)

	r.Route("/requests", func(r chi.Router) {
		r.Get("/", s.handleListRequests)
		r.Post("/", s.handleSubmitRequest)
		r.Route("/{requestID}", func(r chi.Router) {
			r.Get("/", s.handleGetRequest)
			r.Get("/diff", s.handleGetRequestDiff)
			r.Post("/fields/{field}/approve", s.handleApproveField)
			r.Post("/fields/{field}/reject", s.handleRejectField)
			r.Post("/fields/{field}/reset", s.handleResetField)
			r.Post("/reset", s.handleResetAllFields)
			r.Post("/commit", s.handleCommitUpdate)
			r.Post("/approve-creation", s.handleApproveCreation)
			r.Post("/reject-creation", s.handleRejectCreation)
			r.Post("/reject", s.handleRejectAll)
		})
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/", s.handleListRecords)
		r.Get("/{recordID}", s.handleGetRecord)
	})

	return r
}
