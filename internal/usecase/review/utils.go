package review

import (
	"strings"
	"time"

	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/ports"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func requireReviewer(reviewer string) (string, error) {
	trimmed := strings.TrimSpace(reviewer)
	if trimmed == "" {
		return "", catalog.ErrReviewerRequired
	}
	return trimmed, nil
}

func cacheRequestStatusKey(requestID string) string {
	return "request_status:" + requestID
}

func decisionsOf(changes []ports.FieldChange) []catalog.FieldDecision {
	out := make([]catalog.FieldDecision, 0, len(changes))
	for _, change := range changes {
		out = append(out, catalog.FieldDecision{
			Name:   change.Field,
			Status: change.Status,
			Value:  change.Value,
		})
	}
	return out
}
