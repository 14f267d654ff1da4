package review

import (
	"context"
	"log/slog"

	"reviewdesk/internal/bootstrap/logging"
	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/errs"
)

// cleanupAssets deletes every blob a field value references, best effort.
// Failures are logged as storage cleanup warnings and never surface;
// unrecognized URL shapes are skipped. Called at most once per decision,
// outside any transaction.
func (s *Service) cleanupAssets(ctx context.Context, requestID string, field string, value catalog.FieldValue) {
	if s.assets == nil {
		return
	}

	for _, rawURL := range value.AssetURLs() {
		path, ok := catalog.ResolveStoragePath(rawURL)
		if !ok {
			logging.Info(
				ctx,
				"skip asset cleanup for unrecognized url",
				slog.String("request_id", requestID),
				slog.String("field", field),
				slog.String("url", rawURL),
			)
			continue
		}

		if err := s.assets.Delete(ctx, path); err != nil {
			logging.Warn(
				ctx,
				"storage cleanup failed",
				slog.String("warning", "storage_cleanup"),
				slog.String("request_id", requestID),
				slog.String("field", field),
				slog.String("path", path),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}
