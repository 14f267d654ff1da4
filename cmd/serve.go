package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"reviewdesk/internal/bootstrap"
	"reviewdesk/internal/bootstrap/logging"
	"reviewdesk/internal/errs"
	"reviewdesk/internal/transport/httpapi"
	"reviewdesk/internal/usecase/review"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the moderation HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		server := &http.Server{
			Addr:              app.Config.HTTP.Addr,
			Handler:           httpapi.NewServer(svc).Router(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		errCh := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http api listening", slog.String("addr", app.Config.HTTP.Addr))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "http api failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve http api")
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http api")
			}
			return nil
		}
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
