package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"reviewdesk/internal/bootstrap"
	"reviewdesk/internal/bootstrap/logging"
	"reviewdesk/internal/errs"
	"reviewdesk/internal/ports"
	"reviewdesk/internal/usecase/review"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect canonical catalog records",
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List canonical records",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		items, err := svc.ListRecords(ctx, ports.RecordFilter{Limit: limit, Offset: offset})
		if err != nil {
			logging.Error(ctx, "list records failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list records")
		}

		return printJSON(cmd, items)
	}),
}

var recordShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one canonical record",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		recordID, _ := cmd.Flags().GetString("record")
		record, err := svc.GetRecord(ctx, recordID)
		if err != nil {
			logging.Error(ctx, "show record failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "show record")
		}

		return printJSON(cmd, record)
	}),
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordListCmd.Flags().Int("limit", 0, "Page size, 0 for all")
	recordListCmd.Flags().Int("offset", 0, "Page offset")
	recordShowCmd.Flags().String("record", "", "Record id")

	recordCmd.AddCommand(recordListCmd, recordShowCmd)
}
