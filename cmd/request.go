package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reviewdesk/internal/bootstrap"
	"reviewdesk/internal/bootstrap/logging"
	"reviewdesk/internal/domain/catalog"
	"reviewdesk/internal/errs"
	"reviewdesk/internal/ports"
	"reviewdesk/internal/usecase/review"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Review change requests",
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List change requests",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		reqType, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		items, err := svc.ListRequests(ctx, ports.RequestFilter{
			Status: catalog.RequestStatus(status),
			Type:   catalog.RequestType(reqType),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			logging.Error(ctx, "list change requests failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list change requests")
		}

		for _, item := range items {
			target := item.TargetRecordID
			if target == "" {
				target = "-"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
				item.RequestID, item.Type, item.Status, target, item.SubmittedBy); err != nil {
				return errs.Wrap(err, "write list output")
			}
		}
		return nil
	}),
}

var requestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one change request with its field changes",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		detail, err := svc.GetRequest(ctx, requestID)
		if err != nil {
			logging.Error(ctx, "show change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "show change request")
		}

		return printJSON(cmd, detail)
	}),
}

var requestDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the current vs proposed values of a change request",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		diffs, err := svc.GetRequestDiff(ctx, requestID)
		if err != nil {
			logging.Error(ctx, "diff change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "diff change request")
		}

		return printJSON(cmd, diffs)
	}),
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a change request (development helper for the external submission flow)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reqType, _ := cmd.Flags().GetString("type")
		target, _ := cmd.Flags().GetString("target")
		submittedBy, _ := cmd.Flags().GetString("by")
		payloadJSON, _ := cmd.Flags().GetString("payload")
		changesJSON, _ := cmd.Flags().GetString("changes")

		payload, err := decodeJSONMap(payloadJSON)
		if err != nil {
			return errs.Wrap(err, "parse payload")
		}
		changes, err := decodeJSONMap(changesJSON)
		if err != nil {
			return errs.Wrap(err, "parse changes")
		}

		requestID, err := svc.SubmitRequest(ctx, review.SubmitRequestInput{
			Type:           reqType,
			TargetRecordID: target,
			SubmittedBy:    submittedBy,
			Payload:        payload,
			Changes:        changes,
		})
		if err != nil {
			logging.Error(ctx, "submit change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "submit change request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "submitted request: %s\n", requestID); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

var requestApproveFieldCmd = &cobra.Command{
	Use:   "approve-field",
	Short: "Approve one proposed field of an update request",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		return runFieldDecision(cmd, svc.ApproveField, "approved")
	}),
}

var requestRejectFieldCmd = &cobra.Command{
	Use:   "reject-field",
	Short: "Reject one proposed field of an update request",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		return runFieldDecision(cmd, svc.RejectField, "rejected")
	}),
}

var requestResetFieldCmd = &cobra.Command{
	Use:   "reset-field",
	Short: "Return one proposed field to pending",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		return runFieldDecision(cmd, svc.ResetField, "reset")
	}),
}

var requestResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return every proposed field of an update request to pending",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		if err := svc.ResetAllFields(ctx, review.ResetAllFieldsInput{
			RequestID: requestID,
			Reviewer:  reviewer,
		}); err != nil {
			logging.Error(ctx, "reset change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "reset change request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "reset request: %s\n", requestID); err != nil {
			return errs.Wrap(err, "write reset output")
		}
		return nil
	}),
}

var requestCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Reconcile approved fields of an update request into its target record",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		if err := svc.CommitUpdate(ctx, review.CommitUpdateInput{
			RequestID: requestID,
			Reviewer:  reviewer,
		}); err != nil {
			logging.Error(ctx, "commit change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "commit change request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "committed request: %s\n", requestID); err != nil {
			return errs.Wrap(err, "write commit output")
		}
		return nil
	}),
}

var requestApproveCreationCmd = &cobra.Command{
	Use:   "approve-creation",
	Short: "Approve an add request and create its canonical record",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		recordID, err := svc.ApproveCreation(ctx, review.ApproveCreationInput{
			RequestID: requestID,
			Reviewer:  reviewer,
		})
		if err != nil {
			logging.Error(ctx, "approve creation failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "approve creation")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created record: %s\n", recordID); err != nil {
			return errs.Wrap(err, "write approve-creation output")
		}
		return nil
	}),
}

var requestRejectCreationCmd = &cobra.Command{
	Use:   "reject-creation",
	Short: "Reject an add request without creating a record",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		if err := svc.RejectCreation(ctx, review.RejectCreationInput{
			RequestID: requestID,
			Reviewer:  reviewer,
		}); err != nil {
			logging.Error(ctx, "reject creation failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "reject creation")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "rejected request: %s\n", requestID); err != nil {
			return errs.Wrap(err, "write reject-creation output")
		}
		return nil
	}),
}

var requestRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a change request of either type",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		requestID, _ := cmd.Flags().GetString("request")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		if err := svc.RejectAll(ctx, review.RejectAllInput{
			RequestID: requestID,
			Reviewer:  reviewer,
		}); err != nil {
			logging.Error(ctx, "reject change request failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "reject change request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "rejected request: %s\n", requestID); err != nil {
			return errs.Wrap(err, "write reject output")
		}
		return nil
	}),
}

func runFieldDecision(cmd *cobra.Command, op func(ctx context.Context, input review.FieldDecisionInput) error, verb string) error {
	ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

	requestID, _ := cmd.Flags().GetString("request")
	field, _ := cmd.Flags().GetString("field")
	reviewer, _ := cmd.Flags().GetString("reviewer")

	if err := op(ctx, review.FieldDecisionInput{
		RequestID: requestID,
		Field:     field,
		Reviewer:  reviewer,
	}); err != nil {
		logging.Error(ctx, "field decision failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrapf(err, "%s field %s", verb, field)
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s field %s on request %s\n", verb, field, requestID); err != nil {
		return errs.Wrap(err, "write field decision output")
	}
	return nil
}

func decodeJSONMap(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errs.Wrap(err, "encode output")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw)); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(requestCmd)

	requestListCmd.Flags().String("status", "", "Filter by request status (pending/reviewed/rejected)")
	requestListCmd.Flags().String("type", "", "Filter by request type (add/update)")
	requestListCmd.Flags().Int("limit", 0, "Page size, 0 for all")
	requestListCmd.Flags().Int("offset", 0, "Page offset")

	requestShowCmd.Flags().String("request", "", "Change request id")
	requestDiffCmd.Flags().String("request", "", "Change request id")

	requestSubmitCmd.Flags().String("type", "", "Request type (add/update)")
	requestSubmitCmd.Flags().String("target", "", "Target record id for update requests")
	requestSubmitCmd.Flags().String("by", "", "Submitter")
	requestSubmitCmd.Flags().String("payload", "", "Proposed record as JSON (add requests)")
	requestSubmitCmd.Flags().String("changes", "", "Proposed field values as JSON (update requests)")

	for _, c := range []*cobra.Command{
		requestApproveFieldCmd, requestRejectFieldCmd, requestResetFieldCmd,
	} {
		c.Flags().String("request", "", "Change request id")
		c.Flags().String("field", "", "Field name")
		c.Flags().String("reviewer", "", "Reviewer")
	}

	for _, c := range []*cobra.Command{
		requestResetCmd, requestCommitCmd, requestApproveCreationCmd,
		requestRejectCreationCmd, requestRejectCmd,
	} {
		c.Flags().String("request", "", "Change request id")
		c.Flags().String("reviewer", "", "Reviewer")
	}

	requestCmd.AddCommand(
		requestListCmd,
		requestShowCmd,
		requestDiffCmd,
		requestSubmitCmd,
		requestApproveFieldCmd,
		requestRejectFieldCmd,
		requestResetFieldCmd,
		requestResetCmd,
		requestCommitCmd,
		requestApproveCreationCmd,
		requestRejectCreationCmd,
		requestRejectCmd,
	)
}
