package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"procissue/internal/bootstrap"
	"procissue/internal/bootstrap/logging"
	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	"procissue/internal/ports"
	"procissue/internal/usecase/processing"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Record, inspect and resolve processing issues",
}

func newIssueRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a processing issue for a raw event",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *processing.Service) error {
			ctx := cmd.Context()

			projectID, _ := cmd.Flags().GetUint64("project")
			rawEventID, _ := cmd.Flags().GetUint64("raw-event")
			identity, err := identityFromFlags(cmd)
			if err != nil {
				return err
			}

			res, err := svc.Record(ctx, processing.RecordInput{
				ProjectID:   projectID,
				RawEventID:  rawEventID,
				Identity:    identity,
				Diagnostics: diagnosticsFromFlags(cmd),
			})
			if err != nil {
				return errs.Wrap(err, "record processing issue")
			}

			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"recorded: issue=%d checksum=%s issue_created=%t link_created=%t\n",
				res.IssueID,
				res.Checksum,
				res.IssueCreated,
				res.LinkCreated,
			); err != nil {
				return errs.Wrap(err, "write record output")
			}
			return nil
		}),
	}

	cmd.Flags().Uint64("project", 0, "Project id")
	cmd.Flags().Uint64("raw-event", 0, "Raw event id blocked by the issue")
	addIdentityFlags(cmd)
	cmd.Flags().String("message", "", "Diagnostic message")
	cmd.Flags().String("image-path", "", "Path of the affected image")
	cmd.Flags().String("image-uuid", "", "Debug id of the affected image")
	cmd.Flags().String("image-arch", "", "Architecture of the affected image")
	cmd.Flags().String("mapping-uuid", "", "Proguard mapping uuid")
	cmd.Flags().StringToString("attr", nil, "Extra diagnostic attribute key=value (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("raw-event")
	return cmd
}

func newIssueResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a processing issue and print raw events ready for reprocessing",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *processing.Service) error {
			ctx := cmd.Context()

			projectID, _ := cmd.Flags().GetUint64("project")
			identity, err := identityFromFlags(cmd)
			if err != nil {
				return err
			}

			rawEventIDs, err := svc.Resolve(ctx, processing.ResolveInput{
				ProjectID: projectID,
				Identity:  identity,
			})
			if err != nil {
				return errs.Wrap(err, "resolve processing issue")
			}

			for _, id := range rawEventIDs {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
					return errs.Wrap(err, "write resolve output")
				}
			}
			if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "resolved %s: %d raw event(s) ready for reprocessing\n", identity, len(rawEventIDs)); err != nil {
				return errs.Wrap(err, "write resolve summary")
			}
			return nil
		}),
	}

	cmd.Flags().Uint64("project", 0, "Project id")
	addIdentityFlags(cmd)
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newIssueListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processing issues of a project",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *processing.Service) error {
			projectID, _ := cmd.Flags().GetUint64("project")

			items, err := svc.ListIssues(cmd.Context(), projectID)
			if err != nil {
				return errs.Wrap(err, "list processing issues")
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if _, err := fmt.Fprintln(tw, "ID\tCHECKSUM\tSCOPE\tOBJECT\tTYPE\tEVENTS\tCREATED"); err != nil {
				return errs.Wrap(err, "write list header")
			}
			for _, item := range items {
				if _, err := fmt.Fprintf(
					tw,
					"%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
					item.IssueID,
					item.Checksum,
					item.Scope(),
					item.Object(),
					item.Type(),
					item.NumEvents,
					item.CreatedAt,
				); err != nil {
					return errs.Wrap(err, "write list row")
				}
			}
			return errs.Wrap(tw.Flush(), "flush list output")
		}),
	}

	cmd.Flags().Uint64("project", 0, "Project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newIssueShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one processing issue with its blocked raw events",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *processing.Service) error {
			ctx := cmd.Context()

			projectID, _ := cmd.Flags().GetUint64("project")
			identity, err := identityFromFlags(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			detail, err := svc.GetIssue(ctx, projectID, identity)
			switch {
			case errors.Is(err, ports.ErrProcessingIssueNotFound):
				if _, err := fmt.Fprintf(out, "no open processing issue for %s (checksum %s)\n", identity, identity.Checksum()); err != nil {
					return errs.Wrap(err, "write show output")
				}
			case err != nil:
				return errs.Wrap(err, "get processing issue")
			default:
				if err := writeIssueDetail(cmd, detail); err != nil {
					return err
				}
			}

			resolvedAt, found, err := svc.LastResolved(ctx, projectID, identity)
			if err != nil {
				logging.Warn(ctx, "read last resolved failed", slog.Any("err", errs.Loggable(err)))
				return nil
			}
			if found {
				if _, err := fmt.Fprintf(out, "last resolved: %s\n", resolvedAt.Format(time.RFC3339)); err != nil {
					return errs.Wrap(err, "write show output")
				}
			}
			return nil
		}),
	}

	cmd.Flags().Uint64("project", 0, "Project id")
	addIdentityFlags(cmd)
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newIssueTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the known fault types",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *processing.Service) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if _, err := fmt.Fprintln(tw, "SCOPE\tTYPE\tDESCRIPTION"); err != nil {
				return errs.Wrap(err, "write types header")
			}
			for _, kind := range svc.Taxonomy().Kinds() {
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", kind.Scope, kind.Name, kind.Description); err != nil {
					return errs.Wrap(err, "write types row")
				}
			}
			return errs.Wrap(tw.Flush(), "flush types output")
		}),
	}
}

func writeIssueDetail(cmd *cobra.Command, detail processing.IssueDetail) error {
	out := cmd.OutOrStdout()
	lines := []string{
		fmt.Sprintf("issue: %d", detail.IssueID),
		fmt.Sprintf("checksum: %s", detail.Checksum),
		fmt.Sprintf("scope: %s", detail.Scope()),
		fmt.Sprintf("object: %s", detail.Object()),
		fmt.Sprintf("type: %s", detail.Type()),
		fmt.Sprintf("created: %s", detail.CreatedAt),
	}
	if detail.Payload.Message != "" {
		lines = append(lines, fmt.Sprintf("message: %s", detail.Payload.Message))
	}
	for _, attr := range []struct{ key, value string }{
		{"image_path", detail.Payload.ImagePath},
		{"image_uuid", detail.Payload.ImageUUID},
		{"image_arch", detail.Payload.ImageArch},
		{"mapping_uuid", detail.Payload.MappingUUID},
	} {
		if attr.value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", attr.key, attr.value))
		}
	}
	for _, key := range sortedKeys(detail.Payload.Attributes) {
		lines = append(lines, fmt.Sprintf("attr.%s: %s", key, detail.Payload.Attributes[key]))
	}

	ids := make([]string, 0, len(detail.RawEventIDs))
	for _, id := range detail.RawEventIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	lines = append(lines, fmt.Sprintf("raw events (%d): %s", len(ids), strings.Join(ids, ",")))

	if _, err := fmt.Fprintln(out, strings.Join(lines, "\n")); err != nil {
		return errs.Wrap(err, "write issue detail")
	}
	return nil
}

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().String("scope", "", "Fault scope, for example native or proguard")
	cmd.Flags().String("object", "", "Object the fault is about, for example an image path")
	cmd.Flags().String("type", "", "Fault type, for example native_missing_dsym")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("object")
	_ = cmd.MarkFlagRequired("type")
}

func identityFromFlags(cmd *cobra.Command) (domain.Identity, error) {
	scope, _ := cmd.Flags().GetString("scope")
	object, _ := cmd.Flags().GetString("object")
	faultType, _ := cmd.Flags().GetString("type")

	scope = strings.TrimSpace(scope)
	object = strings.TrimSpace(object)
	faultType = strings.TrimSpace(faultType)
	if scope == "" || object == "" || faultType == "" {
		return domain.Identity{}, errors.New("scope, object and type are required")
	}
	return domain.NewIdentity(scope, object, faultType), nil
}

func diagnosticsFromFlags(cmd *cobra.Command) domain.Diagnostics {
	message, _ := cmd.Flags().GetString("message")
	imagePath, _ := cmd.Flags().GetString("image-path")
	imageUUID, _ := cmd.Flags().GetString("image-uuid")
	imageArch, _ := cmd.Flags().GetString("image-arch")
	mappingUUID, _ := cmd.Flags().GetString("mapping-uuid")
	attrs, _ := cmd.Flags().GetStringToString("attr")

	return domain.Diagnostics{
		Message:     strings.TrimSpace(message),
		ImagePath:   imagePath,
		ImageUUID:   imageUUID,
		ImageArch:   imageArch,
		MappingUUID: mappingUUID,
		Attributes:  attrs,
	}
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(
		newIssueRecordCmd(),
		newIssueResolveCmd(),
		newIssueListCmd(),
		newIssueShowCmd(),
		newIssueTypesCmd(),
		newIssueRecordBatchCmd(),
	)
}
