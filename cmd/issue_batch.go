package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"procissue/internal/bootstrap"
	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	"procissue/internal/usecase/processing"
)

// batchRecordLine is one JSONL line accepted by record-batch.
type batchRecordLine struct {
	ProjectID   uint64             `json:"project_id"`
	RawEventID  uint64             `json:"raw_event_id"`
	Scope       string             `json:"scope"`
	Object      string             `json:"object"`
	Type        string             `json:"type"`
	Diagnostics domain.Diagnostics `json:"diagnostics"`
}

func newIssueRecordBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record-batch",
		Short: "Record processing issues from a JSONL file",
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *processing.Service) error {
			ctx := cmd.Context()

			filePath, _ := cmd.Flags().GetString("file")
			workers, _ := cmd.Flags().GetInt("workers")
			if workers <= 0 {
				workers = app.Config.Processing.BatchWorkers
			}

			inputs, err := readBatchFile(cmd, filePath)
			if err != nil {
				return err
			}

			summary, err := svc.RecordBatch(ctx, inputs, workers)
			if err != nil {
				return errs.Wrapf(err, "record batch from %s", filePath)
			}

			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"record-batch summary: file=%s recorded=%d issues_created=%d links_created=%d\n",
				filePath,
				summary.Recorded,
				summary.IssuesCreated,
				summary.LinksCreated,
			); err != nil {
				return errs.Wrap(err, "write record-batch summary")
			}
			return nil
		}),
	}

	cmd.Flags().String("file", "", "JSONL file with one occurrence per line, - for stdin")
	cmd.Flags().Int("workers", 0, "Concurrent record workers (default processing.batch_workers)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readBatchFile(cmd *cobra.Command, filePath string) ([]processing.RecordInput, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, errors.New("file is required")
	}
	if filePath == "-" {
		return parseBatchLines(cmd.InOrStdin())
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errs.Wrapf(err, "open batch file %q", filePath)
	}
	defer func() {
		_ = file.Close()
	}()
	return parseBatchLines(file)
}

func parseBatchLines(r io.Reader) ([]processing.RecordInput, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inputs := make([]processing.RecordInput, 0, 64)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var line batchRecordLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, errs.Wrapf(err, "parse batch line %d", lineNo)
		}
		if line.Scope == "" || line.Object == "" || line.Type == "" {
			return nil, fmt.Errorf("batch line %d: scope, object and type are required", lineNo)
		}

		inputs = append(inputs, processing.RecordInput{
			ProjectID:   line.ProjectID,
			RawEventID:  line.RawEventID,
			Identity:    domain.NewIdentity(line.Scope, line.Object, line.Type),
			Diagnostics: line.Diagnostics,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(err, "read batch lines")
	}
	return inputs, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
