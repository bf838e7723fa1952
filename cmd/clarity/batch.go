package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dealershipai/clarity/pkg/ledger"
	"github.com/dealershipai/clarity/pkg/task"
)

// batchFile is the YAML layout accepted by the batch command.
type batchFile struct {
	Tasks []task.Task `yaml:"tasks"`
}

func loadBatch(path string) ([]task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("%s: no tasks", path)
	}
	return f.Tasks, nil
}

func batchCmd() *cobra.Command {
	var (
		file      string
		parallel  int
		ledgerDir string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Execute a file of tasks concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadBatch(file)
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			runID := uuid.NewString()
			var writer *ledger.Writer
			if ledgerDir != "" {
				writer, err = ledger.NewWriter(ledgerDir, runID)
				if err != nil {
					return fmt.Errorf("failed to create ledger: %w", err)
				}
			}

			outcomes := a.engine.ExecuteAll(cmd.Context(), tasks, parallel)

			tracker := ledger.NewTracker()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tKIND\tBACKEND\tDEGRADED\tTOKENS\tCOST\tLATENCY\tERROR")
			for _, o := range outcomes {
				tracker.Record(o.Result, o.Err)
				if writer != nil {
					if err := writer.WriteTask(ledger.NewTaskRecord(o.Task, o.Result, o.Err)); err != nil {
						logger.Warn("failed to write ledger record", zap.String("task_id", o.Task.ID), zap.Error(err))
					}
				}

				if o.Err != nil {
					fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\t-\t%v\n", o.Task.ID, o.Task.Kind, o.Err)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t$%.6f\t%dms\t-\n",
					o.Task.ID, o.Task.Kind, o.Result.BackendUsed, o.Result.Degraded,
					o.Result.TokensConsumed, o.Result.CostEstimate, o.Result.LatencyMs)
			}

			totals := tracker.Totals()
			fmt.Fprintln(w)
			fmt.Fprintf(w, "TOTAL\t%d tasks\t%d ok\t%d degraded\t%d\t$%.6f\t\t%d failed\n",
				totals.Tasks, totals.Succeeded, totals.Degraded, totals.TokensConsumed, totals.CostEstimate, totals.Failed)
			if err := w.Flush(); err != nil {
				return err
			}

			if writer != nil {
				run := ledger.RunRecord{ID: runID, Timestamp: time.Now().UTC(), Source: file, Totals: totals}
				if err := writer.WriteRun(run); err != nil {
					return fmt.Errorf("failed to write run record: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Ledger written to %s\n", writer.RunDir())
			}

			if totals.Failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", totals.Failed, totals.Tasks)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a tasks list")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "maximum tasks in flight")
	cmd.Flags().StringVar(&ledgerDir, "ledger", "", "write per-task records under this directory")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
