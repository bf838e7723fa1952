// Package ledger persists per-task execution records and batch cost totals.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dealershipai/clarity/pkg/orchestrator"
	"github.com/dealershipai/clarity/pkg/task"
)

// TaskRecord captures one executed task.
type TaskRecord struct {
	TaskID    string        `json:"task_id"`
	Timestamp time.Time     `json:"timestamp"`
	Kind      task.Kind     `json:"kind"`
	Priority  task.Priority `json:"priority,omitempty"`
	Input     string        `json:"input"`
	Result    *task.Result  `json:"result,omitempty"`
	Error     *ErrorRecord  `json:"error,omitempty"`
}

// ErrorRecord is the serializable form of an execution error.
type ErrorRecord struct {
	Kind     string         `json:"kind,omitempty"`
	Message  string         `json:"message"`
	Attempts []task.Attempt `json:"attempts,omitempty"`
}

// RunRecord summarizes a batch.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
	Totals    Totals    `json:"totals"`
}

// NewTaskRecord builds the record for a finished task.
func NewTaskRecord(t task.Task, r task.Result, err error) TaskRecord {
	rec := TaskRecord{
		TaskID:    t.ID,
		Timestamp: time.Now().UTC(),
		Kind:      t.Kind,
		Priority:  t.Priority,
		Input:     t.Input,
	}
	if err != nil {
		rec.Error = &ErrorRecord{Message: err.Error()}
		var oe *orchestrator.Error
		if errors.As(err, &oe) {
			rec.Error.Kind = string(oe.Kind)
			rec.Error.Attempts = oe.Attempts
			if rec.TaskID == "" {
				rec.TaskID = oe.TaskID
			}
		}
		return rec
	}
	rec.Result = &r
	if rec.TaskID == "" {
		rec.TaskID = r.TaskID
	}
	return rec
}

// Writer writes records under baseDir/runID.
type Writer struct {
	runDir string
}

// NewWriter creates the run directory.
func NewWriter(baseDir, runID string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(filepath.Join(runDir, "tasks"), 0700); err != nil {
		return nil, err
	}
	if err := os.Chmod(runDir, 0700); err != nil {
		return nil, err
	}
	return &Writer{runDir: runDir}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteTask writes tasks/<task-id>.json.
func (w *Writer) WriteTask(record TaskRecord) error {
	if record.TaskID == "" {
		return fmt.Errorf("task ID is required")
	}
	if filepath.Base(record.TaskID) != record.TaskID {
		return fmt.Errorf("invalid task ID %q", record.TaskID)
	}
	return writeJSON(filepath.Join(w.runDir, "tasks", record.TaskID+".json"), record)
}

// WriteRun writes run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	return writeJSON(filepath.Join(w.runDir, "run.json"), record)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
