package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/router"
	"github.com/dealershipai/clarity/pkg/task"
)

func TestMockCardKeepsRouting(t *testing.T) {
	card, err := mockCard(config.DefaultRateCard())
	if err != nil {
		t.Fatalf("mock card: %v", err)
	}
	for i, b := range card.Backends {
		if b.Vendor != config.VendorMock {
			t.Fatalf("%s: expected mock vendor, got %s", b.ID, b.Vendor)
		}
		if b.ID != config.DefaultRateCard().Backends[i].ID {
			t.Fatalf("mock card reordered backends")
		}
	}
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	content := `tasks:
  - kind: summarize
    input: weekly lead report
    token_hint: 800
  - id: code-1
    kind: code
    input: add a JSON-LD block
    requires_structured_output: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tasks, err := loadBatch(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Kind != task.KindSummarize || tasks[0].Tokens() != 800 {
		t.Fatalf("unexpected first task %+v", tasks[0])
	}
	if tasks[1].ID != "code-1" || !tasks[1].RequiresStructuredOutput {
		t.Fatalf("unexpected second task %+v", tasks[1])
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	_ = os.WriteFile(empty, []byte("tasks: []\n"), 0644)
	if _, err := loadBatch(empty); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestRoutingLineSkipsInvalidTasks(t *testing.T) {
	r := router.New(config.DefaultRateCard())

	if line, ok := routingLine(r, task.Task{Kind: "deploy", Input: "x"}); ok {
		t.Fatalf("unknown kind should not print a route, got %q", line)
	}
	if _, ok := routingLine(r, task.Task{Kind: task.KindChat, Input: " "}); ok {
		t.Fatalf("blank input should not print a route")
	}

	line, ok := routingLine(r, task.Task{Kind: task.KindChat, Input: "hours today?"})
	if !ok || !strings.Contains(line, "claude-3-haiku") || !strings.Contains(line, "rule 1") {
		t.Fatalf("unexpected routing line %q", line)
	}
}
