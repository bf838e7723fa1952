package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/orchestrator"
	"github.com/dealershipai/clarity/pkg/router"
	"github.com/dealershipai/clarity/pkg/task"
	"github.com/dealershipai/clarity/pkg/verify"
)

func askCmd() *cobra.Command {
	var (
		kindFlag       string
		tokensFlag     int
		structuredFlag bool
		priorityFlag   string
		jsonFlag       bool
		verifyFlag     bool
	)

	cmd := &cobra.Command{
		Use:   "ask [input]",
		Short: "Execute a single task",
		Long: `Routes the input by task kind and size, executes it on the primary
backend, and fails over once to the fallback backend if the primary fails.

Use --tokens to give a size hint; without it the task is treated as small.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			t := task.Task{
				Kind:                     task.Kind(kindFlag),
				Input:                    args[0],
				RequiresStructuredOutput: structuredFlag,
				Priority:                 task.Priority(priorityFlag),
			}
			if cmd.Flags().Changed("tokens") {
				t.TokenHint = task.IntPtr(tokensFlag)
			}

			if line, ok := routingLine(a.engine.Router(), t); ok {
				fmt.Fprintln(os.Stderr, line)
			}

			r, err := a.engine.Execute(cmd.Context(), t)
			if err != nil {
				if orchestrator.IsInvalidTask(err) {
					return fmt.Errorf("invalid task (kinds: %s): %w", kindList(), err)
				}
				return err
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				fmt.Println(r.Output)
			}

			status := "nominal"
			if r.Degraded {
				status = "degraded"
			}
			fmt.Fprintf(os.Stderr, "\n%s: %d tokens, $%.6f, %dms, confidence %.2f (%s)\n",
				r.BackendUsed, r.TokensConsumed, r.CostEstimate, r.LatencyMs, r.Confidence, status)

			if verifyFlag {
				return reportVerification(cmd, a, t, r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(task.KindChat), "task kind: "+kindList())
	cmd.Flags().IntVar(&tokensFlag, "tokens", 0, "token size hint")
	cmd.Flags().BoolVar(&structuredFlag, "structured", false, "require structured output")
	cmd.Flags().StringVar(&priorityFlag, "priority", "", "priority: cost, quality or speed")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "run cross-verification on the result")

	return cmd
}

// routingLine describes where t will be sent. Invalid tasks have no route.
func routingLine(r *router.Router, t task.Task) (string, bool) {
	if t.Validate() != nil {
		return "", false
	}
	d, err := r.Classify(t)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("Routing to %s (fallback %s) by rule %d: %s",
		d.Primary, orDash(d.Fallback), d.Rule, d.Reason), true
}

func reportVerification(cmd *cobra.Command, a *app, t task.Task, r task.Result) error {
	ok, err := a.engine.Verify(cmd.Context(), t, r)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	alt, hasAlt := verify.AlternateBackend(a.cfg.RateCard, r.BackendUsed)
	if !hasAlt {
		alt = "-"
	}
	logger.Debug("cross-verification", zap.String("backend", r.BackendUsed), zap.String("alternate", alt), zap.Bool("accepted", ok))
	fmt.Fprintf(os.Stderr, "verification: accepted=%v alternate=%s\n", ok, alt)
	return nil
}

func kindList() string {
	kinds := task.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func tierLabel(t config.Tier) string {
	return strings.ReplaceAll(string(t), "_", "-")
}
