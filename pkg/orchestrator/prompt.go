package orchestrator

import (
	"strings"

	"github.com/dealershipai/clarity/pkg/task"
)

const basePrompt = "You are DealershipAI's Chief Clarity Officer, an AI assistant helping automotive dealerships understand their AI visibility."

// FailoverMarker is appended to the system instructions of a degraded prompt.
const FailoverMarker = "\n\n[Failover mode - using cached context]"

var kindPrompts = map[task.Kind]string{
	task.KindSummarize: "Provide concise, actionable summaries. Focus on key insights and next steps.",
	task.KindReason:    "Think step-by-step. Analyze the problem, consider alternatives, and provide a well-reasoned solution.",
	task.KindCode:      "Generate clean, production-ready code. Follow TypeScript best practices and Next.js 14 patterns.",
	task.KindSchema:    "Validate and generate JSON-LD schema markup. Ensure compliance with Schema.org standards.",
	task.KindChat:      "Engage naturally with dealers. Be helpful, specific, and avoid jargon.",
}

// SystemPrompt returns the system instructions for a task kind. Embedding
// tasks carry none.
func SystemPrompt(kind task.Kind) string {
	if kind == task.KindEmbedding {
		return ""
	}
	if specific, ok := kindPrompts[kind]; ok {
		return basePrompt + " " + specific
	}
	return basePrompt
}

// DegradedInput prefixes input with cached context. Without context the
// input is returned unchanged.
func DegradedInput(contents []string, input string) string {
	if len(contents) == 0 {
		return input
	}

	var sb strings.Builder
	sb.WriteString("Previous context:\n")
	sb.WriteString(strings.Join(contents, "\n"))
	sb.WriteString("\n\nCurrent task: ")
	sb.WriteString(input)
	return sb.String()
}
