// Package accounting estimates token usage, cost and latency for a backend call.
package accounting

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/dealershipai/clarity/pkg/config"
)

const (
	// charsPerToken is the coarse text-to-token ratio.
	charsPerToken = 4
	// inputShare of the estimated tokens is billed at the input rate.
	inputShare = 0.7
	// unitTokens is the token count the rate card prices.
	unitTokens = 1_000_000
)

// Usage is the billed outcome of one successful call.
type Usage struct {
	TokensConsumed int     `json:"tokens_consumed"`
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	CostEstimate   float64 `json:"cost_estimate"`
	LatencyMs      int64   `json:"latency_ms"`
}

// EstimateTokens returns ceil(len(text)/4), with length measured in runes.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// Split divides an estimate into billed input and output tokens.
func Split(tokens int) (input, output int) {
	if tokens <= 0 {
		return 0, 0
	}
	input = int(math.Ceil(float64(tokens) * inputShare))
	if input > tokens {
		input = tokens
	}
	return input, tokens - input
}

// Cost prices input and output tokens against rate.
func Cost(rate config.Backend, input, output int) float64 {
	cost := float64(input)/unitTokens*rate.CostPerInputUnit +
		float64(output)/unitTokens*rate.CostPerOutputUnit
	if cost < 0 {
		return 0
	}
	return cost
}

// Account computes the usage for a call that produced output from input on
// the rate card entry rate.
func Account(rate config.Backend, input, output string, elapsed time.Duration) Usage {
	tokens := EstimateTokens(input + output)
	in, out := Split(tokens)
	return Usage{
		TokensConsumed: tokens,
		InputTokens:    in,
		OutputTokens:   out,
		CostEstimate:   Cost(rate, in, out),
		LatencyMs:      elapsed.Milliseconds(),
	}
}

// Timer measures wall-clock time of a single attempt.
type Timer struct {
	start time.Time
}

// StartTimer starts a timer now.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
