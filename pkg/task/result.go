package task

// Confidence levels attached to results.
const (
	NominalConfidence  = 0.85
	DegradedConfidence = 0.75
)

// Attempt captures one backend invocation for diagnostics. Failed attempts
// are recorded here but never billed.
type Attempt struct {
	Backend   string `json:"backend"`
	Fallback  bool   `json:"fallback"`
	LatencyMs int64  `json:"latency_ms"`
	Failure   string `json:"failure,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the normalized output of an executed task. It is created once
// per task and not modified after being returned.
type Result struct {
	TaskID         string    `json:"task_id"`
	Output         string    `json:"output"`
	BackendUsed    string    `json:"backend_used"`
	TokensConsumed int       `json:"tokens_consumed"`
	CostEstimate   float64   `json:"cost_estimate"`
	LatencyMs      int64     `json:"latency_ms"`
	Confidence     float64   `json:"confidence"`
	Degraded       bool      `json:"degraded"`
	Attempts       []Attempt `json:"attempts,omitempty"`
}
