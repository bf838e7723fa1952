package router

// Decision is the routing outcome for one task. It is derived
// deterministically from the task and never persisted.
type Decision struct {
	Rule     int    `json:"rule"`
	Reason   string `json:"reason"`
	Primary  string `json:"primary"`
	Fallback string `json:"fallback,omitempty"`
}

// HasFallback reports whether the decision allows a failover hop.
func (d Decision) HasFallback() bool {
	return d.Fallback != ""
}
