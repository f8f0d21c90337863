package domain

// Connectivity statuses reported by backend health probes.
const (
	HealthConnected   = "connected"
	HealthUnreachable = "unreachable"
	HealthError       = "error"
)

// ServiceHealth is the reachability report of an external AI backend.
// Probes never return an error; failures are folded into the report.
type ServiceHealth struct {
	Status string `json:"status"`
	Host   string `json:"host"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"error,omitempty"`
}
