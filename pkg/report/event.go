package report

import "time"

// Event is the per-device outcome record written to the run log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Device    string    `json:"device"`
	OSType    string    `json:"os_type"`
	Mode      string    `json:"mode"` // "implement" or "rollback"
	Success   bool      `json:"success"`
	Saved     bool      `json:"saved"`
	Error     string    `json:"error,omitempty"`
	Output    string    `json:"output,omitempty"`
}
