// Package probe implements the stateless HTTP and TCP check
// primitives. Every executor returns a typed Outcome; none
// of them ever raise outside that contract.
package probe

// Status is the raw result of one probe, before the state machine
// applies thresholding.
type Status string

const (
	Up   Status = "up"
	Down Status = "down"
)

// Outcome is the result of one probe execution.
type Outcome struct {
	Status    Status
	LatencyMS int
	Error     string // empty when Status == Up
}
