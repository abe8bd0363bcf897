package panel

import (
	"time"

	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

// Messages shown in the region when an operation ends without an image
const (
	MsgFailed   = "Failed"
	MsgTimedOut = "Timed out"
)

// Phase is the state of the current operation
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePolling
	PhaseReady
	PhaseFailed
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePolling:
		return "polling"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseTimedOut:
		return "timed out"
	}
	return "unknown"
}

// Status describes what the controller is doing
type Status struct {
	Phase     Phase
	Request   renderservice.Request
	RequestID string
	// Delay and Attempt describe the next poll while Phase is PhasePolling
	Delay   time.Duration
	Attempt int
	// Image is set once Phase is PhaseReady
	Image *svgdoc.Image
	Err   error
}

// Terminal reports whether the operation has ended
func (s Status) Terminal() bool {
	switch s.Phase {
	case PhaseReady, PhaseFailed, PhaseTimedOut:
		return true
	}
	return false
}
