package controller

// State is the interaction state of the upload controller.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StatePreviewShown
	StateAnalyzing
	StateResultShown
	StateErrorShown
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePreviewing:
		return "Previewing"
	case StatePreviewShown:
		return "PreviewShown"
	case StateAnalyzing:
		return "Analyzing"
	case StateResultShown:
		return "ResultShown"
	case StateErrorShown:
		return "ErrorShown"
	default:
		return "Unknown"
	}
}

// Busy reports whether a remote call for the current selection is in flight.
func (s State) Busy() bool {
	return s == StatePreviewing || s == StateAnalyzing
}
