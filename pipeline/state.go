package pipeline

// State identifies where a run is in its linear stage sequence.
type State int

const (
	StateIdle State = iota
	StateIngesting
	StateIndexing
	StateExtracting
	StateGenerating
	StateSucceeded
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIngesting:
		return "ingesting"
	case StateIndexing:
		return "indexing"
	case StateExtracting:
		return "extracting"
	case StateGenerating:
		return "generating"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
