package model

// State is a position in the crawl state machine.
//
// A crawl moves strictly forward through
// Idle → Parsing → Filtering → ProjectingMetadata → Assembling → Serialized.
// Failed is reachable from every non-terminal state.
type State int

const (
	// StateIdle is the state of a crawl that has not started yet.
	StateIdle State = iota

	// StateParsing is entered when the spider's parse step begins.
	StateParsing

	// StateFiltering is entered once parsing produced every body node.
	StateFiltering

	// StateProjectingMetadata is entered after every filter ran without error.
	StateProjectingMetadata

	// StateAssembling is entered once head elements have been projected.
	StateAssembling

	// StateSerialized is the terminal success state.
	StateSerialized

	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns a human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateFiltering:
		return "filtering"
	case StateProjectingMetadata:
		return "projecting-metadata"
	case StateAssembling:
		return "assembling"
	case StateSerialized:
		return "serialized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateSerialized || s == StateFailed
}

// Stage names the pipeline stage a crawl error originated from.
type Stage string

// Pipeline stages, in execution order.
const (
	StageParse     Stage = "parse"
	StageFilter    Stage = "filter"
	StageMetadata  Stage = "metadata"
	StageAssembly  Stage = "assembly"
	StageSerialize Stage = "serialize"
)

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageParse, StageFilter, StageMetadata, StageAssembly, StageSerialize}
}

// State returns the state a crawl is in while the stage runs.
func (s Stage) State() State {
	switch s {
	case StageParse:
		return StateParsing
	case StageFilter:
		return StateFiltering
	case StageMetadata:
		return StateProjectingMetadata
	case StageAssembly, StageSerialize:
		return StateAssembling
	default:
		return StateIdle
	}
}
