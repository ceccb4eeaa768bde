package submission

import "fmt"

// State is the UI state of the client. Exactly one is active at a time.
type State string

const (
	Idle         State = "idle"
	FileSelected State = "file_selected"
	Submitting   State = "submitting"
	ResultsShown State = "results_shown"
	ErrorShown   State = "error_shown"
)

// Event is a user action or a completion that drives a transition.
type Event string

const (
	EventSelected  Event = "selected"
	EventRejected  Event = "rejected"
	EventCleared   Event = "cleared"
	EventSubmitted Event = "submitted"
	EventSucceeded Event = "succeeded"
	EventFailed    Event = "failed"
)

// Transition returns the state that follows s on e. It has no side effects;
// the Controller performs the effects that accompany each transition.
func Transition(s State, e Event) (State, error) {
	switch e {
	case EventRejected:
		return s, nil

	case EventCleared:
		return Idle, nil

	case EventSelected:
		// the request already carries the earlier file
		if s == Submitting {
			return Submitting, nil
		}
		return FileSelected, nil

	case EventSubmitted:
		switch s {
		case FileSelected, ResultsShown, ErrorShown:
			return Submitting, nil
		}

	case EventSucceeded:
		if s == Submitting {
			return ResultsShown, nil
		}

	case EventFailed:
		if s == Submitting {
			return ErrorShown, nil
		}
	}

	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
