package gate

// State of a gate
type State int8

const (
	// Idle no decision outstanding
	Idle State = iota
	// AwaitingDecision a pending check was handed to the interaction runner
	AwaitingDecision
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingDecision:
		return "awaiting_decision"
	}
	return "unknown"
}

// DeferPoint where the request was deferred
type DeferPoint int8

const (
	// DeferNone the request is not deferred
	DeferNone DeferPoint = iota
	// DeferAtStart deferred before the request started
	DeferAtStart
	// DeferAtRedirect deferred while following a redirect
	DeferAtRedirect
)

func (d DeferPoint) String() string {
	switch d {
	case DeferNone:
		return "none"
	case DeferAtStart:
		return "at_start"
	case DeferAtRedirect:
		return "at_redirect"
	}
	return "unknown"
}
