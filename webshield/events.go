package webshield

import "time"

// Outcome of a decision
type Outcome int8

const (
	// OutcomeDeny the request was cancelled
	OutcomeDeny Outcome = iota
	// OutcomeProceed the request was resumed
	OutcomeProceed
	// OutcomeAborted the container went away before a decision was made
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeny:
		return "deny"
	case OutcomeProceed:
		return "proceed"
	case OutcomeAborted:
		return "aborted"
	}
	return "unknown"
}

// DecisionEvent is emitted by a gate once a pending check resolves
type DecisionEvent struct {
	CheckID   string    `msgpack:"check_id"`
	GateID    int64     `msgpack:"gate_id"`
	ChainID   string    `msgpack:"chain_id"`
	URL       string    `msgpack:"url"`
	Origin    string    `msgpack:"origin"`
	Outcome   Outcome   `msgpack:"outcome"`
	Redirects []string  `msgpack:"redirects"`
	Waited    int64     `msgpack:"waited_ms"`
	At        time.Time `msgpack:"at"`
}

// DecisionRecorder stores decision events, private requests are never recorded
type DecisionRecorder interface {
	RecordDecision(evt *DecisionEvent) error
}

// RedirectRecorder stores redirect hops observed by a gate
type RedirectRecorder interface {
	AddHop(chainID, from, to string) error
}
