package webshield

import (
	"net/url"
	"time"
)

// TaskRunner runs posted tasks one at a time on a single goroutine
type TaskRunner interface {
	Name() string
	// Post a task, returns false if the runner no longer accepts work
	Post(task func()) bool
}

// ResponseFunc receives the user's decision for a pending check
type ResponseFunc func(u *url.URL, proceed bool)

// PendingCheck is an outstanding decision request handed from a gate
// to the interaction runner. At most one exists per gate.
type PendingCheck struct {
	ID            string
	GateID        int64
	URL           *url.URL
	OriginalURL   *url.URL
	RedirectURLs  []*url.URL
	IsSubresource bool
	IsSubframe    bool
	Frame         FrameRef
	Private       bool
	Created       time.Time

	callback       ResponseFunc
	abort          func()
	callbackRunner TaskRunner
}

// NewPendingCheck whose callbacks always run on callbackRunner
func NewPendingCheck(id string, callbackRunner TaskRunner, callback ResponseFunc, abort func()) *PendingCheck {
	return &PendingCheck{
		ID:             id,
		Created:        time.Now(),
		callback:       callback,
		abort:          abort,
		callbackRunner: callbackRunner,
	}
}

// Resolve the check, the callback is posted to the runner that owns the gate
func (p *PendingCheck) Resolve(proceed bool) bool {
	u := p.URL
	return p.callbackRunner.Post(func() { p.callback(u, proceed) })
}

// Abort the check without a decision, the deferred request is cancelled
func (p *PendingCheck) Abort() bool {
	return p.callbackRunner.Post(p.abort)
}

// Origin of the url under check
func (p *PendingCheck) Origin() Origin {
	return OriginOf(p.URL)
}
