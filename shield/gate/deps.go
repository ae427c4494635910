package gate

import (
	"net/url"

	"github.com/pkg/errors"
	"gitlab.com/webshield/webshield"
)

// ErrContractViolation a gate method was called in a state that forbids it
var ErrContractViolation = errors.New("request gate contract violation")

// Displayer shows a decision for a pending check, called on the interaction runner
type Displayer interface {
	Display(check *webshield.PendingCheck)
}

// AllowRecorder records an approved url for the frame's container, called on
// the interaction runner
type AllowRecorder interface {
	Allow(frame webshield.FrameRef, u *url.URL)
}

// Deps are the collaborators shared by every gate of a service
type Deps struct {
	Module      webshield.Module
	Requests    webshield.TaskRunner
	Interaction webshield.TaskRunner
	Display     Displayer
	AllowList   AllowRecorder
	// Optional
	Decisions webshield.DecisionRecorder
	Redirects webshield.RedirectRecorder
	Observe   func(outcome webshield.Outcome, private bool)
}
