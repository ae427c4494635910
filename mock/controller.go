package mock

import (
	"net/url"

	"gitlab.com/webshield/webshield"
)

// Controller is a webshield.Controller
type Controller struct {
	ResumeFn    func()
	ResumeCalls int

	CancelFn    func()
	CancelCalls int
}

// MakeMockController with no-op callbacks
func MakeMockController() *Controller {
	return &Controller{
		ResumeFn: func() {},
		CancelFn: func() {},
	}
}

func (c *Controller) Resume() {
	c.ResumeCalls++
	c.ResumeFn()
}

func (c *Controller) Cancel() {
	c.CancelCalls++
	c.CancelFn()
}

// Displayer is a gate.Displayer
type Displayer struct {
	DisplayFn func(check *webshield.PendingCheck)
	Checks    []*webshield.PendingCheck
}

// MakeMockDisplayer that only records checks
func MakeMockDisplayer() *Displayer {
	return &Displayer{
		DisplayFn: func(check *webshield.PendingCheck) {},
		Checks:    make([]*webshield.PendingCheck, 0),
	}
}

func (d *Displayer) Display(check *webshield.PendingCheck) {
	d.Checks = append(d.Checks, check)
	d.DisplayFn(check)
}

// AllowRecorder is a gate.AllowRecorder
type AllowRecorder struct {
	Allowed map[webshield.FrameRef][]webshield.Origin
}

// MakeMockAllowRecorder with no recorded origins
func MakeMockAllowRecorder() *AllowRecorder {
	return &AllowRecorder{Allowed: make(map[webshield.FrameRef][]webshield.Origin)}
}

func (a *AllowRecorder) Allow(frame webshield.FrameRef, u *url.URL) {
	a.Allowed[frame] = append(a.Allowed[frame], webshield.OriginOf(u))
}

// DecisionRecorder is a webshield.DecisionRecorder and webshield.RedirectRecorder
type DecisionRecorder struct {
	Events []*webshield.DecisionEvent
	Hops   map[string][][2]string
}

// MakeMockDecisionRecorder with nothing recorded
func MakeMockDecisionRecorder() *DecisionRecorder {
	return &DecisionRecorder{
		Events: make([]*webshield.DecisionEvent, 0),
		Hops:   make(map[string][][2]string),
	}
}

func (d *DecisionRecorder) RecordDecision(evt *webshield.DecisionEvent) error {
	d.Events = append(d.Events, evt)
	return nil
}

func (d *DecisionRecorder) AddHop(chainID, from, to string) error {
	d.Hops[chainID] = append(d.Hops[chainID], [2]string{from, to})
	return nil
}
