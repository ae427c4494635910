package gate

import (
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/webshield/webshield"
)

// Gate defers a main frame request the module flagged as malicious until
// the user decides. A gate is owned by the request runner, every method
// must be called from it.
type Gate struct {
	id        int64
	req       *webshield.Request
	ctrl      webshield.Controller
	deps      *Deps
	state     State
	deferAt   DeferPoint
	current   *url.URL
	redirects []*url.URL
	pending   *webshield.PendingCheck
	alive     *atomic.Bool
	logger    zerolog.Logger
}

// MaybeCreate a gate for req. Only main frame requests the module already
// considers malicious get one.
func MaybeCreate(req *webshield.Request, ctrl webshield.Controller, deps *Deps) *Gate {
	if req == nil || req.URL == nil {
		return nil
	}

	switch req.Class {
	case webshield.MainFrame:
	case webshield.SubFrame, webshield.Subresource:
		return nil
	default:
		return nil
	}

	if !deps.Module.Check(req.URL, req.Class, req.Private) {
		return nil
	}

	alive := &atomic.Bool{}
	alive.Store(true)
	id := webshield.GetGateID()
	return &Gate{
		id:        id,
		req:       req,
		ctrl:      ctrl,
		deps:      deps,
		current:   req.URL,
		redirects: make([]*url.URL, 0),
		alive:     alive,
		logger:    log.With().Str("component", "gate").Int64("gate_id", id).Logger(),
	}
}

// Name for diagnostics
func (g *Gate) Name() string {
	return "RequestGate"
}

// ID of the gate
func (g *Gate) ID() int64 {
	return g.id
}

// State of the gate
func (g *Gate) State() State {
	return g.state
}

// DeferPoint of the deferred request
func (g *Gate) DeferPoint() DeferPoint {
	return g.deferAt
}

// Pending check, nil when idle
func (g *Gate) Pending() *webshield.PendingCheck {
	return g.pending
}

// OnStart always defers, the url was classified when the gate was created
func (g *Gate) OnStart() bool {
	g.startCheck(g.req.URL, DeferAtStart)
	return true
}

// OnRedirect re-checks the redirect target and defers only if it is
// malicious. A redirect while a decision is outstanding is a contract violation.
func (g *Gate) OnRedirect(newURL *url.URL) bool {
	if g.deferAt != DeferNone {
		panic(errors.Wrapf(ErrContractViolation, "redirect to %s while deferred %s", newURL, g.deferAt))
	}

	from := g.current
	g.current = newURL
	g.redirects = append(g.redirects, newURL)
	if g.deps.Redirects != nil && !g.req.Private {
		if err := g.deps.Redirects.AddHop(g.ChainID(), from.String(), newURL.String()); err != nil {
			g.logger.Warn().Err(err).Msg("failed to record redirect")
		}
	}

	if !g.deps.Module.Check(newURL, g.req.Class, g.req.Private) {
		g.logger.Debug().Str("url", newURL.String()).Msg("redirect target not malicious")
		return false
	}

	g.startCheck(newURL, DeferAtRedirect)
	return true
}

// ChainID identifies the redirect chain followed by this gate's request
func (g *Gate) ChainID() string {
	return "gate-" + strconv.FormatInt(g.id, 10)
}

func (g *Gate) startCheck(u *url.URL, at DeferPoint) {
	g.state = AwaitingDecision
	g.deferAt = at

	alive := g.alive
	check := webshield.NewPendingCheck(uuid.NewV4().String(), g.deps.Requests,
		func(u *url.URL, proceed bool) {
			if !alive.Load() {
				log.Debug().Str("url", u.String()).Msg("gate gone, dropping user response")
				return
			}
			g.OnUserResponse(u, proceed)
		},
		func() {
			if !alive.Load() {
				return
			}
			g.onAbort()
		})
	check.GateID = g.id
	check.URL = u
	check.OriginalURL = g.req.URL
	check.RedirectURLs = append(make([]*url.URL, 0, len(g.redirects)), g.redirects...)
	check.IsSubresource = false
	check.IsSubframe = false
	check.Frame = g.req.Frame
	check.Private = g.req.Private
	g.pending = check

	g.logger.Info().Str("check_id", check.ID).Str("defer", at.String()).Msg("deferring request for user decision")
	display := g.deps.Display
	if !g.deps.Interaction.Post(func() { display.Display(check) }) {
		g.logger.Warn().Msg("interaction runner stopped, cancelling request")
		g.onAbort()
	}
}

// OnUserResponse resolves the outstanding decision
func (g *Gate) OnUserResponse(u *url.URL, proceed bool) {
	if g.state != AwaitingDecision {
		panic(errors.Wrapf(ErrContractViolation, "user response for %s while %s", u, g.state))
	}
	g.state = Idle
	check := g.pending
	g.pending = nil

	if !g.req.Private {
		g.deps.Module.ReportDecision(u, proceed)
	}

	outcome := webshield.OutcomeDeny
	if proceed {
		outcome = webshield.OutcomeProceed
		frame := g.req.Frame
		allow := g.deps.AllowList
		g.deps.Interaction.Post(func() { allow.Allow(frame, u) })

		if g.deferAt != DeferNone {
			g.deferAt = DeferNone
			g.ctrl.Resume()
		}
	} else {
		// the defer point stays set, the request is finished
		g.ctrl.Cancel()
	}
	g.record(check, u, outcome)
}

func (g *Gate) onAbort() {
	check := g.pending
	g.state = Idle
	g.pending = nil
	g.ctrl.Cancel()
	if check != nil {
		g.record(check, check.URL, webshield.OutcomeAborted)
	}
}

func (g *Gate) record(check *webshield.PendingCheck, u *url.URL, outcome webshield.Outcome) {
	var waited time.Duration
	if check != nil {
		waited = time.Since(check.Created)
	}

	stat := log.Info().Str("stat", "decision").Int64("gate_id", g.id).Str("outcome", outcome.String()).Dur("waited", waited)
	if !g.req.Private {
		stat = stat.Str("origin", webshield.OriginOf(u).String())
	}
	stat.Msg("decision resolved")

	if g.deps.Observe != nil {
		g.deps.Observe(outcome, g.req.Private)
	}

	if g.req.Private || g.deps.Decisions == nil || check == nil {
		return
	}

	redirects := make([]string, len(check.RedirectURLs))
	for i, r := range check.RedirectURLs {
		redirects[i] = r.String()
	}
	evt := &webshield.DecisionEvent{
		CheckID:   check.ID,
		GateID:    g.id,
		ChainID:   g.ChainID(),
		URL:       u.String(),
		Origin:    webshield.OriginOf(u).String(),
		Outcome:   outcome,
		Redirects: redirects,
		Waited:    waited.Milliseconds(),
		At:        time.Now(),
	}
	if err := g.deps.Decisions.RecordDecision(evt); err != nil {
		g.logger.Warn().Err(err).Msg("failed to record decision")
	}
}

// Close the gate, the request is gone. Responses posted afterwards are dropped.
func (g *Gate) Close() {
	if !g.alive.Swap(false) {
		return
	}
	if g.state == AwaitingDecision {
		g.logger.Debug().Msg("gate closed with a decision outstanding")
	}
}

// Alive reports if the gate has not been closed
func (g *Gate) Alive() bool {
	return g.alive.Load()
}
