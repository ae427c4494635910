package shield

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/shield/allowlist"
	"gitlab.com/webshield/shield/decision"
	"gitlab.com/webshield/shield/gate"
	"gitlab.com/webshield/shield/module"
	"gitlab.com/webshield/shield/runner"
	"gitlab.com/webshield/store"
	"gitlab.com/webshield/webshield"
	"golang.org/x/sync/errgroup"
)

// ErrNotAttached the service has no frame host or presenter yet
var ErrNotAttached = errors.New("no frame host or presenter attached")

// Service owns everything that lives for the duration of the process: the
// loaded module, the two runners, the allow lists and the decision stores.
type Service struct {
	cfg         *webshield.Config
	paths       webshield.PathProvider
	opener      module.Opener
	loader      *module.Loader
	module      webshield.Module
	allow       *allowlist.Registry
	requests    webshield.TaskRunner
	interaction webshield.TaskRunner
	decisions   *decision.Manager
	decisionLog *store.DecisionLog
	redirects   *store.RedirectGraph
	metrics     *Metrics
	deps        *gate.Deps
	stopFns     []func()
}

// Option configures the service
type Option func(s *Service)

// WithPaths resolves module paths with p instead of the configured directory
func WithPaths(p webshield.PathProvider) Option {
	return func(s *Service) {
		s.paths = p
	}
}

// WithOpener opens modules with open
func WithOpener(open module.Opener) Option {
	return func(s *Service) {
		s.opener = open
	}
}

// WithRunners replaces the request and interaction runners
func WithRunners(requests, interaction webshield.TaskRunner) Option {
	return func(s *Service) {
		s.requests = requests
		s.interaction = interaction
	}
}

// New service, call Init before use and Attach before Start
func New(cfg *webshield.Config, opts ...Option) *Service {
	s := &Service{
		cfg:         cfg,
		paths:       module.NewDirPaths(cfg),
		opener:      module.OpenAny,
		allow:       allowlist.NewRegistry(),
		requests:    runner.New("request"),
		interaction: runner.New("interaction"),
		decisionLog: store.NewDecisionLog(),
		redirects:   store.NewRedirectGraph(),
		metrics:     NewMetrics(),
		stopFns:     make([]func(), 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.loader = module.New(s.paths, module.WithOpener(s.opener), module.WithErrorHook(s.metrics.ObserveModuleError))
	s.module = &instrumented{Module: s.loader, metrics: s.metrics}
	return s
}

// Attach the browser side collaborators
func (s *Service) Attach(frames webshield.FrameHost, presenter decision.Presenter) {
	s.decisions = decision.NewManager(s.cfg, frames, s.allow, presenter)
	s.deps = &gate.Deps{
		Module:      s.module,
		Requests:    s.requests,
		Interaction: s.interaction,
		Display:     s.decisions,
		AllowList:   s.decisions,
		Decisions:   s.decisionLog,
		Redirects:   s.redirects,
		Observe:     s.metrics.ObserveDecision,
	}
}

// Init the stores and, if enabled, load the module
func (s *Service) Init() error {
	if err := s.decisionLog.Init(); err != nil {
		return err
	}
	s.stopFns = append(s.stopFns, func() { s.decisionLog.Close() })

	if err := s.redirects.Init(); err != nil {
		return err
	}
	s.stopFns = append(s.stopFns, func() { s.redirects.Close() })

	if !s.cfg.Enabled {
		log.Info().Msg("webshield disabled by configuration")
		return nil
	}

	if !s.loader.EnsureLoaded() {
		log.Warn().Str("error", s.loader.ErrorKind().String()).Msg("module unavailable, no requests will be flagged")
	}
	return nil
}

type runnable interface {
	Run(ctx context.Context) error
	Stop()
}

// Start the runners, blocks until ctx is done or Stop is called
func (s *Service) Start(ctx context.Context) error {
	if s.decisions == nil {
		return ErrNotAttached
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, tr := range []webshield.TaskRunner{s.requests, s.interaction} {
		r, ok := tr.(runnable)
		if !ok {
			continue
		}
		g.Go(func() error {
			err := r.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Stop the runners and close the stores
func (s *Service) Stop() {
	for _, tr := range []webshield.TaskRunner{s.requests, s.interaction} {
		if r, ok := tr.(runnable); ok {
			r.Stop()
		}
	}

	for i := len(s.stopFns) - 1; i >= 0; i-- {
		s.stopFns[i]()
	}
	s.stopFns = s.stopFns[:0]

	if err := s.loader.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close module")
	}
}

// Enabled is the global switch, a disabled service never gates requests
func (s *Service) Enabled() bool {
	return s.cfg.Enabled
}

// MaybeCreateGate for req, nil if the request should go through untouched.
// Must be called on the request runner.
func (s *Service) MaybeCreateGate(req *webshield.Request, ctrl webshield.Controller) *gate.Gate {
	if !s.cfg.Enabled || s.deps == nil {
		return nil
	}

	g := gate.MaybeCreate(req, ctrl, s.deps)
	if g != nil {
		s.metrics.GatesActive.Inc()
	}
	return g
}

// ReleaseGate once its request finished
func (s *Service) ReleaseGate(g *gate.Gate) {
	if g == nil || !g.Alive() {
		return
	}
	g.Close()
	s.metrics.GatesActive.Dec()
}

// Check u as a main frame request
func (s *Service) Check(u *url.URL, private bool) bool {
	if !s.cfg.Enabled {
		return false
	}
	return s.module.Check(u, webshield.MainFrame, private)
}

// Filter u, returns u unchanged when disabled
func (s *Service) Filter(u *url.URL) string {
	if !s.cfg.Enabled {
		return u.String()
	}
	return s.module.Filter(u)
}

// Module in use
func (s *Service) Module() webshield.Module {
	return s.module
}

// Requests runner, owns gates
func (s *Service) Requests() webshield.TaskRunner {
	return s.requests
}

// Interaction runner, owns decision sessions and allow lists
func (s *Service) Interaction() webshield.TaskRunner {
	return s.interaction
}

// Decisions manager, only use from the interaction runner
func (s *Service) Decisions() *decision.Manager {
	return s.decisions
}

// DecisionLog of resolved decisions
func (s *Service) DecisionLog() *store.DecisionLog {
	return s.decisionLog
}

// Redirects observed by gates
func (s *Service) Redirects() *store.RedirectGraph {
	return s.redirects
}

// Metrics of the service
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// Diagnostics of the service
type Diagnostics struct {
	Enabled   bool
	InfoURL   string
	Module    *module.Status
	Decisions int64
}

// Diagnostics snapshot, safe to call from any goroutine
func (s *Service) Diagnostics() *Diagnostics {
	d := &Diagnostics{
		Enabled:   s.cfg.Enabled,
		InfoURL:   decision.InfoURL(s.cfg.InfoURL, s.cfg.Locale),
		Module:    s.loader.Status(),
		Decisions: s.decisionLog.Count(),
	}
	return d
}
