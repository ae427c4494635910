package module

import (
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/webshield"
)

// Loader owns the detection module for the lifetime of its owner. Loading
// happens at most once: whichever caller gets there first performs the load
// and everyone else observes either the loaded library or a permanent failure.
type Loader struct {
	lock      *sync.Mutex
	paths     webshield.PathProvider
	open      Opener
	logger    zerolog.Logger
	lib       Library
	attempted bool
	version   int
	errKind   webshield.ErrorKind

	check   Capability[CheckFunc]
	filter  Capability[FilterFunc]
	verFn   Capability[VersionFunc]
	report  Capability[ReportFunc]
	onError func(kind webshield.ErrorKind)
}

// Option configures a Loader
type Option func(l *Loader)

// WithOpener replaces OpenAny
func WithOpener(open Opener) Option {
	return func(l *Loader) {
		l.open = open
	}
}

// WithErrorHook is called (under the loader lock) every time an error kind is recorded
func WithErrorHook(fn func(kind webshield.ErrorKind)) Option {
	return func(l *Loader) {
		l.onError = fn
	}
}

// New module loader, nothing is loaded until first use
func New(paths webshield.PathProvider, opts ...Option) *Loader {
	l := &Loader{
		lock:   &sync.Mutex{},
		paths:  paths,
		open:   OpenAny,
		logger: log.With().Str("component", "module_loader").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) setError(kind webshield.ErrorKind) {
	l.errKind = kind
	if l.onError != nil {
		l.onError(kind)
	}
}

// EnsureLoaded loads the module if this is the first attempt
func (l *Loader) EnsureLoaded() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.ensureLoaded()
}

func (l *Loader) ensureLoaded() bool {
	if l.lib != nil {
		return true
	}
	if l.attempted {
		return false
	}
	l.attempted = true

	lib, err := l.openPath(l.paths.ModulePath())
	if err != nil {
		l.setError(webshield.ErrLoadFailure)
		l.logger.Warn().Err(err).Msg("failed to open module, trying legacy module")
		lib, err = l.openPath(l.paths.ModulePathByName(l.paths.LegacyName()))
		if err != nil {
			l.logger.Error().Err(err).Msg("failed to open legacy module, detection disabled")
			return false
		}
	}
	l.lib = lib

	version := 0
	if fn, ok := resolve(l, &l.verFn, SymGetVersionCode, webshield.ErrVersionMissing); ok {
		version = fn()
	}
	if version < webshield.MinSupportedVersion {
		err := errors.Wrapf(ErrModuleTooOld, "%s reports %d, need at least %d", lib.Path(), version, webshield.MinSupportedVersion)
		l.logger.Error().Err(err).Msg("unloading module")
		l.unload()
		l.setError(webshield.ErrLoadFailure)
		return false
	}
	l.version = version
	l.logger.Info().Str("path", lib.Path()).Int("version", version).Msg("module loaded")
	return true
}

func (l *Loader) openPath(path string, err error) (Library, error) {
	if err != nil {
		return nil, err
	}
	return l.open(path)
}

func (l *Loader) unload() {
	if l.lib == nil {
		return
	}
	if err := l.lib.Close(); err != nil {
		l.logger.Warn().Err(err).Str("path", l.lib.Path()).Msg("failed to close module")
	}
	l.lib = nil
	l.version = 0
	l.check = Capability[CheckFunc]{}
	l.filter = Capability[FilterFunc]{}
	l.verFn = Capability[VersionFunc]{}
	l.report = Capability[ReportFunc]{}
}

// resolve a capability, memoizing the result. The loader lock must be held.
func resolve[T any](l *Loader, c *Capability[T], symbol string, missing webshield.ErrorKind) (T, bool) {
	var zero T
	if l.lib == nil {
		return zero, false
	}

	if !c.Resolved() {
		sym, err := l.lib.Lookup(symbol)
		if err != nil {
			*c = Unavailable[T](err)
		} else if fn, ok := sym.(T); ok {
			*c = Available(fn)
		} else {
			*c = Unavailable[T](errors.Wrap(ErrSymbolType, symbol))
		}

		if reason := c.Reason(); reason != nil {
			l.setError(missing)
			l.logger.Warn().Err(reason).Str("symbol", symbol).Msg("module capability unavailable")
		}
	}

	fn, ok := c.Get()
	if !ok {
		return zero, false
	}
	return fn, true
}

func capability[T any](l *Loader, c *Capability[T], symbol string, missing webshield.ErrorKind) (T, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if !l.ensureLoaded() {
		var zero T
		return zero, false
	}
	return resolve(l, c, symbol, missing)
}

// Check returns true if the module considers u malicious. Urls that fail the
// eligibility prefilter never reach the module.
func (l *Loader) Check(u *url.URL, class webshield.RequestClass, private bool) bool {
	if !Eligible(u) {
		return false
	}

	fn, ok := capability(l, &l.check, SymCheckURL, webshield.ErrCheckMissing)
	if !ok {
		return false
	}

	return fn(&Descriptor{
		URL:         DecodeURL(u),
		RequestType: class.Code(),
		Private:     private,
	})
}

// Filter returns the module's rewrite of u when it keeps u's origin,
// otherwise the original url.
func (l *Loader) Filter(u *url.URL) string {
	if u == nil {
		return ""
	}
	original := u.String()
	if !Filterable(u) {
		return original
	}

	fn, ok := capability(l, &l.filter, SymFilterURL, webshield.ErrFilterMissing)
	if !ok {
		return original
	}

	rewritten := fn(&Descriptor{URL: original})
	if rewritten == "" || rewritten == original {
		return original
	}

	parsed, err := url.Parse(rewritten)
	if err != nil || webshield.OriginOf(parsed) != webshield.OriginOf(u) {
		l.logger.Warn().Str("url", original).Str("rewrite", rewritten).Msg("rejected cross origin rewrite")
		return original
	}
	return rewritten
}

// Version of the loaded module, 0 if it is not loaded
func (l *Loader) Version() int {
	fn, ok := capability(l, &l.verFn, SymGetVersionCode, webshield.ErrVersionMissing)
	if !ok {
		return 0
	}
	return fn()
}

// ReportDecision sends the user's decision to the module
func (l *Loader) ReportDecision(u *url.URL, allowed bool) {
	if u == nil {
		return
	}
	fn, ok := capability(l, &l.report, SymSendUserResponse, webshield.ErrReportMissing)
	if !ok {
		return
	}
	fn(&Descriptor{
		URL:         DecodeURL(u),
		RequestType: webshield.MainFrame.Code(),
		Allow:       allowed,
	})
}

// ErrorKind last recorded
func (l *Loader) ErrorKind() webshield.ErrorKind {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.errKind
}

// Loaded reports if a module is currently loaded, it never triggers a load
func (l *Loader) Loaded() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.lib != nil
}

// Status of the loader for diagnostics
func (l *Loader) Status() *Status {
	l.lock.Lock()
	defer l.lock.Unlock()
	s := &Status{
		Attempted:    l.attempted,
		Loaded:       l.lib != nil,
		Version:      l.version,
		ErrorKind:    l.errKind.String(),
		Capabilities: map[string]string{
			SymCheckURL:         l.check.String(),
			SymFilterURL:        l.filter.String(),
			SymGetVersionCode:   l.verFn.String(),
			SymSendUserResponse: l.report.String(),
		},
	}
	if l.lib != nil {
		s.Path = l.lib.Path()
	}
	return s
}

// Close unloads the module, it will not be loaded again
func (l *Loader) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.attempted = true
	l.unload()
	return nil
}

// Status of the module loader
type Status struct {
	Attempted    bool
	Loaded       bool
	Path         string
	Version      int
	ErrorKind    string
	Capabilities map[string]string
}
