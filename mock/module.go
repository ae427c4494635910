package mock

import (
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/webshield/shield/module"
	"gitlab.com/webshield/webshield"
)

// Library is an in memory module.Library. Nil XxxFn fields are reported as
// missing symbols.
type Library struct {
	lock *sync.Mutex

	PathValue string

	CheckFn    func(d *module.Descriptor) bool
	CheckCalls int

	FilterFn    func(d *module.Descriptor) string
	FilterCalls int

	VersionFn    func() int
	VersionCalls int

	ReportFn    func(d *module.Descriptor)
	ReportCalls int

	LookupCalls map[string]int
	CloseCalled bool
}

// MakeMockLibrary reporting version that considers every url malicious
func MakeMockLibrary(version int) *Library {
	return &Library{
		lock:        &sync.Mutex{},
		PathValue:   "/modules/libwebshield.so",
		CheckFn:     func(d *module.Descriptor) bool { return true },
		FilterFn:    func(d *module.Descriptor) string { return "" },
		VersionFn:   func() int { return version },
		ReportFn:    func(d *module.Descriptor) {},
		LookupCalls: make(map[string]int),
	}
}

func (l *Library) Path() string {
	return l.PathValue
}

func (l *Library) Lookup(symbol string) (interface{}, error) {
	l.lock.Lock()
	l.LookupCalls[symbol]++
	l.lock.Unlock()

	switch symbol {
	case module.SymCheckURL:
		if l.CheckFn != nil {
			return module.CheckFunc(func(d *module.Descriptor) bool {
				l.lock.Lock()
				l.CheckCalls++
				l.lock.Unlock()
				return l.CheckFn(d)
			}), nil
		}
	case module.SymFilterURL:
		if l.FilterFn != nil {
			return module.FilterFunc(func(d *module.Descriptor) string {
				l.lock.Lock()
				l.FilterCalls++
				l.lock.Unlock()
				return l.FilterFn(d)
			}), nil
		}
	case module.SymGetVersionCode:
		if l.VersionFn != nil {
			return module.VersionFunc(func() int {
				l.lock.Lock()
				l.VersionCalls++
				l.lock.Unlock()
				return l.VersionFn()
			}), nil
		}
	case module.SymSendUserResponse:
		if l.ReportFn != nil {
			return module.ReportFunc(func(d *module.Descriptor) {
				l.lock.Lock()
				l.ReportCalls++
				l.lock.Unlock()
				l.ReportFn(d)
			}), nil
		}
	}
	return nil, errors.Wrap(module.ErrSymbolNotFound, symbol)
}

func (l *Library) Close() error {
	l.CloseCalled = true
	return nil
}

// Opener hands out libraries by path and counts open attempts
type Opener struct {
	Libraries map[string]module.Library
	Opened    []string
}

// MakeMockOpener serving the given path to library mapping
func MakeMockOpener(libs map[string]module.Library) *Opener {
	return &Opener{Libraries: libs, Opened: make([]string, 0)}
}

// Open implements module.Opener
func (o *Opener) Open(path string) (module.Library, error) {
	o.Opened = append(o.Opened, path)
	lib, ok := o.Libraries[path]
	if !ok {
		return nil, errors.Errorf("cannot open shared object file %s", path)
	}
	return lib, nil
}

// Paths is a webshield.PathProvider
type Paths struct {
	Primary string
	Legacy  string
	Name    string
}

// MakeMockPaths with primary and legacy module paths
func MakeMockPaths(primary, legacy string) *Paths {
	return &Paths{Primary: primary, Legacy: legacy, Name: "libxssdefender.so"}
}

func (p *Paths) ModulePath() (string, error) {
	if p.Primary == "" {
		return "", module.ErrNoModulePath
	}
	return p.Primary, nil
}

func (p *Paths) ModulePathByName(name string) (string, error) {
	if name != p.Name || p.Legacy == "" {
		return "", module.ErrNoModulePath
	}
	return p.Legacy, nil
}

func (p *Paths) LegacyName() string {
	return p.Name
}

// Module is a webshield.Module
type Module struct {
	lock *sync.Mutex

	EnsureLoadedFn     func() bool
	EnsureLoadedCalled bool

	CheckFn    func(u *url.URL, class webshield.RequestClass, private bool) bool
	CheckCalls int

	FilterFn     func(u *url.URL) string
	FilterCalled bool

	VersionFn     func() int
	VersionCalled bool

	ReportDecisionFn    func(u *url.URL, allowed bool)
	ReportDecisionCalls int

	ErrorKindFn func() webshield.ErrorKind
}

// MakeMockModule where every eligible url is malicious
func MakeMockModule() *Module {
	return &Module{
		lock:             &sync.Mutex{},
		EnsureLoadedFn:   func() bool { return true },
		CheckFn:          func(u *url.URL, class webshield.RequestClass, private bool) bool { return true },
		FilterFn:         func(u *url.URL) string { return u.String() },
		VersionFn:        func() int { return webshield.MinSupportedVersion },
		ReportDecisionFn: func(u *url.URL, allowed bool) {},
		ErrorKindFn:      func() webshield.ErrorKind { return webshield.ErrNone },
	}
}

func (m *Module) EnsureLoaded() bool {
	m.EnsureLoadedCalled = true
	return m.EnsureLoadedFn()
}

func (m *Module) Check(u *url.URL, class webshield.RequestClass, private bool) bool {
	m.lock.Lock()
	m.CheckCalls++
	m.lock.Unlock()
	return m.CheckFn(u, class, private)
}

func (m *Module) Filter(u *url.URL) string {
	m.FilterCalled = true
	return m.FilterFn(u)
}

func (m *Module) Version() int {
	m.VersionCalled = true
	return m.VersionFn()
}

func (m *Module) ReportDecision(u *url.URL, allowed bool) {
	m.lock.Lock()
	m.ReportDecisionCalls++
	m.lock.Unlock()
	m.ReportDecisionFn(u, allowed)
}

func (m *Module) ErrorKind() webshield.ErrorKind {
	return m.ErrorKindFn()
}
