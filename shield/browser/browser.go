package browser

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/webshield/shield"
	"gitlab.com/webshield/webshield"
)

// Browser is a chrome process whose tabs are guarded by the shield. It is the
// webshield.FrameHost the decision manager looks containers up in.
type Browser struct {
	svc     *shield.Service
	leaser  LeaserService
	g       *gcd.Gcd
	port    string
	private bool
	lock    *sync.RWMutex
	tabs    map[string]*Tab
}

// New browser, call Start to launch it
func New(svc *shield.Service, leaser LeaserService) *Browser {
	return &Browser{
		svc:    svc,
		leaser: leaser,
		lock:   &sync.RWMutex{},
		tabs:   make(map[string]*Tab),
	}
}

// Start a browser process and connect to it
func (b *Browser) Start() error {
	port, err := b.leaser.Acquire()
	if err != nil {
		return err
	}

	g := gcd.NewChromeDebugger()
	if err := g.ConnectToInstance("localhost", port); err != nil {
		b.leaser.Return(port)
		return errors.Wrap(err, "connecting to browser")
	}

	b.lock.Lock()
	b.g = g
	b.port = port
	b.lock.Unlock()
	log.Info().Str("port", port).Msg("browser started")
	return nil
}

// SetPrivate marks tabs opened from now on as private, their decisions are
// never reported to the module or recorded
func (b *Browser) SetPrivate(private bool) {
	b.lock.Lock()
	b.private = private
	b.lock.Unlock()
}

func (b *Browser) isPrivate() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.private
}

func (b *Browser) debugger() (*gcd.Gcd, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if b.g == nil {
		return nil, ErrNotStarted
	}
	return b.g, nil
}

// OpenTab opens a guarded tab
func (b *Browser) OpenTab() (*Tab, error) {
	g, err := b.debugger()
	if err != nil {
		return nil, err
	}

	target, err := g.NewTab()
	if err != nil {
		return nil, errors.Wrap(err, "opening tab")
	}

	tab := newTab(b, target)
	b.lock.Lock()
	b.tabs[tab.ID()] = tab
	b.lock.Unlock()

	if err := tab.intercept(); err != nil {
		b.closeTab(tab)
		return nil, err
	}
	return tab, nil
}

// Lookup implements webshield.FrameHost
func (b *Browser) Lookup(ref webshield.FrameRef) (webshield.Container, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	tab, ok := b.tabs[ref.ContainerID]
	if !ok {
		return nil, false
	}
	return tab, true
}

// Tabs currently guarded
func (b *Browser) Tabs() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.tabs)
}

// forget a tab that went away, its gates and sessions are released
func (b *Browser) forget(tab *Tab) bool {
	b.lock.Lock()
	if _, ok := b.tabs[tab.ID()]; !ok {
		b.lock.Unlock()
		return false
	}
	delete(b.tabs, tab.ID())
	b.lock.Unlock()

	id := tab.ID()
	interceptor := tab.interceptor
	b.svc.Requests().Post(interceptor.Close)
	b.svc.Interaction().Post(func() { b.svc.Decisions().ContainerClosed(id) })
	return true
}

func (b *Browser) closeTab(tab *Tab) error {
	if !b.forget(tab) {
		return nil
	}

	g, err := b.debugger()
	if err != nil {
		return err
	}
	return g.CloseTab(tab.t)
}

// Close every tab and return the browser to the leaser
func (b *Browser) Close() error {
	b.lock.RLock()
	tabs := make([]*Tab, 0, len(b.tabs))
	for _, tab := range b.tabs {
		tabs = append(tabs, tab)
	}
	b.lock.RUnlock()

	for _, tab := range tabs {
		if err := b.closeTab(tab); err != nil {
			log.Warn().Err(err).Str("container", tab.ID()).Msg("failed to close tab")
		}
	}

	b.lock.Lock()
	port := b.port
	b.g = nil
	b.port = ""
	b.lock.Unlock()

	if port == "" {
		return nil
	}
	return b.leaser.Return(port)
}
