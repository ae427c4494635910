package mock

import (
	"gitlab.com/webshield/shield/decision"
	"gitlab.com/webshield/webshield"
)

// Container is a webshield.Container
type Container struct {
	IDValue   string
	Prerender bool

	DestroyFn     func(reason string)
	DestroyCalled bool

	NavigateFn func(url string) error
	Navigated  []string
}

// MakeMockContainer with id
func MakeMockContainer(id string) *Container {
	return &Container{
		IDValue:    id,
		DestroyFn:  func(reason string) {},
		NavigateFn: func(url string) error { return nil },
		Navigated:  make([]string, 0),
	}
}

func (c *Container) ID() string {
	return c.IDValue
}

func (c *Container) IsPrerender() bool {
	return c.Prerender
}

func (c *Container) Destroy(reason string) {
	c.DestroyCalled = true
	c.DestroyFn(reason)
}

func (c *Container) Navigate(url string) error {
	c.Navigated = append(c.Navigated, url)
	return c.NavigateFn(url)
}

// FrameHost is a webshield.FrameHost backed by a map of containers
type FrameHost struct {
	Containers map[string]webshield.Container
}

// MakeMockFrameHost hosting containers
func MakeMockFrameHost(containers ...webshield.Container) *FrameHost {
	f := &FrameHost{Containers: make(map[string]webshield.Container)}
	for _, c := range containers {
		f.Containers[c.ID()] = c
	}
	return f
}

func (f *FrameHost) Lookup(ref webshield.FrameRef) (webshield.Container, bool) {
	c, ok := f.Containers[ref.ContainerID]
	return c, ok
}

// Presenter is a decision.Presenter
type Presenter struct {
	PresentFn func(s *decision.Session) error
	Presented []*decision.Session

	DismissFn func(s *decision.Session)
	Dismissed []*decision.Session
}

// MakeMockPresenter that accepts every session
func MakeMockPresenter() *Presenter {
	return &Presenter{
		PresentFn: func(s *decision.Session) error { return nil },
		Presented: make([]*decision.Session, 0),
		DismissFn: func(s *decision.Session) {},
		Dismissed: make([]*decision.Session, 0),
	}
}

func (p *Presenter) Present(s *decision.Session) error {
	p.Presented = append(p.Presented, s)
	return p.PresentFn(s)
}

func (p *Presenter) Dismiss(s *decision.Session) {
	p.Dismissed = append(p.Dismissed, s)
	p.DismissFn(s)
}
