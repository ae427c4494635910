package browser

import (
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/shield"
	"gitlab.com/webshield/shield/gate"
	"gitlab.com/webshield/webshield"
)

// Fetcher continues or fails paused requests
type Fetcher interface {
	Continue(requestID, rewritten string) error
	Fail(requestID string) error
}

type tracked struct {
	key     string
	fetchID string
	frameID string
	gate    *gate.Gate
}

// Interceptor routes the paused document requests of one tab through the
// shield. Every method runs on the request runner.
type Interceptor struct {
	svc         *shield.Service
	fetch       Fetcher
	containerID string
	mainFrameID string
	private     bool
	requests    map[string]*tracked
	logger      zerolog.Logger
}

// NewInterceptor for the container whose top level frame is mainFrameID
func NewInterceptor(svc *shield.Service, fetch Fetcher, containerID, mainFrameID string) *Interceptor {
	return &Interceptor{
		svc:         svc,
		fetch:       fetch,
		containerID: containerID,
		mainFrameID: mainFrameID,
		requests:    make(map[string]*tracked),
		logger:      log.With().Str("component", "interceptor").Str("container", containerID).Logger(),
	}
}

// SetPrivate marks every request of this container as private
func (i *Interceptor) SetPrivate(private bool) {
	i.private = private
}

// Tracked number of navigations that have a gate
func (i *Interceptor) Tracked() int {
	return len(i.requests)
}

// OnPaused handles a paused document request
func (i *Interceptor) OnPaused(p *PausedRequest) {
	u, err := url.Parse(p.URL)
	if err != nil {
		i.logger.Warn().Err(err).Str("url", p.URL).Msg("continuing unparsable url")
		i.continueRequest(p.RequestID, "")
		return
	}

	if tr, ok := i.requests[p.Key()]; ok {
		tr.fetchID = p.RequestID
		if tr.gate.OnRedirect(u) {
			return
		}
		i.continueRequest(p.RequestID, "")
		return
	}

	class := webshield.SubFrame
	if p.FrameID == i.mainFrameID {
		class = webshield.MainFrame
		// a new top level navigation abandons the previous one
		i.releaseFrame(p.FrameID)
	}

	req := &webshield.Request{
		ID:      p.Key(),
		URL:     u,
		Class:   class,
		Private: i.private,
		Frame:   webshield.FrameRef{ContainerID: i.containerID, FrameID: p.FrameID},
	}

	tr := &tracked{key: p.Key(), fetchID: p.RequestID, frameID: p.FrameID}
	g := i.svc.MaybeCreateGate(req, &controller{i: i, tr: tr})
	if g == nil {
		rewritten := ""
		if class == webshield.SubFrame {
			if filtered := i.svc.Filter(u); filtered != u.String() {
				i.logger.Info().Str("url", u.String()).Str("filtered", filtered).Msg("rewrote sub frame url")
				rewritten = filtered
			}
		}
		i.continueRequest(p.RequestID, rewritten)
		return
	}

	tr.gate = g
	i.requests[tr.key] = tr
	g.OnStart()
}

// Close releases every gate, the tab is gone
func (i *Interceptor) Close() {
	for key, tr := range i.requests {
		i.svc.ReleaseGate(tr.gate)
		delete(i.requests, key)
	}
}

func (i *Interceptor) releaseFrame(frameID string) {
	for key, tr := range i.requests {
		if tr.frameID != frameID {
			continue
		}
		i.svc.ReleaseGate(tr.gate)
		delete(i.requests, key)
	}
}

func (i *Interceptor) release(key string) {
	if tr, ok := i.requests[key]; ok {
		i.svc.ReleaseGate(tr.gate)
		delete(i.requests, key)
	}
}

func (i *Interceptor) continueRequest(fetchID, rewritten string) {
	if err := i.fetch.Continue(fetchID, rewritten); err != nil {
		i.logger.Warn().Err(err).Str("fetch_id", fetchID).Msg("failed to continue request")
	}
}

func (i *Interceptor) failRequest(fetchID string) {
	if err := i.fetch.Fail(fetchID); err != nil {
		i.logger.Warn().Err(err).Str("fetch_id", fetchID).Msg("failed to block request")
	}
}

// controller resumes or blocks whatever fetch id the navigation is paused at
type controller struct {
	i  *Interceptor
	tr *tracked
}

func (c *controller) Resume() {
	c.i.continueRequest(c.tr.fetchID, "")
}

func (c *controller) Cancel() {
	c.i.failRequest(c.tr.fetchID)
	c.i.release(c.tr.key)
}
