package browser

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

// Tab is a browsing container whose document requests are guarded
type Tab struct {
	b           *Browser
	t           *gcd.ChromeTarget
	interceptor *Interceptor
	logger      zerolog.Logger
}

func newTab(b *Browser, target *gcd.ChromeTarget) *Tab {
	t := &Tab{b: b, t: target}
	t.logger = log.With().Str("component", "tab").Str("container", t.ID()).Logger()
	t.interceptor = NewInterceptor(b.svc, &targetFetcher{t: target}, t.ID(), t.MainFrameID())
	t.interceptor.SetPrivate(b.isPrivate())
	return t
}

// ID of the DevTools target
func (t *Tab) ID() string {
	return t.t.Target.Id
}

// MainFrameID of a page target is the target id
func (t *Tab) MainFrameID() string {
	return t.t.Target.Id
}

// IsPrerender never holds for tabs we opened ourselves
func (t *Tab) IsPrerender() bool {
	return t.t.Target.Type == "prerender"
}

// Destroy the tab, the shield gave up on it
func (t *Tab) Destroy(reason string) {
	t.logger.Info().Str("reason", reason).Msg("destroying tab")
	if err := t.b.closeTab(t); err != nil {
		t.logger.Warn().Err(err).Msg("failed to close tab")
	}
}

// Navigate the tab to url without waiting for the load
func (t *Tab) Navigate(url string) error {
	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}

	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}
	return nil
}

// intercept document requests, paused events are handled on the request runner
func (t *Tab) intercept() error {
	if _, err := t.t.Page.Enable(); err != nil {
		return errors.Wrap(err, "enabling page domain")
	}
	t.t.Inspector.Enable()

	t.t.Subscribe("Fetch.requestPaused", t.onRequestPaused)

	params := &gcdapi.FetchEnableParams{
		Patterns: []*gcdapi.FetchRequestPattern{
			{UrlPattern: "*", ResourceType: "Document", RequestStage: "Request"},
		},
	}
	if _, err := t.t.Fetch.EnableWithParams(params); err != nil {
		return errors.Wrap(err, "enabling fetch interception")
	}

	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		t.logger.Info().Msg("tab detached")
		t.b.forget(t)
	})
	return nil
}

func (t *Tab) onRequestPaused(target *gcd.ChromeTarget, payload []byte) {
	p, err := DecodePaused(payload)
	if err != nil {
		t.logger.Error().Err(err).Msg("unable to decode paused request")
		return
	}

	interceptor := t.interceptor
	if !t.b.svc.Requests().Post(func() { interceptor.OnPaused(p) }) {
		// shutting down, nothing will ever answer this request
		(&targetFetcher{t: target}).Fail(p.RequestID)
	}
}

type targetFetcher struct {
	t *gcd.ChromeTarget
}

func (f *targetFetcher) Continue(requestID, rewritten string) error {
	params := &gcdapi.FetchContinueRequestParams{RequestId: requestID}
	if rewritten != "" {
		params.Url = rewritten
	}
	_, err := f.t.Fetch.ContinueRequestWithParams(params)
	return err
}

func (f *targetFetcher) Fail(requestID string) error {
	params := &gcdapi.FetchFailRequestParams{RequestId: requestID, ErrorReason: BlockedReason}
	_, err := f.t.Fetch.FailRequestWithParams(params)
	return err
}
