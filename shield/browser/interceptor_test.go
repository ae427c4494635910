package browser_test

import (
	"context"
	"strings"
	"testing"

	"gitlab.com/webshield/mock"
	"gitlab.com/webshield/shield"
	"gitlab.com/webshield/shield/browser"
	"gitlab.com/webshield/shield/module"
	"gitlab.com/webshield/webshield"
)

type testEnv struct {
	svc         *shield.Service
	lib         *mock.Library
	requests    *mock.TaskQueue
	interaction *mock.TaskQueue
	presenter   *mock.Presenter
	fetcher     *mock.Fetcher
	interceptor *browser.Interceptor
}

func newEnv(t *testing.T) *testEnv {
	env := &testEnv{
		lib:         mock.MakeMockLibrary(21),
		requests:    mock.MakeMockTaskQueue("request"),
		interaction: mock.MakeMockTaskQueue("interaction"),
		presenter:   mock.MakeMockPresenter(),
		fetcher:     mock.MakeMockFetcher(),
	}
	env.lib.CheckFn = func(d *module.Descriptor) bool {
		return strings.Contains(d.URL, "<script>")
	}

	opener := mock.MakeMockOpener(map[string]module.Library{"/modules/libwebshield.so": env.lib})
	env.svc = shield.New(webshield.NewConfig(),
		shield.WithPaths(mock.MakeMockPaths("/modules/libwebshield.so", "")),
		shield.WithOpener(opener.Open),
		shield.WithRunners(env.requests, env.interaction))
	env.svc.Attach(mock.MakeMockFrameHost(mock.MakeMockContainer("tab-1")), env.presenter)
	if err := env.svc.Init(); err != nil {
		t.Fatalf("error initializing service: %s\n", err)
	}

	env.interceptor = browser.NewInterceptor(env.svc, env.fetcher, "tab-1", "main")
	return env
}

func (env *testEnv) paused(fetchID, networkID, frameID, rawURL string) {
	env.interceptor.OnPaused(&browser.PausedRequest{
		RequestID:    fetchID,
		NetworkID:    networkID,
		FrameID:      frameID,
		ResourceType: "Document",
		URL:          rawURL,
	})
	mock.Drain(env.requests, env.interaction)
}

func (env *testEnv) command(t *testing.T, cmd string) {
	if len(env.presenter.Presented) == 0 {
		t.Fatalf("no decision page presented")
	}
	s := env.presenter.Presented[len(env.presenter.Presented)-1]
	env.interaction.Post(func() { s.OnCommand(cmd) })
	mock.Drain(env.requests, env.interaction)
}

func TestInterceptSafeNavigation(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://good.example/search?q=shoes")
	if len(env.fetcher.Continued) != 1 || env.fetcher.Continued[0] != "f1" {
		t.Fatalf("expected safe navigation to continue, got %v\n", env.fetcher.Continued)
	}

	if env.interceptor.Tracked() != 0 {
		t.Fatalf("safe navigation must not be tracked")
	}
}

func TestInterceptProceedThenRedirect(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	if len(env.fetcher.Continued) != 0 {
		t.Fatalf("flagged navigation must wait for a decision")
	}

	env.command(t, "1")
	if len(env.fetcher.Continued) != 1 || env.fetcher.Continued[0] != "f1" {
		t.Fatalf("expected proceed to continue f1, got %v\n", env.fetcher.Continued)
	}

	env.paused("f2", "n1", "main", "https://evil.example/landing")
	if len(env.fetcher.Continued) != 2 || env.fetcher.Continued[1] != "f2" {
		t.Fatalf("expected safe redirect to continue f2, got %v\n", env.fetcher.Continued)
	}

	proceeded, err := env.svc.DecisionLog().Find(webshield.OutcomeProceed, 1)
	if err != nil || len(proceeded) != 1 {
		t.Fatalf("expected a logged proceed decision: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	chain, err := env.svc.Redirects().Chain(ctx, proceeded[0].ChainID)
	if err != nil {
		t.Fatalf("error reading redirect chain: %s\n", err)
	}
	if len(chain) != 2 || chain[1] != "https://evil.example/landing" {
		t.Fatalf("expected one recorded hop, got %v\n", chain)
	}
}

func TestInterceptRedirectToAllowedOrigin(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	env.command(t, "1")

	// flagged again but the origin was approved in this tab
	env.paused("f2", "n1", "main", "https://evil.example/b?q=<script>")
	if len(env.presenter.Presented) != 1 {
		t.Fatalf("approved origin must not be presented again")
	}

	if len(env.fetcher.Continued) != 2 || env.fetcher.Continued[1] != "f2" {
		t.Fatalf("expected f2 to continue, got %v\n", env.fetcher.Continued)
	}
}

func TestInterceptDeny(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	env.command(t, "0")

	if len(env.fetcher.Failed) != 1 || env.fetcher.Failed[0] != "f1" {
		t.Fatalf("expected deny to fail f1, got %v\n", env.fetcher.Failed)
	}

	if env.interceptor.Tracked() != 0 {
		t.Fatalf("denied navigation must be released")
	}
}

func TestInterceptPrivate(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	var private bool
	env.lib.CheckFn = func(d *module.Descriptor) bool {
		private = d.Private
		return strings.Contains(d.URL, "<script>")
	}
	env.interceptor.SetPrivate(true)

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	if !private {
		t.Fatalf("expected module to see a private request")
	}

	env.command(t, "1")
	if len(env.fetcher.Continued) != 1 || env.fetcher.Continued[0] != "f1" {
		t.Fatalf("expected proceed to continue f1, got %v\n", env.fetcher.Continued)
	}

	if env.lib.ReportCalls != 0 {
		t.Fatalf("private decisions must not be reported, got %d reports\n", env.lib.ReportCalls)
	}

	if env.svc.DecisionLog().Count() != 0 {
		t.Fatalf("private decisions must not be recorded, got %d\n", env.svc.DecisionLog().Count())
	}
}

func TestInterceptSubFrameFilter(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.lib.FilterFn = func(d *module.Descriptor) string {
		return strings.SplitN(d.URL, "?", 2)[0]
	}

	env.paused("f1", "n1", "frame-2", "https://widgets.example/embed?x=<script>")
	if env.fetcher.Rewritten["f1"] != "https://widgets.example/embed" {
		t.Fatalf("expected sub frame url to be filtered, got %v\n", env.fetcher.Rewritten)
	}

	if len(env.presenter.Presented) != 0 {
		t.Fatalf("sub frames are never gated")
	}
}

func TestInterceptClose(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	env.interceptor.Close()
	if env.interceptor.Tracked() != 0 {
		t.Fatalf("close must release every gate")
	}

	env.command(t, "1")
	if len(env.fetcher.Continued) != 0 {
		t.Fatalf("response for a closed tab must be dropped, got %v\n", env.fetcher.Continued)
	}
}

func TestInterceptNewNavigationReplacesPending(t *testing.T) {
	env := newEnv(t)
	defer env.svc.Stop()

	env.paused("f1", "n1", "main", "https://evil.example/a?q=<script>")
	env.paused("f2", "n2", "main", "https://good.example/")
	if env.interceptor.Tracked() != 0 {
		t.Fatalf("new top level navigation must release the pending one")
	}

	if len(env.fetcher.Continued) != 1 || env.fetcher.Continued[0] != "f2" {
		t.Fatalf("expected only f2 to continue, got %v\n", env.fetcher.Continued)
	}
}
