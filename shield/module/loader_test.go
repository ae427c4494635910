package module_test

import (
	"net/url"
	"sync"
	"testing"

	"gitlab.com/webshield/mock"
	"gitlab.com/webshield/shield/module"
	"gitlab.com/webshield/webshield"
)

const (
	primaryPath = "/modules/libwebshield.so"
	legacyPath  = "/modules/libxssdefender.so"
)

func mustParse(t *testing.T, rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("error parsing %s: %s\n", rawURL, err)
	}
	return u
}

func newLoader(libs map[string]module.Library) (*module.Loader, *mock.Opener) {
	opener := mock.MakeMockOpener(libs)
	paths := mock.MakeMockPaths(primaryPath, legacyPath)
	return module.New(paths, module.WithOpener(opener.Open)), opener
}

func TestEnsureLoadedPrimary(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	loader, opener := newLoader(map[string]module.Library{primaryPath: lib})

	if !loader.EnsureLoaded() {
		t.Fatalf("expected module to load")
	}

	if !loader.EnsureLoaded() {
		t.Fatalf("expected second call to report loaded")
	}

	if len(opener.Opened) != 1 || opener.Opened[0] != primaryPath {
		t.Fatalf("expected only the primary path to be opened, got %v\n", opener.Opened)
	}

	if loader.ErrorKind() != webshield.ErrNone {
		t.Fatalf("expected no error got %s\n", loader.ErrorKind())
	}

	if loader.Version() != webshield.MinSupportedVersion {
		t.Fatalf("expected version %d got %d\n", webshield.MinSupportedVersion, loader.Version())
	}
}

func TestEnsureLoadedLegacyFallback(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion + 5)
	loader, opener := newLoader(map[string]module.Library{legacyPath: lib})

	if !loader.EnsureLoaded() {
		t.Fatalf("expected legacy module to load")
	}

	if len(opener.Opened) != 2 || opener.Opened[1] != legacyPath {
		t.Fatalf("expected primary then legacy to be opened, got %v\n", opener.Opened)
	}

	// the failed primary attempt stays recorded for diagnostics
	if loader.ErrorKind() != webshield.ErrLoadFailure {
		t.Fatalf("expected load failure to be recorded got %s\n", loader.ErrorKind())
	}

	if !loader.Loaded() {
		t.Fatalf("expected module to be loaded")
	}
}

func TestEnsureLoadedRejectsOldVersion(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion - 1)
	loader, opener := newLoader(map[string]module.Library{primaryPath: lib})

	if loader.EnsureLoaded() {
		t.Fatalf("expected old module to be rejected")
	}

	if !lib.CloseCalled {
		t.Fatalf("expected old module to be unloaded")
	}

	if loader.Loaded() {
		t.Fatalf("expected module to stay unloaded")
	}

	for i := 0; i < 3; i++ {
		if loader.EnsureLoaded() {
			t.Fatalf("expected no retry after a failed load")
		}
	}

	if loader.Check(mustParse(t, "http://www.test.com/search?q=<script>"), webshield.MainFrame, false) {
		t.Fatalf("expected check to fail open when the module is not loaded")
	}

	if len(opener.Opened) != 1 {
		t.Fatalf("expected exactly one load attempt got %v\n", opener.Opened)
	}

	if loader.ErrorKind() != webshield.ErrLoadFailure {
		t.Fatalf("expected load failure got %s\n", loader.ErrorKind())
	}
}

func TestEnsureLoadedMissingVersion(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	lib.VersionFn = nil
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

	if loader.EnsureLoaded() {
		t.Fatalf("expected module without a version to be rejected")
	}

	if loader.ErrorKind() != webshield.ErrLoadFailure {
		t.Fatalf("expected load failure got %s\n", loader.ErrorKind())
	}
}

func TestEnsureLoadedNothingToLoad(t *testing.T) {
	loader, opener := newLoader(map[string]module.Library{})
	if loader.EnsureLoaded() {
		t.Fatalf("expected load to fail")
	}
	if len(opener.Opened) != 2 {
		t.Fatalf("expected primary and legacy attempts got %v\n", opener.Opened)
	}
	if loader.Version() != 0 {
		t.Fatalf("expected version 0 for a missing module")
	}
}

func TestEnsureLoadedConcurrentFirstUse(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	loader, opener := newLoader(map[string]module.Library{primaryPath: lib})

	wg := &sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loader.EnsureLoaded()
		}()
	}
	wg.Wait()

	if len(opener.Opened) != 1 {
		t.Fatalf("expected a single load attempt got %d\n", len(opener.Opened))
	}
}

func TestCheckPrefilter(t *testing.T) {
	var inputs = []struct {
		in       string
		expected bool
	}{
		{"ftp://www.test.com/search?q=<script>", false},
		{"file:///etc/passwd?x=1", false},
		{"javascript:alert(1)", false},
		{"data:text/html,<script>alert(1)</script>", false},
		{"http://www.test.com/short", false},
		{"http://www.test.com/", false},
		{"https://www.test.com/abcdefghijklmnopqrs", false},
		{"https://www.test.com/abcdefghijklmnopqrst", true},
		{"http://www.test.com/?q=1", true},
		{"https://www.test.com/search=<script>alert(document.cookie)</script>", true},
	}

	for _, input := range inputs {
		lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
		loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

		result := loader.Check(mustParse(t, input.in), webshield.MainFrame, false)
		if result != input.expected {
			t.Fatalf("%v did not match %v for %s\n", result, input.expected, input.in)
		}

		if !input.expected && lib.CheckCalls != 0 {
			t.Fatalf("module was called for ineligible url %s\n", input.in)
		}
	}
}

func TestCheckDescriptor(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	var got *module.Descriptor
	lib.CheckFn = func(d *module.Descriptor) bool {
		got = d
		return false
	}
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

	u := mustParse(t, "http://www.test.com/search?q=%3Cscript%3Ealert(1)%3C%2Fscript%3E")
	if loader.Check(u, webshield.MainFrame, true) {
		t.Fatalf("expected module verdict to be returned")
	}

	if got == nil {
		t.Fatalf("expected module to be called")
	}

	if got.URL != "http://www.test.com/search?q=<script>alert(1)</script>" {
		t.Fatalf("expected decoded url got %s\n", got.URL)
	}

	if got.RequestType != webshield.MainFrame.Code() || !got.Private || got.Allow {
		t.Fatalf("unexpected descriptor %#v\n", got)
	}

	// one malformed escape must not stop the rest from being decoded
	u = mustParse(t, "http://www.test.com/search?q=%3Cscript%3Ealert(1)%3C%2Fscript%3E&z=%zz")
	loader.Check(u, webshield.MainFrame, false)
	if got.URL != "http://www.test.com/search?q=<script>alert(1)</script>&z=%zz" {
		t.Fatalf("expected decoded url with malformed escape kept got %s\n", got.URL)
	}
}

func TestDecodeURL(t *testing.T) {
	var urls = []struct {
		in  string
		out string
	}{
		{"http://www.test.com/a?q=plain", "http://www.test.com/a?q=plain"},
		{"http://www.test.com/a?q=%3c%3E", "http://www.test.com/a?q=<>"},
		{"http://www.test.com/a?q=%zz%3C", "http://www.test.com/a?q=%zz<"},
		{"http://www.test.com/a?q=%3C%", "http://www.test.com/a?q=<%"},
		{"http://www.test.com/a?q=%3C%4", "http://www.test.com/a?q=<%4"},
		{"http://www.test.com/a?q=%%3C", "http://www.test.com/a?q=%<"},
	}

	for _, tt := range urls {
		got := module.DecodeURL(mustParse(t, tt.in))
		if got != tt.out {
			t.Fatalf("decode %s expected %s got %s\n", tt.in, tt.out, got)
		}
	}
}

func TestCapabilitiesAreIndependent(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	lib.CheckFn = nil
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

	u := mustParse(t, "http://www.test.com/search?q=1")
	for i := 0; i < 3; i++ {
		if loader.Check(u, webshield.MainFrame, false) {
			t.Fatalf("expected missing check capability to fail open")
		}
	}

	if lib.LookupCalls[module.SymCheckURL] != 1 {
		t.Fatalf("expected missing symbol to be memoized, looked up %d times\n", lib.LookupCalls[module.SymCheckURL])
	}

	if loader.ErrorKind() != webshield.ErrCheckMissing {
		t.Fatalf("expected check missing got %s\n", loader.ErrorKind())
	}

	loader.ReportDecision(u, true)
	if lib.ReportCalls != 1 {
		t.Fatalf("expected report capability to keep working")
	}

	if loader.Version() != webshield.MinSupportedVersion {
		t.Fatalf("expected version capability to keep working")
	}
}

func TestFilter(t *testing.T) {
	var inputs = []struct {
		in       string
		rewrite  string
		expected string
		called   bool
	}{
		{"https://a.example/x?y=<script>", "https://a.example/x?y=", "https://a.example/x?y=", true},
		{"https://a.example/x?y=<script>", "https://a.example:443/x", "https://a.example:443/x", true},
		{"https://a.example/x?y=<script>", "https://evil.example/x?y=", "https://a.example/x?y=<script>", true},
		{"https://a.example/x?y=<script>", "http://a.example/x?y=", "https://a.example/x?y=<script>", true},
		{"https://a.example/x?y=<script>", "https://a.example:8443/x", "https://a.example/x?y=<script>", true},
		{"https://a.example/x?y=<script>", "/x?y=", "https://a.example/x?y=<script>", true},
		{"https://a.example/x?y=<script>", "", "https://a.example/x?y=<script>", true},
		{"https://a.example/no/query/here/at/all", "https://a.example/", "https://a.example/no/query/here/at/all", false},
		{"ftp://a.example/x?y=1", "ftp://a.example/", "ftp://a.example/x?y=1", false},
	}

	for _, input := range inputs {
		lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
		rewrite := input.rewrite
		lib.FilterFn = func(d *module.Descriptor) string { return rewrite }
		loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

		result := loader.Filter(mustParse(t, input.in))
		if result != input.expected {
			t.Fatalf("%v did not match %v for %s -> %s\n", result, input.expected, input.in, input.rewrite)
		}

		if (lib.FilterCalls > 0) != input.called {
			t.Fatalf("expected module called=%v for %s\n", input.called, input.in)
		}
	}
}

func TestFilterMissing(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	lib.FilterFn = nil
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

	in := "https://a.example/x?y=1"
	if result := loader.Filter(mustParse(t, in)); result != in {
		t.Fatalf("expected original url got %s\n", result)
	}

	if loader.ErrorKind() != webshield.ErrFilterMissing {
		t.Fatalf("expected filter missing got %s\n", loader.ErrorKind())
	}
}

func TestReportDecision(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	var got *module.Descriptor
	lib.ReportFn = func(d *module.Descriptor) { got = d }
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})

	loader.ReportDecision(mustParse(t, "https://a.example/x?y=%22"), true)
	if got == nil || !got.Allow || got.URL != "https://a.example/x?y=\"" {
		t.Fatalf("unexpected report descriptor %#v\n", got)
	}

	lib.ReportFn = nil
	other, _ := newLoader(map[string]module.Library{primaryPath: lib})
	other.ReportDecision(mustParse(t, "https://a.example/x?y=1"), false)
	if other.ErrorKind() != webshield.ErrReportMissing {
		t.Fatalf("expected report missing got %s\n", other.ErrorKind())
	}
}

func TestClose(t *testing.T) {
	lib := mock.MakeMockLibrary(webshield.MinSupportedVersion)
	loader, _ := newLoader(map[string]module.Library{primaryPath: lib})
	loader.EnsureLoaded()
	loader.Close()
	if !lib.CloseCalled || loader.Loaded() {
		t.Fatalf("expected module to be closed")
	}
	if loader.EnsureLoaded() {
		t.Fatalf("expected closed loader to stay closed")
	}
}
