package allowlist_test

import (
	"net/url"
	"testing"

	"gitlab.com/webshield/shield/allowlist"
	"gitlab.com/webshield/webshield"
)

func mustParse(t *testing.T, rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("error parsing %s: %s\n", rawURL, err)
	}
	return u
}

func TestListOriginOnly(t *testing.T) {
	list := allowlist.New()
	list.Insert(webshield.OriginOf(mustParse(t, "https://a.example/x?y=<script>")))
	list.Insert(webshield.OriginOf(mustParse(t, "https://a.example/other#frag")))

	if list.Len() != 1 {
		t.Fatalf("expected a single origin got %d\n", list.Len())
	}

	var inputs = []struct {
		in       string
		expected bool
	}{
		{"https://a.example/", true},
		{"https://A.EXAMPLE/totally/different?path=1", true},
		{"https://a.example:443/x", true},
		{"http://a.example/x", false},
		{"https://a.example:8443/x", false},
		{"https://b.a.example/x", false},
		{"https://example/x", false},
	}

	for _, input := range inputs {
		result := list.ContainsURL(mustParse(t, input.in))
		if result != input.expected {
			t.Fatalf("%v did not match %v for %s\n", result, input.expected, input.in)
		}
	}
}

func TestListIDNA(t *testing.T) {
	list := allowlist.New()
	list.Insert(webshield.OriginOf(mustParse(t, "https://bücher.example/")))

	if !list.ContainsURL(mustParse(t, "https://xn--bcher-kva.example/search?q=1")) {
		t.Fatalf("expected unicode and punycode hosts to share an origin")
	}
}

func TestListIgnoresZeroOrigin(t *testing.T) {
	list := allowlist.New()
	list.Insert(webshield.Origin{})
	if list.Len() != 0 {
		t.Fatalf("expected empty origin to be ignored")
	}
}

func TestRegistryLazyPerContainer(t *testing.T) {
	reg := allowlist.NewRegistry()
	u := mustParse(t, "https://a.example/x?y=1")

	if reg.Contains("tab-1", u) {
		t.Fatalf("expected empty registry")
	}

	if reg.Get("tab-1") != nil {
		t.Fatalf("expected list to be created lazily")
	}

	reg.Insert("tab-1", u)
	if !reg.Contains("tab-1", mustParse(t, "https://a.example/")) {
		t.Fatalf("expected origin to be allowed in tab-1")
	}

	if reg.Contains("tab-2", u) {
		t.Fatalf("expected origin to be scoped to tab-1")
	}

	reg.Forget("tab-1")
	if reg.Contains("tab-1", u) || reg.Len() != 0 {
		t.Fatalf("expected list to be destroyed with its container")
	}
}
