package browser_test

import (
	"testing"

	"gitlab.com/webshield/shield/browser"
)

func TestDecodePaused(t *testing.T) {
	payload := []byte(`{"method":"Fetch.requestPaused","params":{"requestId":"interception-job-1.0","request":{"url":"https://a.example/x","urlFragment":"#top","method":"GET","headers":{}},"frameId":"F1","resourceType":"Document","networkId":"1000.1"}}`)
	p, err := browser.DecodePaused(payload)
	if err != nil {
		t.Fatalf("error decoding: %s\n", err)
	}

	if p.RequestID != "interception-job-1.0" || p.FrameID != "F1" || p.ResourceType != "Document" {
		t.Fatalf("unexpected request %#v\n", p)
	}

	if p.URL != "https://a.example/x#top" {
		t.Fatalf("expected fragment to be kept, got %s\n", p.URL)
	}

	if p.Key() != "1000.1" {
		t.Fatalf("expected network id as key, got %s\n", p.Key())
	}
}

func TestDecodePausedErrors(t *testing.T) {
	var inputs = []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"no request id", `{"method":"Fetch.requestPaused","params":{"request":{"url":"https://a.example/"}}}`},
	}

	for _, in := range inputs {
		if _, err := browser.DecodePaused([]byte(in.payload)); err == nil {
			t.Fatalf("%s: expected error\n", in.name)
		}
	}
}

func TestPausedKeyFallback(t *testing.T) {
	p := &browser.PausedRequest{RequestID: "r1"}
	if p.Key() != "r1" {
		t.Fatalf("expected request id when there is no network id")
	}
}

func TestDecodeBinding(t *testing.T) {
	var inputs = []struct {
		payload string
		cmd     string
		ok      bool
	}{
		{`{"method":"Runtime.bindingCalled","params":{"name":"webshieldSendCommand","payload":"1","executionContextId":3}}`, "1", true},
		{`{"method":"Runtime.bindingCalled","params":{"name":"webshieldSendCommand","payload":"\"pageLoadComplete\"","executionContextId":3}}`, `"pageLoadComplete"`, true},
		{`{"method":"Runtime.bindingCalled","params":{"name":"other","payload":"1","executionContextId":3}}`, "", false},
		{`nope`, "", false},
	}

	for _, in := range inputs {
		cmd, ok := browser.DecodeBinding([]byte(in.payload), browser.BindingName)
		if ok != in.ok || cmd != in.cmd {
			t.Fatalf("%s: expected %q/%v got %q/%v\n", in.payload, in.cmd, in.ok, cmd, ok)
		}
	}
}
