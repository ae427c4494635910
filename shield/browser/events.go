package browser

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PausedRequest is the part of a Fetch.requestPaused event the interceptor uses
type PausedRequest struct {
	RequestID    string
	NetworkID    string
	FrameID      string
	ResourceType string
	URL          string
}

// Key identifying the navigation across redirects. Every redirect hop pauses
// with a new fetch id but keeps the network id.
func (p *PausedRequest) Key() string {
	if p.NetworkID != "" {
		return p.NetworkID
	}
	return p.RequestID
}

type requestPausedEvent struct {
	Method string `json:"method"`
	Params struct {
		RequestID string `json:"requestId"`
		Request   struct {
			URL         string `json:"url"`
			URLFragment string `json:"urlFragment"`
		} `json:"request"`
		FrameID      string `json:"frameId"`
		ResourceType string `json:"resourceType"`
		NetworkID    string `json:"networkId"`
	} `json:"params"`
}

// DecodePaused Fetch.requestPaused payload
func DecodePaused(payload []byte) (*PausedRequest, error) {
	message := &requestPausedEvent{}
	if err := json.Unmarshal(payload, message); err != nil {
		return nil, errors.Wrap(err, "decoding Fetch.requestPaused")
	}

	p := message.Params
	if p.RequestID == "" {
		return nil, errors.New("Fetch.requestPaused without request id")
	}

	return &PausedRequest{
		RequestID:    p.RequestID,
		NetworkID:    p.NetworkID,
		FrameID:      p.FrameID,
		ResourceType: p.ResourceType,
		URL:          p.Request.URL + p.Request.URLFragment,
	}, nil
}

type bindingCalledEvent struct {
	Method string `json:"method"`
	Params struct {
		Name               string `json:"name"`
		Payload            string `json:"payload"`
		ExecutionContextID int    `json:"executionContextId"`
	} `json:"params"`
}

// DecodeBinding Runtime.bindingCalled payload, returns the command string sent
// through binding name
func DecodeBinding(payload []byte, name string) (string, bool) {
	message := &bindingCalledEvent{}
	if err := json.Unmarshal(payload, message); err != nil {
		return "", false
	}

	if message.Params.Name != name {
		return "", false
	}
	return message.Params.Payload, true
}
