package webshield

// FrameRef identifies the frame (and its owning container) that started a request
type FrameRef struct {
	ContainerID string
	FrameID     string
}

// Container is a top level browsing session, usually a tab
type Container interface {
	ID() string
	// IsPrerender containers must be destroyed instead of interrupted
	IsPrerender() bool
	Destroy(reason string)
	// Navigate the container to a new url
	Navigate(url string) error
}

// FrameHost looks up live containers, only called from the interaction runner
type FrameHost interface {
	Lookup(ref FrameRef) (Container, bool)
}
