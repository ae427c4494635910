package mock

// Fetcher records what happened to paused requests
type Fetcher struct {
	ContinueFn func(requestID, rewritten string) error
	Continued  []string
	Rewritten  map[string]string

	FailFn func(requestID string) error
	Failed []string
}

// MakeMockFetcher that accepts every call
func MakeMockFetcher() *Fetcher {
	return &Fetcher{
		ContinueFn: func(requestID, rewritten string) error { return nil },
		Continued:  make([]string, 0),
		Rewritten:  make(map[string]string),
		FailFn:     func(requestID string) error { return nil },
		Failed:     make([]string, 0),
	}
}

func (f *Fetcher) Continue(requestID, rewritten string) error {
	f.Continued = append(f.Continued, requestID)
	if rewritten != "" {
		f.Rewritten[requestID] = rewritten
	}
	return f.ContinueFn(requestID, rewritten)
}

func (f *Fetcher) Fail(requestID string) error {
	f.Failed = append(f.Failed, requestID)
	return f.FailFn(requestID)
}
