package webshield

import "net/url"

// MinSupportedVersion of the detection module, older modules are rejected
const MinSupportedVersion = 20

// ErrorKind is the last error recorded by the module loader
type ErrorKind int8

// revive:disable:var-naming
const (
	ErrNone ErrorKind = iota
	ErrLoadFailure
	ErrCheckMissing
	ErrFilterMissing
	ErrVersionMissing
	ErrReportMissing
)

func (e ErrorKind) String() string {
	switch e {
	case ErrNone:
		return "none"
	case ErrLoadFailure:
		return "load_failure"
	case ErrCheckMissing:
		return "missing_capability(check)"
	case ErrFilterMissing:
		return "missing_capability(filter)"
	case ErrVersionMissing:
		return "missing_capability(version)"
	case ErrReportMissing:
		return "missing_capability(report)"
	}
	return "unknown"
}

// Module classifies urls. Implementations never return errors, every
// failure degrades to a safe default and is recorded in ErrorKind.
type Module interface {
	EnsureLoaded() bool
	// Check returns true if the url is considered malicious
	Check(u *url.URL, class RequestClass, private bool) bool
	// Filter returns a same origin rewrite of u or u unchanged
	Filter(u *url.URL) string
	Version() int
	// ReportDecision tells the module what the user chose
	ReportDecision(u *url.URL, allowed bool)
	ErrorKind() ErrorKind
}
