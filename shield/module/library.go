package module

import (
	"path/filepath"
	"strings"
)

// Exported module symbols
const (
	SymCheckURL         = "CheckURL"
	SymFilterURL        = "FilterURL"
	SymGetVersionCode   = "GetVersionCode"
	SymSendUserResponse = "SendUserResponse"
)

// Descriptor is the request description handed to every module entry point
type Descriptor struct {
	URL         string
	RequestType int16
	Private     bool
	Allow       bool
}

// CheckFunc returns true if the described url is malicious
type CheckFunc func(d *Descriptor) bool

// FilterFunc returns a rewritten url, or an empty string for no rewrite
type FilterFunc func(d *Descriptor) string

// VersionFunc returns the module version code
type VersionFunc func() int

// ReportFunc notifies the module of the user's decision
type ReportFunc func(d *Descriptor)

// Library is an opened module. Lookup returns one of CheckFunc, FilterFunc,
// VersionFunc or ReportFunc depending on the symbol name.
type Library interface {
	Path() string
	Lookup(symbol string) (interface{}, error)
	Close() error
}

// Opener opens a module at path
type Opener func(path string) (Library, error)

// OpenAny opens scripts (.js) with the script backend and everything else
// as a native shared library.
func OpenAny(path string) (Library, error) {
	if strings.EqualFold(filepath.Ext(path), ".js") {
		return OpenScript(path)
	}
	return OpenNative(path)
}
