//go:build (darwin || freebsd || linux || netbsd) && !android

package module

import (
	"runtime"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

// cDescriptor mirrors
//
//	struct { const char *url; int16_t request_type; bool private; bool allow; }
type cDescriptor struct {
	url         *byte
	requestType int16
	private     bool
	allow       bool
}

func toC(d *Descriptor) (*cDescriptor, []byte) {
	buf := append([]byte(d.URL), 0)
	return &cDescriptor{
		url:         &buf[0],
		requestType: d.RequestType,
		private:     d.Private,
		allow:       d.Allow,
	}, buf
}

type nativeLibrary struct {
	path   string
	handle uintptr
}

// OpenNative dlopens a shared library module
func OpenNative(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "dlopen %s", path)
	}
	return &nativeLibrary{path: path, handle: handle}, nil
}

func (n *nativeLibrary) Path() string {
	return n.path
}

func (n *nativeLibrary) Lookup(symbol string) (interface{}, error) {
	sym, err := purego.Dlsym(n.handle, symbol)
	if err != nil {
		return nil, errors.Wrapf(ErrSymbolNotFound, "%s: %s", symbol, err)
	}

	switch symbol {
	case SymCheckURL:
		var fn func(*cDescriptor) bool
		purego.RegisterFunc(&fn, sym)
		return CheckFunc(func(d *Descriptor) bool {
			c, buf := toC(d)
			ret := fn(c)
			runtime.KeepAlive(buf)
			return ret
		}), nil
	case SymFilterURL:
		var fn func(*cDescriptor) string
		purego.RegisterFunc(&fn, sym)
		return FilterFunc(func(d *Descriptor) string {
			c, buf := toC(d)
			ret := fn(c)
			runtime.KeepAlive(buf)
			return ret
		}), nil
	case SymGetVersionCode:
		var fn func() int32
		purego.RegisterFunc(&fn, sym)
		return VersionFunc(func() int { return int(fn()) }), nil
	case SymSendUserResponse:
		var fn func(*cDescriptor)
		purego.RegisterFunc(&fn, sym)
		return ReportFunc(func(d *Descriptor) {
			c, buf := toC(d)
			fn(c)
			runtime.KeepAlive(buf)
		}), nil
	}
	return nil, errors.Wrap(ErrSymbolType, symbol)
}

func (n *nativeLibrary) Close() error {
	if n.handle == 0 {
		return nil
	}
	err := purego.Dlclose(n.handle)
	n.handle = 0
	return err
}
