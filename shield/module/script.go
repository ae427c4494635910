package module

import (
	"os"
	"sync"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// scriptLibrary is a module written in JavaScript. The exported symbols are
// global functions of the script. goja runtimes are not goroutine safe so
// every call is serialized.
type scriptLibrary struct {
	lock *sync.Mutex
	vm   *goja.Runtime
	path string
}

// OpenScript evaluates a JS module file
func OpenScript(path string) (Library, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read module script %s", path)
	}
	return OpenScriptSource(path, string(src))
}

// OpenScriptSource evaluates JS module source, name is used in stack traces
func OpenScriptSource(name, src string) (Library, error) {
	s := &scriptLibrary{lock: &sync.Mutex{}, vm: goja.New(), path: name}
	s.vm.Set("log", func(msg string) {
		log.Debug().Str("module", name).Msg(msg)
	})
	if _, err := s.vm.RunScript(name, src); err != nil {
		return nil, errors.Wrapf(err, "evaluate module script %s", name)
	}
	return s, nil
}

func (s *scriptLibrary) Path() string {
	return s.path
}

func (s *scriptLibrary) descriptor(d *Descriptor) goja.Value {
	return s.vm.ToValue(map[string]interface{}{
		"url":         d.URL,
		"requestType": d.RequestType,
		"private":     d.Private,
		"allow":       d.Allow,
	})
}

func (s *scriptLibrary) call(fn goja.Callable, args ...goja.Value) (goja.Value, bool) {
	ret, err := fn(goja.Undefined(), args...)
	if err != nil {
		log.Warn().Err(err).Str("module", s.path).Msg("module script call failed")
		return nil, false
	}
	return ret, true
}

func (s *scriptLibrary) Lookup(symbol string) (interface{}, error) {
	s.lock.Lock()
	fn, ok := goja.AssertFunction(s.vm.Get(symbol))
	s.lock.Unlock()
	if !ok {
		return nil, errors.Wrap(ErrSymbolNotFound, symbol)
	}

	switch symbol {
	case SymCheckURL:
		return CheckFunc(func(d *Descriptor) bool {
			s.lock.Lock()
			defer s.lock.Unlock()
			ret, ok := s.call(fn, s.descriptor(d))
			return ok && ret.ToBoolean()
		}), nil
	case SymFilterURL:
		return FilterFunc(func(d *Descriptor) string {
			s.lock.Lock()
			defer s.lock.Unlock()
			ret, ok := s.call(fn, s.descriptor(d))
			if !ok || goja.IsUndefined(ret) || goja.IsNull(ret) {
				return ""
			}
			return ret.String()
		}), nil
	case SymGetVersionCode:
		return VersionFunc(func() int {
			s.lock.Lock()
			defer s.lock.Unlock()
			ret, ok := s.call(fn)
			if !ok {
				return 0
			}
			return int(ret.ToInteger())
		}), nil
	case SymSendUserResponse:
		return ReportFunc(func(d *Descriptor) {
			s.lock.Lock()
			defer s.lock.Unlock()
			s.call(fn, s.descriptor(d))
		}), nil
	}
	return nil, errors.Wrap(ErrSymbolType, symbol)
}

func (s *scriptLibrary) Close() error {
	s.lock.Lock()
	s.vm.Interrupt("module closed")
	s.lock.Unlock()
	return nil
}
