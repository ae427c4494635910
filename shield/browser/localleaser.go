package browser

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/wirepair/gcd"
	"gitlab.com/webshield/webshield"
)

// LocalLeaser starts chrome processes on this host
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	chromePath  string
	tmp         string
	flags       []string
}

// NewLocalLeaser using the chrome path, profile root and extra flags from cfg
func NewLocalLeaser(cfg *webshield.BrowserConfig) *LocalLeaser {
	chrome, tmp := FindChrome()
	s := &LocalLeaser{
		browserLock: sync.RWMutex{},
		browsers:    make(map[string]*gcd.Gcd),
		chromePath:  chrome,
		tmp:         tmp,
		flags:       append([]string{}, startupFlags...),
	}

	if cfg == nil {
		return s
	}

	if cfg.ChromePath != "" {
		s.chromePath = cfg.ChromePath
	}

	if cfg.ProfileDir != "" {
		s.tmp = cfg.ProfileDir
	}
	s.flags = append(s.flags, cfg.Flags...)
	return s
}

func (s *LocalLeaser) Acquire() (string, error) {
	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()

	profileDir := randProfile(s.tmp)
	port := randPort()

	b.AddFlags(s.flags)
	if err := b.StartProcess(s.chromePath, profileDir, port); err != nil {
		return "", errors.Wrap(err, "starting "+s.chromePath)
	}
	s.browserLock.Lock()
	s.browsers[port] = b
	s.browserLock.Unlock()

	return port, nil
}

func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	if b, ok := s.browsers[port]; ok {
		if err := b.ExitProcess(); err != nil {
			return err
		}
		delete(s.browsers, port)
		return nil
	}

	return errors.New("not found")
}

func (s *LocalLeaser) Cleanup() (string, error) {
	if err := KillOldProcesses(); err != nil {
		return "", err
	}

	if err := RemoveTmpContents(s.tmp); err != nil {
		return "", err
	}
	return "ok", nil
}
