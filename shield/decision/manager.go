package decision

import (
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/shield/allowlist"
	"gitlab.com/webshield/webshield"
)

// Manager creates decision sessions for pending checks and owns the
// per container allow lists. It must only be used from the interaction runner.
type Manager struct {
	frames    webshield.FrameHost
	allow     *allowlist.Registry
	presenter Presenter
	infoURL   string
	sessions  map[string]*Session
	logger    zerolog.Logger
}

// NewManager for decision sessions
func NewManager(cfg *webshield.Config, frames webshield.FrameHost, allow *allowlist.Registry, presenter Presenter) *Manager {
	return &Manager{
		frames:    frames,
		allow:     allow,
		presenter: presenter,
		infoURL:   InfoURL(cfg.InfoURL, cfg.Locale),
		sessions:  make(map[string]*Session),
		logger:    log.With().Str("component", "decision").Logger(),
	}
}

// SetPresenter replaces the presenter, used when the presenter needs the manager to exist first
func (m *Manager) SetPresenter(presenter Presenter) {
	m.presenter = presenter
}

// InfoURL opened by CmdShowMoreSection
func (m *Manager) InfoURL() string {
	return m.infoURL
}

// Display a pending check. If the container is gone, or is a prerender that
// can not be interrupted, the check is aborted instead.
func (m *Manager) Display(check *webshield.PendingCheck) {
	container, ok := m.frames.Lookup(check.Frame)
	if !ok {
		m.logger.Info().Str("check_id", check.ID).Msg("frame gone before decision could be shown, cancelling")
		check.Abort()
		return
	}

	if container.IsPrerender() {
		m.logger.Info().Str("check_id", check.ID).Msg("destroying prerender container")
		container.Destroy("malicious prerender")
		m.ContainerClosed(container.ID())
		check.Abort()
		return
	}

	s := newSession(m, check, container)
	m.sessions[s.ID()] = s
	s.Show()
}

// Allow the origin of u in the frame's container
func (m *Manager) Allow(frame webshield.FrameRef, u *url.URL) {
	if _, ok := m.frames.Lookup(frame); !ok {
		m.logger.Debug().Str("container", frame.ContainerID).Msg("container gone, not recording origin")
		return
	}
	m.allow.Insert(frame.ContainerID, u)
}

// Session by ID
func (m *Manager) Session(id string) (*Session, bool) {
	s, ok := m.sessions[id]
	return s, ok
}

// Sessions currently presented
func (m *Manager) Sessions() int {
	return len(m.sessions)
}

func (m *Manager) remove(s *Session) {
	delete(m.sessions, s.ID())
}

// ContainerClosed drops the allow list of a destroyed container and denies
// any sessions still open for it.
func (m *Manager) ContainerClosed(containerID string) {
	m.allow.Forget(containerID)
	for _, s := range m.sessions {
		if s.container.ID() == containerID && !s.done {
			s.OnDeny()
		}
	}
}
