package decision

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/webshield/webshield"
)

// ErrSessionClosed a session was resolved twice
var ErrSessionClosed = errors.New("decision session already resolved")

// Presenter puts a session in front of the user. Commands from the page are
// delivered to Session.OnCommand on the interaction runner.
type Presenter interface {
	Present(s *Session) error
	Dismiss(s *Session)
}

// Session is one decision page bound to a pending check. Sessions live on
// the interaction runner.
type Session struct {
	check     *webshield.PendingCheck
	container webshield.Container
	manager   *Manager
	presented bool
	done      bool
	logger    zerolog.Logger
}

func newSession(m *Manager, check *webshield.PendingCheck, container webshield.Container) *Session {
	return &Session{
		check:     check,
		container: container,
		manager:   m,
		logger:    m.logger.With().Str("check_id", check.ID).Str("container", container.ID()).Logger(),
	}
}

// ID of the session, the same as its pending check
func (s *Session) ID() string {
	return s.check.ID
}

// URL the decision is about
func (s *Session) URL() *url.URL {
	return s.check.URL
}

// Check this session resolves
func (s *Session) Check() *webshield.PendingCheck {
	return s.check
}

// Container the request belongs to
func (s *Session) Container() webshield.Container {
	return s.container
}

// Done once proceed or deny was chosen
func (s *Session) Done() bool {
	return s.done
}

// Show the session. Origins the user already approved in this container
// proceed without asking again.
func (s *Session) Show() {
	if s.manager.allow.Contains(s.container.ID(), s.check.URL) {
		s.logger.Info().Msg("origin already allowed, proceeding")
		s.resolve(true)
		return
	}

	if err := s.manager.presenter.Present(s); err != nil {
		s.logger.Error().Err(err).Msg("unable to present decision, denying")
		s.OnDeny()
		return
	}
	s.presented = true
}

// OnCommand from the decision page
func (s *Session) OnCommand(raw string) {
	if s.done {
		s.logger.Debug().Str("cmd", raw).Msg("ignoring command for resolved session")
		return
	}

	cmd, ok := ParseCommand(raw)
	if !ok {
		s.logger.Debug().Str("cmd", raw).Msg("ignoring non command message")
		return
	}

	switch cmd {
	case CmdDontProceed:
		s.OnDeny()
	case CmdProceed:
		s.OnProceed()
	case CmdShowMoreSection:
		s.showMore()
	default:
		s.logger.Debug().Str("cmd", cmd.String()).Msg("ignoring unsupported command")
	}
}

// OnProceed resumes the request
func (s *Session) OnProceed() {
	s.resolve(true)
}

// OnDeny cancels the request
func (s *Session) OnDeny() {
	s.resolve(false)
}

func (s *Session) resolve(proceed bool) {
	if s.done {
		panic(errors.Wrapf(ErrSessionClosed, "check %s", s.check.ID))
	}
	s.done = true

	if !s.check.Resolve(proceed) {
		s.logger.Warn().Msg("request runner stopped, decision dropped")
	}

	if s.presented {
		s.manager.presenter.Dismiss(s)
	}
	s.manager.remove(s)
}

// showMore navigates the container to the help page. Leaving the page
// abandons the deferred navigation, so the request is denied.
func (s *Session) showMore() {
	info := s.manager.InfoURL()
	if err := s.container.Navigate(info); err != nil {
		s.logger.Warn().Err(err).Str("url", info).Msg("failed to open info url")
		return
	}
	s.OnDeny()
}
