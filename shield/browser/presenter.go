package browser

import (
	"bytes"
	"html/template"
	"net/url"

	packr "github.com/gobuffalo/packr/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/webshield/shield/decision"
	"gitlab.com/webshield/webshield"
)

var pages = packr.New("decision-pages", "./pages")

type pageData struct {
	URL      string
	Origin   string
	Binding  template.JS
	Deny     int
	Proceed  int
	ShowMore int
}

// PagePresenter shows decision pages in their own tab of the browser. Present
// and Dismiss are called on the interaction runner.
type PagePresenter struct {
	b      *Browser
	page   *template.Template
	open   map[string]*gcd.ChromeTarget
	logger zerolog.Logger
}

// NewPagePresenter loads the decision page template
func NewPagePresenter(b *Browser) (*PagePresenter, error) {
	src, err := pages.FindString("decision.html")
	if err != nil {
		return nil, errors.Wrap(err, "loading decision page")
	}

	page, err := template.New("decision").Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parsing decision page")
	}

	return &PagePresenter{
		b:      b,
		page:   page,
		open:   make(map[string]*gcd.ChromeTarget),
		logger: log.With().Str("component", "presenter").Logger(),
	}, nil
}

// Render the decision page for u
func (p *PagePresenter) Render(u *url.URL) (string, error) {
	data := &pageData{
		URL:      u.String(),
		Origin:   webshield.OriginOf(u).String(),
		Binding:  template.JS(BindingName),
		Deny:     int(decision.CmdDontProceed),
		Proceed:  int(decision.CmdProceed),
		ShowMore: int(decision.CmdShowMoreSection),
	}

	buf := &bytes.Buffer{}
	if err := p.page.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Present implements decision.Presenter
func (p *PagePresenter) Present(s *decision.Session) error {
	html, err := p.Render(s.URL())
	if err != nil {
		return err
	}

	g, err := p.b.debugger()
	if err != nil {
		return err
	}

	target, err := g.NewTab()
	if err != nil {
		return errors.Wrap(err, "opening decision tab")
	}

	interaction := p.b.svc.Interaction()
	target.Subscribe("Runtime.bindingCalled", func(_ *gcd.ChromeTarget, payload []byte) {
		cmd, ok := DecodeBinding(payload, BindingName)
		if !ok {
			return
		}
		interaction.Post(func() { s.OnCommand(cmd) })
	})

	if err := p.install(target, html); err != nil {
		g.CloseTab(target)
		return err
	}

	p.open[s.ID()] = target
	p.logger.Info().Str("session", s.ID()).Str("container", s.Container().ID()).Msg("decision page shown")
	return nil
}

func (p *PagePresenter) install(target *gcd.ChromeTarget, html string) error {
	if _, err := target.Page.Enable(); err != nil {
		return errors.Wrap(err, "enabling page domain")
	}

	if _, err := target.Runtime.Enable(); err != nil {
		return errors.Wrap(err, "enabling runtime domain")
	}

	if _, err := target.Runtime.AddBindingWithParams(&gcdapi.RuntimeAddBindingParams{Name: BindingName}); err != nil {
		return errors.Wrap(err, "adding command binding")
	}

	params := &gcdapi.PageSetDocumentContentParams{FrameId: target.Target.Id, Html: html}
	if _, err := target.Page.SetDocumentContentWithParams(params); err != nil {
		return errors.Wrap(err, "writing decision page")
	}
	return nil
}

// Dismiss implements decision.Presenter
func (p *PagePresenter) Dismiss(s *decision.Session) {
	target, ok := p.open[s.ID()]
	if !ok {
		p.logger.Debug().Err(ErrNoPresentation).Str("session", s.ID()).Msg("nothing to dismiss")
		return
	}
	delete(p.open, s.ID())

	g, err := p.b.debugger()
	if err != nil {
		return
	}

	if err := g.CloseTab(target); err != nil {
		p.logger.Warn().Err(err).Str("session", s.ID()).Msg("failed to close decision tab")
	}
}

// Open decision pages
func (p *PagePresenter) Open() int {
	return len(p.open)
}
