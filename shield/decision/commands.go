package decision

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/webshield"
	"golang.org/x/text/language"
)

// Command sent by the decision page
type Command int

const (
	// CmdDontProceed the user wants to go back to safety
	CmdDontProceed Command = 0
	// CmdProceed the user accepts the risk
	CmdProceed Command = 1
	// CmdShowMoreSection the user wants to read more about the warning
	CmdShowMoreSection Command = 2
)

// PageLoadComplete is sent by the page once it rendered, it carries no decision
const PageLoadComplete = `"pageLoadComplete"`

func (c Command) String() string {
	switch c {
	case CmdDontProceed:
		return "dont_proceed"
	case CmdProceed:
		return "proceed"
	case CmdShowMoreSection:
		return "show_more_section"
	}
	return "cmd(" + strconv.Itoa(int(c)) + ")"
}

// ParseCommand from the page. Lifecycle strings and anything that is not an
// integer are not commands.
func ParseCommand(raw string) (Command, bool) {
	raw = strings.TrimSpace(raw)
	if raw == PageLoadComplete {
		return 0, false
	}
	raw = strings.Trim(raw, `"`)
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return Command(code), true
}

// InfoURL is the help page opened for CmdShowMoreSection, localized with an
// hl parameter. An unusable override falls back to webshield.DefaultInfoURL.
func InfoURL(override, locale string) string {
	base := webshield.DefaultInfoURL
	if override != "" {
		if u, err := url.Parse(override); err == nil && u.IsAbs() {
			base = override
		} else {
			log.Warn().Str("info_url", override).Msg("ignoring invalid info url override")
		}
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}

	if locale == "" {
		return u.String()
	}

	tag, err := language.Parse(locale)
	if err != nil || tag == language.Und {
		return u.String()
	}

	q := u.Query()
	q.Set("hl", tag.String())
	u.RawQuery = q.Encode()
	return u.String()
}
