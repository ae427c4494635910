package browser

import (
	"github.com/pkg/errors"
	"github.com/wirepair/gcd"
)

// BindingName is the runtime binding the decision page sends commands through
const BindingName = "webshieldSendCommand"

// BlockedReason passed to Fetch.failRequest for denied navigations
const BlockedReason = "BlockedByClient"

// GcdResponseFunc internal response function type
type GcdResponseFunc func(target *gcd.ChromeTarget, payload []byte)

// revive:exported
var (
	ErrBrowserClosing = errors.New("unable to load, as closing down")
	ErrNotStarted     = errors.New("browser not started")
	ErrNavigating     = errors.New("error in navigation")
	ErrTabClosed      = errors.New("tab closed")
	ErrNoPresentation = errors.New("no decision page for session")
)

var startupFlags = []string{
	"--enable-automation",
	"--enable-features=NetworkService",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-ntp-popular-sites",
	"--disable-sync-app-list",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-dev-shm-usage",
	"--no-first-run",
	"--window-size=1024,768",
	"--password-store=basic",
	"about:blank",
}
