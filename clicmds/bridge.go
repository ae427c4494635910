package clicmds

import (
	"fmt"
	"net/url"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/webshield/shield"
)

// BridgeFlags for check and filter
func BridgeFlags() []cli.Flag {
	return append(ConfigFlags(),
		&cli.BoolFlag{
			Name:  "private",
			Usage: "treat urls as coming from a private session",
			Value: false,
		},
	)
}

func newBridge(ctx *cli.Context) (*shield.Service, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	svc := shield.New(cfg)
	if err := svc.Init(); err != nil {
		return nil, err
	}
	return svc, nil
}

func parseArgs(ctx *cli.Context) ([]*url.URL, error) {
	if ctx.NArg() == 0 {
		return nil, errors.New("no urls given")
	}

	urls := make([]*url.URL, 0, ctx.NArg())
	for _, raw := range ctx.Args().Slice() {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", raw)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Check classifies each url argument as a main frame navigation
func Check(ctx *cli.Context) error {
	urls, err := parseArgs(ctx)
	if err != nil {
		return err
	}

	svc, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	for _, u := range urls {
		verdict := "safe"
		if svc.Check(u, ctx.Bool("private")) {
			verdict = "malicious"
		}
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", verdict, u)
	}
	return nil
}

// Filter prints the rewritten form of each url argument
func Filter(ctx *cli.Context) error {
	urls, err := parseArgs(ctx)
	if err != nil {
		return err
	}

	svc, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	for _, u := range urls {
		fmt.Fprintln(ctx.App.Writer, svc.Filter(u))
	}
	return nil
}

// Status dumps the module diagnostics
func Status(ctx *cli.Context) error {
	svc, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	spew.Fdump(ctx.App.Writer, svc.Diagnostics())
	return nil
}
