package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/webshield/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "webshield"
	app.Version = "0.1"
	app.Usage = "Stop navigations to links that attack the site they point at"
	app.Flags = clicmds.GlobalFlags()
	app.Before = clicmds.Before
	app.Commands = []*cli.Command{
		{
			Name:    "check",
			Aliases: []string{"c"},
			Usage:   "classify urls as main frame navigations",
			Action:  clicmds.Check,
			Flags:   clicmds.BridgeFlags(),
		},
		{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "print the rewritten form of urls",
			Action:  clicmds.Filter,
			Flags:   clicmds.BridgeFlags(),
		},
		{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "show module diagnostics",
			Action:  clicmds.Status,
			Flags:   clicmds.ConfigFlags(),
		},
		{
			Name:    "browse",
			Aliases: []string{"b"},
			Usage:   "open a guarded browser",
			Action:  clicmds.Browse,
			Flags:   clicmds.BrowseFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("webshield failed")
	}
}
