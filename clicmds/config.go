package clicmds

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/webshield/webshield"
)

// GlobalFlags apply to every command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "loglevel",
			Usage: "log level (debug, info, warn, error)",
			Value: "info",
		},
	}
}

// Before sets up logging from the global flags
func Before(ctx *cli.Context) error {
	level, err := zerolog.ParseLevel(ctx.String("loglevel"))
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// ConfigFlags select and override the webshield configuration
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "moduledir",
			Usage: "directory holding the detection module, defaults to the executable's directory",
		},
		&cli.StringFlag{
			Name:  "module",
			Usage: "file name of the detection module",
		},
		&cli.StringFlag{
			Name:  "legacy",
			Usage: "file name of the legacy detection module",
		},
		&cli.StringFlag{
			Name:  "infourl",
			Usage: "page opened when the user asks for more information",
		},
		&cli.StringFlag{
			Name:  "locale",
			Usage: "ui locale passed to the information page",
		},
		&cli.BoolFlag{
			Name:  "disable",
			Usage: "turn the shield off, requests are never gated",
			Value: false,
		},
	}
}

// LoadConfig from the toml file, the WEBSHIELD_ environment and the command line,
// later sources win
func LoadConfig(ctx *cli.Context) (*webshield.Config, error) {
	cfg := webshield.NewConfig()

	if path := ctx.String("config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	}

	if err := envconfig.Process("webshield", cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}

	if ctx.IsSet("moduledir") {
		cfg.ModuleDir = ctx.String("moduledir")
	}
	if ctx.IsSet("module") {
		cfg.ModuleName = ctx.String("module")
	}
	if ctx.IsSet("legacy") {
		cfg.LegacyName = ctx.String("legacy")
	}
	if ctx.IsSet("infourl") {
		cfg.InfoURL = ctx.String("infourl")
	}
	if ctx.IsSet("locale") {
		cfg.Locale = ctx.String("locale")
	}
	if ctx.Bool("disable") {
		cfg.Enabled = false
	}

	if cfg.Browser == nil {
		cfg.Browser = &webshield.BrowserConfig{}
	}

	log.Debug().Bool("enabled", cfg.Enabled).Str("module", cfg.ModuleName).Msg("config loaded")
	return cfg, nil
}
