package clicmds

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/webshield/shield"
	"gitlab.com/webshield/shield/browser"
	"golang.org/x/sync/errgroup"
)

// BrowseFlags for the guarded browser
func BrowseFlags() []cli.Flag {
	return append(ConfigFlags(),
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to open in the guarded tab",
			Value: "about:blank",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "path to the chrome executable",
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "address to serve prometheus metrics on, empty to disable",
		},
		&cli.BoolFlag{
			Name:  "private",
			Usage: "treat the guarded tab as private, decisions are not reported or recorded",
		},
	)
}

// Browse starts chrome with a guarded tab and runs until interrupted
func Browse(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.IsSet("chrome") {
		cfg.Browser.ChromePath = ctx.String("chrome")
	}
	if ctx.IsSet("metrics") {
		cfg.Browser.MetricsAddr = ctx.String("metrics")
	}

	svc := shield.New(cfg)
	b := browser.New(svc, browser.NewLocalLeaser(cfg.Browser))
	b.SetPrivate(ctx.Bool("private"))
	presenter, err := browser.NewPagePresenter(b)
	if err != nil {
		return err
	}
	svc.Attach(b, presenter)

	if err := svc.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init shield")
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return svc.Start(gctx)
	})

	if addr := cfg.Browser.MetricsAddr; addr != "" {
		serveMetrics(gctx, g, svc, addr)
	}

	if err := b.Start(); err != nil {
		cancel()
		g.Wait()
		svc.Stop()
		return err
	}

	tab, err := b.OpenTab()
	if err == nil {
		err = tab.Navigate(ctx.String("url"))
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to open guarded tab")
		cancel()
	} else {
		log.Info().Str("url", ctx.String("url")).Msg("guarded tab open, ctrl-c to exit")
	}

	<-gctx.Done()
	log.Info().Msg("shutting down")
	if closeErr := b.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close browser")
	}

	PrintDecisions(ctx.App.Writer, svc.DecisionLog(), svc.Redirects())
	svc.Stop()

	if waitErr := g.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	return err
}

func serveMetrics(ctx context.Context, g *errgroup.Group, svc *shield.Service, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(svc.Metrics().Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
