package clicmds

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/store"
	"gitlab.com/webshield/webshield"
)

// PrintDecisions made during the session, with the redirect chain that led to each
func PrintDecisions(w io.Writer, decisions *store.DecisionLog, redirects *store.RedirectGraph) {
	fmt.Fprintf(w, "Had %d decisions\n", decisions.Count())

	for _, outcome := range []webshield.Outcome{webshield.OutcomeProceed, webshield.OutcomeDeny, webshield.OutcomeAborted} {
		events, err := decisions.Find(outcome, 0)
		if err != nil {
			log.Error().Err(err).Str("outcome", outcome.String()).Msg("failed to read decisions")
			continue
		}

		for _, evt := range events {
			fmt.Fprintf(w, "%s %s after %dms: %s\n", evt.At.Format("15:04:05"), outcome, evt.Waited, evt.URL)

			chain, err := redirects.Chain(context.Background(), evt.ChainID)
			if err != nil || len(chain) < 2 {
				continue
			}
			for _, hop := range chain {
				fmt.Fprintf(w, "\t-> %s\n", hop)
			}
		}
	}
}
