package store

import (
	"context"
	"sync"

	"github.com/cayleygraph/cayley"
	"github.com/cayleygraph/quad"
	"github.com/pkg/errors"
)

const (
	predRedirectsTo = "redirects_to"
	predStartsAt    = "starts_at"
)

// InitGraph in memory
func InitGraph() (*cayley.Handle, error) {
	return cayley.NewMemoryGraph()
}

// RedirectGraph records redirect chains as quads:
//
//	<chain> <starts_at> <first url>
//	<from> <redirects_to> <to> <chain>
type RedirectGraph struct {
	Store *cayley.Handle
	lock  *sync.RWMutex
	heads map[string]string
}

// NewRedirectGraph creates a new redirect graph
func NewRedirectGraph() *RedirectGraph {
	return &RedirectGraph{lock: &sync.RWMutex{}, heads: make(map[string]string)}
}

// Init the in memory graph
func (g *RedirectGraph) Init() error {
	var err error
	g.Store, err = InitGraph()
	return errors.Wrap(err, "init redirect graph")
}

// AddHop implements webshield.RedirectRecorder
func (g *RedirectGraph) AddHop(chainID, from, to string) error {
	if g.Store == nil {
		return ErrNotInitialized
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.heads[chainID]; !ok {
		if err := g.Store.AddQuad(quad.Make(quad.String(chainID), quad.String(predStartsAt), quad.String(from), nil)); err != nil {
			return err
		}
		g.heads[chainID] = from
	}
	return g.Store.AddQuad(quad.Make(quad.String(from), quad.String(predRedirectsTo), quad.String(to), quad.String(chainID)))
}

// Chain of urls followed in chainID, starting with the first request url
func (g *RedirectGraph) Chain(ctx context.Context, chainID string) ([]string, error) {
	if g.Store == nil {
		return nil, ErrNotInitialized
	}

	g.lock.RLock()
	defer g.lock.RUnlock()

	head, ok := g.heads[chainID]
	if !ok {
		return []string{}, nil
	}

	chain := []string{head}
	seen := map[string]struct{}{head: {}}
	current := head
	for {
		next := ""
		p := cayley.StartPath(g.Store, quad.String(current)).
			LabelContext(quad.String(chainID)).
			Out(quad.String(predRedirectsTo))
		err := p.Iterate(ctx).EachValue(nil, func(v quad.Value) {
			if s, ok := v.(quad.String); ok && next == "" {
				next = string(s)
			}
		})
		if err != nil {
			return chain, err
		}

		if next == "" {
			return chain, nil
		}
		chain = append(chain, next)

		// a chain may loop back on itself
		if _, ok := seen[next]; ok {
			return chain, nil
		}
		seen[next] = struct{}{}
		current = next
	}
}

// Close the graph
func (g *RedirectGraph) Close() error {
	if g.Store == nil {
		return nil
	}
	return g.Store.Close()
}
