package store

import (
	"sort"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/webshield/webshield"
)

// ErrNotInitialized store was used before Init
var ErrNotInitialized = errors.New("store not initialized")

// DecisionLog keeps decision events in an in memory badger store for the
// lifetime of the process. Keys are decision:<check id> (the msgpack'd event)
// and outcome:<check id> (the outcome alone, for iteration).
type DecisionLog struct {
	Store *badger.DB
	count int64
}

// NewDecisionLog creates a new decision log
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{}
}

// Init the in memory store
func (d *DecisionLog) Init() error {
	var err error

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(newBadgerLogger(log.With().Str("component", "decision_log").Logger()))
	d.Store, err = badger.Open(opts)
	return errors.Wrap(err, "open decision log")
}

// RecordDecision implements webshield.DecisionRecorder
func (d *DecisionLog) RecordDecision(evt *webshield.DecisionEvent) error {
	if d.Store == nil {
		return ErrNotInitialized
	}

	value, err := EncodeDecision(evt)
	if err != nil {
		return err
	}

	outcome, err := EncodeOutcome(evt.Outcome)
	if err != nil {
		return err
	}

	id := []byte(evt.CheckID)
	err = d.Store.Update(func(txn *badger.Txn) error {
		if err := txn.Set(MakeKey(id, "decision"), value); err != nil {
			return err
		}
		return txn.Set(MakeKey(id, "outcome"), outcome)
	})
	if err == nil {
		atomic.AddInt64(&d.count, 1)
	}
	return err
}

// Get a decision by check id
func (d *DecisionLog) Get(checkID string) (*webshield.DecisionEvent, error) {
	if d.Store == nil {
		return nil, ErrNotInitialized
	}

	var evt *webshield.DecisionEvent
	err := d.Store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey([]byte(checkID), "decision"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			evt, err = DecodeDecision(val)
			return err
		})
	})
	return evt, err
}

// Find decisions by outcome, oldest first
func (d *DecisionLog) Find(outcome webshield.Outcome, limit int64) ([]*webshield.DecisionEvent, error) {
	if d.Store == nil {
		return nil, ErrNotInitialized
	}

	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	events := make([]*webshield.DecisionEvent, 0)
	err := d.Store.View(func(txn *badger.Txn) error {
		// ids come back in key order, so every match is loaded and sorted
		// before the limit applies
		ids, err := OutcomeIterator(txn, outcome, 0)
		if err != nil {
			return err
		}

		for _, id := range ids {
			item, err := txn.Get(MakeKey(id, "decision"))
			if err != nil {
				return errors.Wrapf(err, "decision %s", id)
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			evt, err := DecodeDecision(val)
			if err != nil {
				return err
			}
			events = append(events, evt)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].At.Before(events[j].At) })
	if int64(len(events)) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Count of decisions recorded
func (d *DecisionLog) Count() int64 {
	return atomic.LoadInt64(&d.count)
}

// Close the store
func (d *DecisionLog) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
