package store

import (
	badger "github.com/dgraph-io/badger/v2"
	"gitlab.com/webshield/webshield"
)

// OutcomeIterator returns check ids whose decision had outcome in key order.
// A limit of 0 or less returns every match.
func OutcomeIterator(txn *badger.Txn, outcome webshield.Outcome, limit int64) ([][]byte, error) {
	ids := make([][]byte, 0)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte("outcome:")})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if limit > 0 && int64(len(ids)) == limit {
			break
		}

		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}

		got, err := DecodeOutcome(val)
		if err != nil {
			return nil, err
		}

		if got == outcome {
			ids = append(ids, GetID(item.KeyCopy(nil)))
		}
	}
	return ids, nil
}
