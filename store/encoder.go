package store

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v4"
	"gitlab.com/webshield/webshield"
)

// MakeKey of a predicate and id
func MakeKey(id []byte, predicate string) []byte {
	key := []byte(predicate)
	key = append(key, byte(':'))
	key = append(key, id...)
	return key
}

// GetID of key from a pred:key
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:key
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// EncodeDecision event
func EncodeDecision(evt *webshield.DecisionEvent) ([]byte, error) {
	return msgpack.Marshal(evt)
}

// DecodeDecision event
func DecodeDecision(val []byte) (*webshield.DecisionEvent, error) {
	evt := &webshield.DecisionEvent{}
	if err := msgpack.Unmarshal(val, evt); err != nil {
		return nil, err
	}
	return evt, nil
}

// EncodeOutcome value
func EncodeOutcome(outcome webshield.Outcome) ([]byte, error) {
	return msgpack.Marshal(outcome)
}

// DecodeOutcome value
func DecodeOutcome(val []byte) (webshield.Outcome, error) {
	var outcome webshield.Outcome
	err := msgpack.Unmarshal(val, &outcome)
	return outcome, err
}
