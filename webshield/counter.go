package webshield

import "sync/atomic"

var gateCounter int64

// GetGateID a global gate ID, used to correlate log lines
func GetGateID() int64 {
	return atomic.AddInt64(&gateCounter, 1)
}
