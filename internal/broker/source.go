// Package broker supplies account snapshots from the trading terminal bridge or
// from snapshot files.
package broker

import (
	"context"
	"errors"

	"github.com/wonny/riskdesk/internal/contracts"
)

// ErrNotConnected is returned when the terminal cannot be reached
var ErrNotConnected = errors.New("broker: terminal not connected")

// DataSource produces one snapshot per refresh cycle.
// A source that cannot reach its terminal returns a disconnected snapshot together
// with an error wrapping ErrNotConnected.
type DataSource interface {
	Snapshot(ctx context.Context) (*contracts.Snapshot, error)
}

// Disconnected is the snapshot returned when the terminal is unreachable
func Disconnected() *contracts.Snapshot {
	return &contracts.Snapshot{Connected: false}
}
