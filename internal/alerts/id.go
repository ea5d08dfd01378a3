package alerts

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// idSource issues time-sortable IDs. Monotonic entropy keeps IDs minted within
// the same millisecond increasing. Not safe for concurrent use.
type idSource struct {
	entropy *ulid.MonotonicEntropy
}

func newIDSource(seed int64) *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

func (s *idSource) next(at time.Time) string {
	id, err := ulid.New(ulid.Timestamp(at.UTC()), s.entropy)
	if err != nil {
		// monotonic overflow within one millisecond; fall back to fresh entropy
		return ulid.Make().String()
	}
	return id.String()
}
