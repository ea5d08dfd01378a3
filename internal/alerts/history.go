package alerts

// Buffer capacities
const (
	MaxAlerts        = 50
	MaxOptimizations = 20
)

// ring keeps the most recent capacity items, oldest evicted first
type ring[T any] struct {
	items    []T
	capacity int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{capacity: capacity}
}

func (r *ring[T]) push(v ...T) {
	r.items = append(r.items, v...)
	if over := len(r.items) - r.capacity; over > 0 {
		r.items = append([]T(nil), r.items[over:]...)
	}
}

// last returns a copy of the newest n items in insertion order; n ≤ 0 returns all
func (r *ring[T]) last(n int) []T {
	items := r.items
	if n > 0 && n < len(items) {
		items = items[len(items)-n:]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func (r *ring[T]) clear() {
	r.items = nil
}

func (r *ring[T]) len() int {
	return len(r.items)
}
