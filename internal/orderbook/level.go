// Package orderbook implements the concurrent sorted price ladder of FIFO
// queues described in spec.md §3.4/§4.3: many concurrent readers (depth,
// best price) alongside in-place mutation on the match path.
package orderbook

import (
	"sync"
	"sync/atomic"

	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
)

// PriceLevel holds every resting order at one price on one side: a FIFO
// queue plus an atomic aggregate quantity. The aggregate is maintained by
// explicit add/subtract calls from the match path and is only guaranteed
// to equal the true sum of queued remainders at match-step boundaries
// (spec.md §3.4, §9).
type PriceLevel struct {
	priceRaw int64

	mu    sync.Mutex
	queue []*domain.Order

	aggregate atomic.Int64
}

func newPriceLevel(priceRaw int64) *PriceLevel {
	return &PriceLevel{priceRaw: priceRaw}
}

// Price returns the level's price.
func (l *PriceLevel) Price() domain.Price {
	return numeric.FromRaw[numeric.S9](l.priceRaw)
}

// Aggregate returns the O(1) eventually-consistent aggregate quantity.
func (l *PriceLevel) Aggregate() domain.Quantity {
	return numeric.FromRaw[numeric.S9](l.aggregate.Load())
}

// Len reports the live queue length under lock. It is not used on the hot
// match path (the empty-level sweep uses IsEmpty).
func (l *PriceLevel) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// IsEmpty reports whether the queue is currently empty. A level can be
// transiently empty with a nonzero aggregate (or vice versa) between a
// Drain and its matching Requeue — snapshot consumers must tolerate both
// as "about to be swept" (spec.md §4.3).
func (l *PriceLevel) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) == 0
}

// PushBack rests a new order at the tail of the queue and adds its
// remaining quantity to the aggregate.
func (l *PriceLevel) PushBack(o *domain.Order) {
	l.mu.Lock()
	l.queue = append(l.queue, o)
	l.mu.Unlock()
	l.aggregate.Add(o.Remaining().RawValue())
}

// PushFront restores an order to the head of the queue without losing
// priority — used by the FIFO policy (spec.md §4.5.1) when a partially
// filled maker must keep its place at the front of the level.
func (l *PriceLevel) PushFront(o *domain.Order) {
	l.mu.Lock()
	l.queue = append([]*domain.Order{o}, l.queue...)
	l.mu.Unlock()
}

// PopFront removes and returns the order at the head of the queue.
func (l *PriceLevel) PopFront() (*domain.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	o := l.queue[0]
	l.queue = l.queue[1:]
	return o, true
}

// PeekFront returns the head order without removing it.
func (l *PriceLevel) PeekFront() (*domain.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	return l.queue[0], true
}

// Drain atomically clears the queue and returns its former contents, in
// FIFO order, for a policy to examine off-lock. The aggregate is left
// untouched by Drain; callers must call SubtractAggregate (or Requeue,
// which recomputes it) once the allocation step settles.
func (l *PriceLevel) Drain() []*domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	out := l.queue
	l.queue = nil
	return out
}

// Requeue replaces the queue contents (in the order given) and
// recomputes the aggregate as the sum of each order's live remaining
// quantity — the lazy-recompute alternative spec.md §9 explicitly allows
// in place of incremental add/subtract bookkeeping.
func (l *PriceLevel) Requeue(orders []*domain.Order) {
	sum := int64(0)
	for _, o := range orders {
		sum += o.Remaining().RawValue()
	}
	l.mu.Lock()
	l.queue = orders
	l.mu.Unlock()
	l.aggregate.Store(sum)
}

// SubtractAggregate removes q from the aggregate counter directly,
// avoiding a full Requeue recompute on the common per-fill path.
func (l *PriceLevel) SubtractAggregate(q domain.Quantity) {
	l.aggregate.Add(-q.RawValue())
}

// VisibleAggregate sums each resting order's VisibleQuantity rather than
// its raw remaining quantity, for Hybrid order books whose snapshot must
// not reveal any iceberg-hidden remainder (spec.md §6.1).
func (l *PriceLevel) VisibleAggregate() domain.Quantity {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum := int64(0)
	for _, o := range l.queue {
		sum += o.VisibleQuantity().RawValue()
	}
	return numeric.FromRaw[numeric.S9](sum)
}

// Snapshot returns a shallow copy of the current queue, in FIFO order,
// for read-only inspection (tests). Depth composition does not use it; it
// reads Aggregate or VisibleAggregate. Safe to call concurrently with
// matching.
func (l *PriceLevel) Snapshot() []*domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.Order, len(l.queue))
	copy(out, l.queue)
	return out
}
