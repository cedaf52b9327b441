// Package engine implements the matching engine facade of spec.md §4.6:
// submit/cancel/snapshot, validation, sequence assignment, TIF handling,
// and event publication, built on internal/orderbook and
// internal/matching.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/events"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/matching"
	"github.com/orderflow/matchcore/internal/orderbook"
	"golang.org/x/sync/errgroup"
)

// ErrEngineClosed is returned by SubmitOrder/CancelOrder once Close has
// been called.
var ErrEngineClosed = errors.New("engine: closed")

// Engine is one single-instrument matching engine instance (spec.md §2
// "Control flow of a submission"). It exposes no exported mutex: every
// mutating operation funnels through a single dispatcher goroutine reading
// from submissions, the "(a) lock-free submission queue" option spec.md §5
// names as preferred for determinism, realized here as a buffered channel
// plus one goroutine.
type Engine struct {
	cfg    domain.Config
	policy matching.Policy
	sink   events.Sink

	bids *orderbook.Side
	asks *orderbook.Side

	indexMu sync.RWMutex
	index   map[uuid.UUID]*domain.Order

	sequence atomic.Int64

	submissions chan submissionRequest
	cancels     chan cancelRequest

	group  *errgroup.Group
	cancel context.CancelFunc
}

type submissionRequest struct {
	order *domain.Order
	done  chan []events.Event
}

type cancelRequest struct {
	id   uuid.UUID
	done chan *events.Event
}

// New constructs an Engine and starts its dispatcher goroutine, supervised
// by an errgroup so Close can join it deterministically (spec.md §4.6
// expansion, golang.org/x/sync/errgroup).
func New(cfg domain.Config, sink events.Sink) *Engine {
	if sink == nil {
		sink = events.NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	e := &Engine{
		cfg:         cfg,
		policy:      matching.New(cfg.MatchingAlgorithm),
		sink:        sink,
		bids:        orderbook.NewSide(domain.SideBuy),
		asks:        orderbook.NewSide(domain.SideSell),
		index:       make(map[uuid.UUID]*domain.Order),
		submissions: make(chan submissionRequest, 1024),
		cancels:     make(chan cancelRequest, 1024),
		group:       g,
		cancel:      cancel,
	}
	g.Go(func() error { return e.dispatchLoop(ctx) })
	return e
}

// Close stops the dispatcher and waits for it to drain, joining the
// errgroup it was launched under.
func (e *Engine) Close() error {
	e.cancel()
	return e.group.Wait()
}

// dispatchLoop is the single serialization point spec.md §5 requires:
// one taker's match_order never interleaves another's on this engine.
func (e *Engine) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-e.submissions:
			req.done <- e.processSubmission(req.order)
		case req := <-e.cancels:
			req.done <- e.processCancel(req.id)
		}
	}
}

// SubmitOrder enqueues order for processing by the dispatcher and blocks
// until it has been fully processed, returning the event batch spec.md
// §4.6 specifies (also published to the configured sink as a side effect).
func (e *Engine) SubmitOrder(ctx context.Context, order *domain.Order) ([]events.Event, error) {
	req := submissionRequest{order: order, done: make(chan []events.Event, 1)}
	select {
	case e.submissions <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case evs := <-req.done:
		return evs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelOrder looks up id and attempts to cancel it (spec.md §4.6
// cancel_order); returns nil, nil if no such order exists or it was
// already terminal — cancellation is idempotent.
func (e *Engine) CancelOrder(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	req := cancelRequest{id: id, done: make(chan *events.Event, 1)}
	select {
	case e.cancels <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case ev := <-req.done:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot composes a depth view from both sides (spec.md §4.6
// snapshot(depth)). DarkPool order books return empty ladders; Hybrid
// books return only visible quantities — enforcement is entirely at
// snapshot time (spec.md §6.1).
func (e *Engine) Snapshot(depth int) domain.Snapshot {
	snap := domain.Snapshot{Instrument: e.cfg.Instrument}
	if e.cfg.OrderBookType == domain.DarkPool {
		return snap
	}

	if e.cfg.OrderBookType == domain.Hybrid {
		snap.Bids = e.bids.DepthVisible(depth)
		snap.Asks = e.asks.DepthVisible(depth)
	} else {
		snap.Bids = e.bids.Depth(depth)
		snap.Asks = e.asks.Depth(depth)
	}

	if bb, ok := snap.BestBid(); ok {
		if ba, ok := snap.BestAsk(); ok {
			if spread, err := ba.CheckedSub(bb); err == nil {
				snap.Spread = &spread
			}
			if sum, err := bb.CheckedAdd(ba); err == nil {
				if mid, err := sum.CheckedDivInt(2); err == nil {
					snap.Mid = &mid
				}
			}
		}
	}
	return snap
}

func (e *Engine) sideFor(side domain.Side) *orderbook.Side {
	if side == domain.SideBuy {
		return e.bids
	}
	return e.asks
}

func (e *Engine) nextSequence() int64 {
	return e.sequence.Add(1)
}

func now() time.Time { return time.Now() }
