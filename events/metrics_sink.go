package events

import "github.com/prometheus/client_golang/prometheus"

// MetricsSink wraps a handful of Prometheus collectors counting order and
// trade activity (spec.md §4.7 "metrics counter"), namespaced the way the
// corpus's own metrics package does (namespace/subsystem/name).
type MetricsSink struct {
	ordersAccepted prometheus.Counter
	ordersRejected prometheus.Counter
	ordersFilled   prometheus.Counter
	ordersAdded    prometheus.Counter
	ordersCancelled prometheus.Counter
	tradesTotal    prometheus.Counter
	tradeNotional  prometheus.Histogram
}

// NewMetricsSink builds and registers its collectors against reg. Passing
// a fresh prometheus.NewRegistry() keeps tests isolated from the global
// default registerer.
func NewMetricsSink(reg prometheus.Registerer, instrument string) *MetricsSink {
	s := &MetricsSink{
		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "orders_accepted_total", Help: "Orders accepted.",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "orders_rejected_total", Help: "Orders rejected.",
		}),
		ordersFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "orders_filled_total", Help: "Orders fully filled.",
		}),
		ordersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "orders_added_to_book_total", Help: "Orders rested on the book.",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "orders_cancelled_total", Help: "Orders cancelled.",
		}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "trades_total", Help: "Trades executed.",
		}),
		tradeNotional: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchcore", Subsystem: instrument, Name: "trade_notional", Help: "Executed trade notional value.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 10),
		}),
	}
	for _, c := range []prometheus.Collector{
		s.ordersAccepted, s.ordersRejected, s.ordersFilled, s.ordersAdded, s.ordersCancelled, s.tradesTotal, s.tradeNotional,
	} {
		reg.MustRegister(c)
	}
	return s
}

func (s *MetricsSink) OnEvents(batch []Event) {
	loopOnEvents(batch, s.onEvent)
}

func (s *MetricsSink) onEvent(e Event) {
	switch e.Kind {
	case KindOrderAccepted:
		s.ordersAccepted.Inc()
	case KindOrderRejected:
		s.ordersRejected.Inc()
	case KindOrderFilled:
		s.ordersFilled.Inc()
	case KindOrderAddedToBook:
		s.ordersAdded.Inc()
	case KindOrderCancelled:
		s.ordersCancelled.Inc()
	case KindOrderMatched:
		s.tradesTotal.Inc()
		if notional, err := e.Trade.Notional(); err == nil {
			whole := float64(notional.RawValue()) / 1e9
			s.tradeNotional.Observe(whole)
		}
	}
}
