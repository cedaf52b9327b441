package events

import "go.uber.org/zap"

// LogSink renders every event as one structured log line, the "structured
// log" implementation spec.md §4.7 names.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wraps an existing logger; callers own its lifecycle (Sync).
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) OnEvents(batch []Event) {
	loopOnEvents(batch, s.onEvent)
}

func (s *LogSink) onEvent(e Event) {
	fields := []zap.Field{
		zap.String("kind", e.Kind.String()),
		zap.Time("ts", e.Timestamp),
	}
	switch e.Kind {
	case KindOrderReceived, KindOrderAccepted, KindOrderCancelled, KindOrderExpired:
		fields = append(fields, zap.Stringer("order_id", e.OrderID))
	case KindOrderRejected:
		fields = append(fields, zap.Stringer("order_id", e.OrderID), zap.Error(e.Reason))
	case KindOrderMatched:
		fields = append(fields, zap.Stringer("trade_id", e.Trade.ID),
			zap.Stringer("maker_id", e.Trade.MakerOrderID),
			zap.Stringer("taker_id", e.Trade.TakerOrderID),
			zap.String("price", e.Trade.Price.String()),
			zap.String("qty", e.Trade.Quantity.String()))
	case KindOrderPartiallyFilled:
		fields = append(fields, zap.Stringer("order_id", e.OrderID),
			zap.String("filled", e.Filled.String()), zap.String("remaining", e.Remaining.String()))
	case KindOrderFilled:
		fields = append(fields, zap.Stringer("order_id", e.OrderID), zap.String("total_filled", e.TotalFilled.String()))
	case KindOrderAddedToBook:
		fields = append(fields, zap.Stringer("order_id", e.OrderID),
			zap.String("price", e.Price.String()), zap.String("qty", e.Quantity.String()))
	}
	s.logger.Info("matchcore event", fields...)
}
