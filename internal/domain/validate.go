package domain

// ValidateOrder runs the submission-time checks of spec.md §4.6 step 2 /
// §7. A violation is reported to the caller as an error, which the engine
// turns into an OrderRejected event — it never panics or unwinds.
func ValidateOrder(o *Order, cfg Config) error {
	if !o.OriginalQty.IsPositive() {
		return ErrNonPositiveQuantity
	}

	switch o.Type {
	case OrderTypeLimit:
		if o.Price == nil || !o.Price.IsPositive() {
			return ErrLimitWithoutPrice
		}
	case OrderTypeStopLimit:
		if o.TriggerPrice == nil || !o.TriggerPrice.IsPositive() {
			return ErrLimitWithoutPrice
		}
		if o.Price != nil && !o.Price.IsPositive() {
			return ErrNonPositivePrice
		}
	case OrderTypeMarket:
		if o.TIF == GoodTillCancel {
			return ErrMarketOrderGTC
		}
	}

	if o.Price != nil {
		if !o.Price.IsPositive() {
			return ErrNonPositivePrice
		}
		if cfg.TickSize != nil && !isMultipleOf(o.Price.RawValue(), cfg.TickSize.RawValue()) {
			return ErrTickSizeViolation
		}
	}

	if cfg.LotSize != nil && !isMultipleOf(o.OriginalQty.RawValue(), cfg.LotSize.RawValue()) {
		return ErrLotSizeViolation
	}

	return nil
}

func isMultipleOf(value, unit int64) bool {
	if unit <= 0 {
		return true
	}
	return value%unit == 0
}
