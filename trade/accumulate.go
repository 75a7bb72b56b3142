package trade

// AddFill folds f into the aggregate fields of t and appends it to t.Fills.
//
// A fill on t.Side adds to the position and moves EntryPrice to the
// quantity-weighted average; a fill on the opposite side does the same for
// ExitPrice and ExitQuantity. Commission always accumulates. Once an exit
// exists the realized P&L is
//
//	(ExitPrice - EntryPrice) * sign * ExitQuantity - Commission
//
// with sign -1 for SHORT. When the exit quantity reaches the entry quantity
// the exit date and time are set to those of f.
//
// Invalid fills, and exits larger than the open quantity, are rejected with
// an *InvalidFillError and leave t untouched. AddFill does not synchronise;
// see Locks.
func AddFill(t *Trade, f Fill) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if !t.Side.Valid() {
		return invalid("trade.side", t.Side, "must be LONG or SHORT")
	}
	f.Date = Date(f.Date)
	entering := f.Side == t.Side
	if !entering && f.Quantity > t.OpenQuantity() && !sameQuantity(f.Quantity, t.OpenQuantity()) {
		return invalid("quantity", f.Quantity, "exceeds open quantity")
	}

	if t.EntryDate.IsZero() {
		t.EntryDate = f.Date
		tod := f.Time
		t.EntryTime = &tod
	}
	t.Commission += f.Commission

	if entering {
		t.EntryPrice = weighted(t.EntryPrice, t.EntryQuantity, f.Price, f.Quantity)
		t.EntryQuantity += f.Quantity
	} else {
		t.ExitPrice = weighted(t.ExitPrice, t.ExitQuantity, f.Price, f.Quantity)
		t.ExitQuantity += f.Quantity
	}

	if t.HasEntry() && t.HasExit() {
		t.RealizedPnL = (t.ExitPrice-t.EntryPrice)*t.Side.Sign()*t.ExitQuantity - t.Commission
	}

	if t.Closed() {
		t.ExitDate = f.Date
		tod := f.Time
		t.ExitTime = &tod
	}

	if f.TradeID == "" {
		f.TradeID = t.ID
	}
	t.Fills = append(t.Fills, f)
	return nil
}

func weighted(avg, qty, price, add float64) float64 {
	return (avg*qty + price*add) / (qty + add)
}
