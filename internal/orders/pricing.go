package orders

// Calculator prices a resolved cart. All arithmetic is integer cents; the
// tax rate is carried in basis points so 18% is exactly 1800.
type Calculator struct {
	TaxRateBps    int
	ShippingCents map[ShippingMethod]int
}

type Totals struct {
	SubtotalCents int
	TaxCents      int
	ShippingCents int
	TotalCents    int
}

// Price is a pure function of its inputs: no catalog reads, no side effects.
func (c *Calculator) Price(lines []LineItem, method ShippingMethod) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyCart
	}

	var t Totals
	for _, l := range lines {
		t.SubtotalCents += l.SubtotalCents
	}
	t.TaxCents = roundHalfUpBps(t.SubtotalCents, c.TaxRateBps)
	t.ShippingCents = c.ShippingCents[method]
	t.TotalCents = t.SubtotalCents + t.TaxCents + t.ShippingCents
	return t, nil
}

// roundHalfUpBps computes amount*bps/10000 rounded half-up, in integers.
func roundHalfUpBps(amount, bps int) int {
	return (amount*bps + 5000) / 10000
}
