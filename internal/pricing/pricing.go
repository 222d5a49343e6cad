// Package pricing holds the pure order math: subtotal/vat/tax/round-off
// breakdowns and the profit-bounded discount rule. Nothing here touches the
// store, so checkout and return recomputation share the exact same code path.
package pricing

import (
	"math"

	"tokopos/backend/internal/domain"
)

type Totals struct {
	SubTotalCents       int64
	DiscountCents       int64
	VatCents            int64
	TaxCents            int64
	DeliveryChargeCents int64
	RoundOffCents       int64
	GrandTotalCents     int64
	ChangeCents         int64
}

// EffectiveUnitPrice is the price a unit actually sells for: the per-unit
// promotional price when one was applied at sale time, the sale price
// otherwise.
func EffectiveUnitPrice(v domain.OrderVariation) int64 {
	if v.SaleDiscountPriceCents > 0 {
		return v.SaleDiscountPriceCents
	}
	return v.SalePriceCents
}

func Subtotal(products []domain.OrderProduct) int64 {
	total := int64(0)
	for _, p := range products {
		for _, v := range p.Variations {
			total += EffectiveUnitPrice(v) * int64(v.Quantity)
		}
	}
	return total
}

// MaxProfitDiscount is the ceiling any redeem amount can reach: the summed
// realizable profit across all lines. Lines already selling at or below cost
// contribute nothing.
func MaxProfitDiscount(products []domain.OrderProduct) int64 {
	total := int64(0)
	for _, p := range products {
		for _, v := range p.Variations {
			profit := EffectiveUnitPrice(v) - v.CostPriceCents
			if profit < 1 {
				continue
			}
			total += profit * int64(v.Quantity)
		}
	}
	return total
}

// ResolveDiscount clamps a requested redeem amount to the realizable profit
// of the given lines. Out-of-range requests are adjusted, never rejected:
// negatives resolve to zero and excesses report clamped=true.
func ResolveDiscount(products []domain.OrderProduct, requestedCents int64) (appliedCents int64, clamped bool) {
	if requestedCents < 0 {
		return 0, false
	}
	limit := MaxProfitDiscount(products)
	if requestedCents > limit {
		return limit, true
	}
	return requestedCents, false
}

func chargeAmount(c domain.Charge, subTotalCents int64) int64 {
	switch c.Type {
	case domain.ChargeTypePercentage:
		percent := c.Percent
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		return int64(math.Round(float64(subTotalCents) * percent / 100))
	case domain.ChargeTypeFixed:
		if c.AmountCents < 0 {
			return 0
		}
		return c.AmountCents
	default:
		return 0
	}
}

// RoundToUnit rounds an amount in cents to the nearest whole currency unit.
func RoundToUnit(cents int64) int64 {
	return int64(math.Round(float64(cents)/100)) * 100
}

// ComputeTotals turns snapshot lines plus discount/vat/tax/delivery
// configuration into the full price breakdown. payableCents is what the
// customer tendered; only ChangeCents depends on it.
func ComputeTotals(products []domain.OrderProduct, discount, vat, tax domain.Charge, deliveryChargeCents int64, roundOff bool, payableCents int64) Totals {
	t := Totals{
		SubTotalCents:       Subtotal(products),
		DeliveryChargeCents: deliveryChargeCents,
	}
	t.DiscountCents = chargeAmount(discount, t.SubTotalCents)
	t.VatCents = chargeAmount(vat, t.SubTotalCents)
	t.TaxCents = chargeAmount(tax, t.SubTotalCents)

	preRound := t.SubTotalCents + t.VatCents + t.TaxCents + t.DeliveryChargeCents - t.DiscountCents
	if roundOff {
		t.GrandTotalCents = RoundToUnit(preRound)
		t.RoundOffCents = t.GrandTotalCents - preRound
	} else {
		t.GrandTotalCents = preRound
	}

	if payableCents > t.GrandTotalCents {
		t.ChangeCents = payableCents - t.GrandTotalCents
	}
	return t
}
