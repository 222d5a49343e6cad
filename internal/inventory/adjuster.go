// Package inventory is the single doorway through which order flows touch
// catalog stock. Checkout decrements through it, cancellation restocks
// through it; nothing else mutates a variation's quantity.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
)

// VariationStore is the slice of the repository the adjuster needs.
type VariationStore interface {
	AddVariationStock(ctx context.Context, id string, qty int) error
	DecrementVariationStock(ctx context.Context, id string, qty int) error
	CreateVariation(ctx context.Context, variation domain.ProductVariation) (*domain.ProductVariation, error)
}

type Adjuster struct {
	variations VariationStore
}

func NewAdjuster(variations VariationStore) *Adjuster {
	return &Adjuster{variations: variations}
}

// Restock adds quantity back to a catalog variation. If the catalog row was
// deleted since order time, it is recreated from the order's immutable
// snapshot with quantity set to the restocked amount.
func (a *Adjuster) Restock(ctx context.Context, instr domain.RestockInstruction) error {
	if instr.Quantity < 1 {
		return nil
	}

	err := a.variations.AddVariationStock(ctx, instr.VariationID, instr.Quantity)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	_, err = a.variations.CreateVariation(ctx, domain.ProductVariation{
		ID:             instr.VariationID,
		ProductID:      instr.ProductID,
		ProductName:    instr.ProductName,
		Category:       instr.Category,
		Quantity:       instr.Quantity,
		CostPriceCents: instr.Snapshot.CostPriceCents,
		SalePriceCents: instr.Snapshot.SalePriceCents,
		MfgDate:        instr.Snapshot.MfgDate,
		ExpDate:        instr.Snapshot.ExpDate,
		Color:          instr.Snapshot.Color,
		Size:           instr.Snapshot.Size,
		WeightGrams:    instr.Snapshot.WeightGrams,
		Active:         true,
	})
	if err != nil {
		return fmt.Errorf("recreate variation %s: %w", instr.VariationID, err)
	}
	return nil
}

// Decrement removes sold quantity from catalog stock. The store rejects any
// decrement that would push the quantity negative.
func (a *Adjuster) Decrement(ctx context.Context, variationID string, qty int) error {
	if qty < 1 {
		return store.ErrInvalidOrder
	}
	return a.variations.DecrementVariationStock(ctx, variationID, qty)
}
