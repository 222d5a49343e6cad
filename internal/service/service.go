package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tokopos/backend/internal/cache"
	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/inventory"
	"tokopos/backend/internal/pricing"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo       store.Repository
	adjuster   *inventory.Adjuster
	orderCache cache.OrderCache
	cacheTTL   time.Duration
}

func New(repo store.Repository, adjuster *inventory.Adjuster, orderCache cache.OrderCache, cacheTTL time.Duration) *Service {
	if orderCache == nil {
		orderCache = cache.NoopOrderCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Service{
		repo:       repo,
		adjuster:   adjuster,
		orderCache: orderCache,
		cacheTTL:   cacheTTL,
	}
}

func (s *Service) ListVariations(ctx context.Context) (domain.VariationListResponse, error) {
	variations, err := s.repo.ListVariations(ctx)
	if err != nil {
		return domain.VariationListResponse{}, err
	}
	return domain.VariationListResponse{Variations: variations}, nil
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusProcessing,
		domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
		return true
	}
	return false
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.OrderCreateResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.OrderCreateResponse{}, fmt.Errorf("authenticated user required")
	}

	if len(req.Products) == 0 {
		return domain.OrderCreateResponse{}, fmt.Errorf("%w: product list is required", store.ErrInvalidOrder)
	}
	if req.Status == "" {
		req.Status = domain.OrderStatusPending
	}
	if !isKnownOrderStatus(req.Status) || req.Status == domain.OrderStatusCancelled {
		return domain.OrderCreateResponse{}, fmt.Errorf("%w: unsupported order status %q", store.ErrInvalidOrder, req.Status)
	}
	if req.PayAmountCents < 0 || req.DeliveryChargeCents < 0 {
		return domain.OrderCreateResponse{}, store.ErrInvalidOrder
	}

	if req.IdempotencyKey != "" {
		if existing, err := s.repo.FindOrderByIdempotency(ctx, req.IdempotencyKey); err == nil {
			return domain.OrderCreateResponse{Order: *existing, Duplicate: true}, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.OrderCreateResponse{}, err
		}
	}

	variationIDs := make([]string, 0, len(req.Products))
	for _, sel := range req.Products {
		if sel.VariationID == "" || sel.SelectedQuantity < 1 || sel.DiscountPriceCents < 0 {
			return domain.OrderCreateResponse{}, store.ErrInvalidOrder
		}
		variationIDs = append(variationIDs, sel.VariationID)
	}

	catalog, err := s.repo.GetVariationsByIDs(ctx, variationIDs)
	if err != nil {
		return domain.OrderCreateResponse{}, err
	}

	products, err := buildSnapshots(req.Products, catalog)
	if err != nil {
		return domain.OrderCreateResponse{}, err
	}

	appliedRedeem, clamped := pricing.ResolveDiscount(products, req.RedeemAmountCents)
	totals := pricing.ComputeTotals(products,
		domain.Charge{Type: domain.ChargeTypeFixed, AmountCents: appliedRedeem},
		req.Vat, req.Tax, req.DeliveryChargeCents, req.RoundOff, req.PayAmountCents)

	appliedPay := req.PayAmountCents
	if appliedPay > totals.GrandTotalCents {
		appliedPay = totals.GrandTotalCents
	}

	now := time.Now().UTC()
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = xid.Code("ord")
	}
	order := domain.Order{
		ID:                  xid.New("ord"),
		Code:                code,
		IdempotencyKey:      req.IdempotencyKey,
		Products:            products,
		RedeemAmountCents:   appliedRedeem,
		VatAmountCents:      totals.VatCents,
		TaxAmountCents:      totals.TaxCents,
		DeliveryChargeCents: totals.DeliveryChargeCents,
		SubTotalCents:       totals.SubTotalCents,
		RoundOffCents:       totals.RoundOffCents,
		GrandTotalCents:     totals.GrandTotalCents,
		PayAmountCents:      appliedPay,
		DueAmountCents:      domain.DueAmount(totals.GrandTotalCents, appliedPay),
		PaymentMethodID:     req.PaymentMethodID,
		DeliveryZoneID:      req.DeliveryZoneID,
		CustomerID:          req.CustomerID,
		CouponID:            req.CouponID,
		Status:              req.Status,
		PaymentStatus:       domain.PaymentStatusFor(appliedPay, totals.GrandTotalCents),
		IsActive:            true,
		CreatedBy:           actor.Username,
		UpdatedBy:           actor.Username,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Stock is taken line by line; if any line fails, the lines already
	// taken are put back before reporting the error.
	decremented := make([]domain.RestockInstruction, 0, len(products))
	for _, p := range products {
		for _, v := range p.Variations {
			if err := s.adjuster.Decrement(ctx, v.VariationID, v.Quantity); err != nil {
				s.compensateRestocks(ctx, decremented)
				if errors.Is(err, store.ErrNotFound) {
					return domain.OrderCreateResponse{}, fmt.Errorf("%w: variation %s", store.ErrNotFound, v.VariationID)
				}
				return domain.OrderCreateResponse{}, err
			}
			decremented = append(decremented, restockInstruction(p, v, v.Quantity))
		}
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		s.compensateRestocks(ctx, decremented)
		if errors.Is(err, store.ErrDuplicate) && req.IdempotencyKey != "" {
			if existing, lookupErr := s.repo.FindOrderByIdempotency(ctx, req.IdempotencyKey); lookupErr == nil {
				return domain.OrderCreateResponse{Order: *existing, Duplicate: true}, nil
			}
		}
		return domain.OrderCreateResponse{}, err
	}

	s.logAudit(ctx, "order_create", "order", created.ID,
		fmt.Sprintf("code=%s,grand_total=%d,redeem=%d,clamped=%t,pay=%d",
			created.Code, created.GrandTotalCents, created.RedeemAmountCents, clamped, created.PayAmountCents))

	return domain.OrderCreateResponse{
		Order:           *created,
		ChangeCents:     totals.ChangeCents,
		RedeemClamped:   clamped,
		AppliedPayCents: appliedPay,
	}, nil
}

// buildSnapshots groups variation selections by product and freezes catalog
// prices and attributes onto order lines. Selections exceeding available
// stock are rejected here, before anything is decremented.
func buildSnapshots(selections []domain.OrderLineSelection, catalog map[string]domain.ProductVariation) ([]domain.OrderProduct, error) {
	products := make([]domain.OrderProduct, 0, len(selections))
	indexByProduct := make(map[string]int, len(selections))
	seenVariation := make(map[string]bool, len(selections))

	for _, sel := range selections {
		if seenVariation[sel.VariationID] {
			return nil, fmt.Errorf("%w: variation %s selected twice", store.ErrInvalidOrder, sel.VariationID)
		}
		seenVariation[sel.VariationID] = true

		v, exists := catalog[sel.VariationID]
		if !exists || !v.Active {
			return nil, fmt.Errorf("%w: variation %s unavailable", store.ErrInvalidOrder, sel.VariationID)
		}
		if sel.ProductID != "" && sel.ProductID != v.ProductID {
			return nil, fmt.Errorf("%w: variation %s does not belong to product %s", store.ErrInvalidOrder, sel.VariationID, sel.ProductID)
		}
		if sel.SelectedQuantity > v.Quantity {
			return nil, fmt.Errorf("%w: variation %s has %d in stock", store.ErrInsufficientStock, sel.VariationID, v.Quantity)
		}
		if sel.DiscountPriceCents >= v.SalePriceCents && sel.DiscountPriceCents != 0 {
			return nil, fmt.Errorf("%w: discount price must be below sale price", store.ErrInvalidOrder)
		}

		snapshot := domain.OrderVariation{
			VariationID:            v.ID,
			Quantity:               sel.SelectedQuantity,
			CostPriceCents:         v.CostPriceCents,
			SalePriceCents:         v.SalePriceCents,
			SaleDiscountPriceCents: sel.DiscountPriceCents,
			MfgDate:                v.MfgDate,
			ExpDate:                v.ExpDate,
			Color:                  v.Color,
			Size:                   v.Size,
			WeightGrams:            v.WeightGrams,
		}

		idx, exists := indexByProduct[v.ProductID]
		if !exists {
			products = append(products, domain.OrderProduct{
				ProductID:   v.ProductID,
				ProductName: v.ProductName,
				Category:    v.Category,
			})
			idx = len(products) - 1
			indexByProduct[v.ProductID] = idx
		}
		products[idx].Variations = append(products[idx].Variations, snapshot)
	}

	return products, nil
}

func restockInstruction(p domain.OrderProduct, v domain.OrderVariation, qty int) domain.RestockInstruction {
	return domain.RestockInstruction{
		VariationID: v.VariationID,
		Quantity:    qty,
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Category:    p.Category,
		Snapshot:    v,
	}
}

func (s *Service) compensateRestocks(ctx context.Context, instrs []domain.RestockInstruction) {
	for _, instr := range instrs {
		if err := s.adjuster.Restock(ctx, instr); err != nil {
			log.Printf("[service] WARN: failed to compensate stock for variation %s: %v", instr.VariationID, err)
		}
	}
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.OrderDetailResponse, error) {
	if orderID == "" {
		return domain.OrderDetailResponse{}, store.ErrInvalidOrder
	}

	if cached, hit, err := s.orderCache.Get(ctx, orderID); err == nil && hit {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: order cache read failed for %s: %v", orderID, err)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderDetailResponse{}, err
	}

	resp := domain.OrderDetailResponse{Order: *order}
	resp.CurrentInfo = s.currentInfo(ctx, order.Products)

	if err := s.orderCache.Set(ctx, orderID, &resp, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: order cache write failed for %s: %v", orderID, err)
	}

	return resp, nil
}

// currentInfo joins the live catalog state onto an order read. It is derived
// on every read and never written back onto the order.
func (s *Service) currentInfo(ctx context.Context, products []domain.OrderProduct) []domain.VariationCurrentInfo {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		for _, v := range p.Variations {
			ids = append(ids, v.VariationID)
		}
	}
	if len(ids) == 0 {
		return []domain.VariationCurrentInfo{}
	}

	catalog, err := s.repo.GetVariationsByIDs(ctx, ids)
	if err != nil {
		log.Printf("[service] WARN: current_info lookup failed: %v", err)
		catalog = map[string]domain.ProductVariation{}
	}

	info := make([]domain.VariationCurrentInfo, 0, len(ids))
	for _, id := range ids {
		v, exists := catalog[id]
		info = append(info, domain.VariationCurrentInfo{
			VariationID:    id,
			SalePriceCents: v.SalePriceCents,
			Quantity:       v.Quantity,
			Active:         v.Active,
			Found:          exists,
		})
	}
	return info
}

func (s *Service) ListOrders(ctx context.Context, filter store.OrderFilter) (domain.OrderListResponse, error) {
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return domain.OrderListResponse{}, err
	}
	return domain.OrderListResponse{Orders: orders}, nil
}

func (s *Service) ApplyPayment(ctx context.Context, orderID string, payCents int64) (domain.OrderUpdateResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.OrderUpdateResponse{}, fmt.Errorf("authenticated user required")
	}
	if orderID == "" || payCents < 1 {
		return domain.OrderUpdateResponse{}, fmt.Errorf("%w: pay amount must be positive", store.ErrInvalidOrder)
	}

	order, applied, err := s.repo.ApplyOrderPayment(ctx, orderID, payCents, actor.Username)
	if err != nil {
		return domain.OrderUpdateResponse{}, err
	}

	s.invalidateOrder(ctx, orderID)
	s.logAudit(ctx, "order_payment", "order", orderID,
		fmt.Sprintf("requested=%d,applied=%d,due=%d,payment_status=%s", payCents, applied, order.DueAmountCents, order.PaymentStatus))

	return domain.OrderUpdateResponse{
		Order:           *order,
		AppliedPayCents: applied,
		ChangeCents:     payCents - applied,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID string, status string) (domain.OrderUpdateResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.OrderUpdateResponse{}, fmt.Errorf("authenticated user required")
	}
	if !isKnownOrderStatus(status) {
		return domain.OrderUpdateResponse{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidOrder, status)
	}
	if status == domain.OrderStatusCancelled {
		return s.CancelOrder(ctx, orderID)
	}

	current, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderUpdateResponse{}, err
	}
	if current.Status == domain.OrderStatusCancelled {
		return domain.OrderUpdateResponse{}, fmt.Errorf("%w: cancelled orders cannot change status", store.ErrInvalidOrder)
	}

	order, err := s.repo.UpdateOrderStatus(ctx, orderID, status, actor.Username)
	if err != nil {
		return domain.OrderUpdateResponse{}, err
	}

	s.invalidateOrder(ctx, orderID)
	s.logAudit(ctx, "order_status", "order", orderID, fmt.Sprintf("status=%s", status))

	return domain.OrderUpdateResponse{Order: *order}, nil
}

// CancelOrder puts every ordered unit back into the catalog and marks the
// order cancelled. Cancelling twice is a no-op; stock is restocked once.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (domain.OrderUpdateResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.OrderUpdateResponse{}, fmt.Errorf("admin role required")
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderUpdateResponse{}, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return domain.OrderUpdateResponse{Order: *order}, nil
	}

	for _, p := range order.Products {
		for _, v := range p.Variations {
			if err := s.adjuster.Restock(ctx, restockInstruction(p, v, v.Quantity)); err != nil {
				return domain.OrderUpdateResponse{}, fmt.Errorf("failed to process cancellation: %w", err)
			}
		}
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCancelled, actor.Username)
	if err != nil {
		return domain.OrderUpdateResponse{}, fmt.Errorf("failed to process cancellation: %w", err)
	}

	s.invalidateOrder(ctx, orderID)
	s.logAudit(ctx, "order_cancel", "order", orderID, fmt.Sprintf("code=%s", updated.Code))

	return domain.OrderUpdateResponse{Order: *updated}, nil
}

// ProcessReturn reverses part of an order: it restocks the returned units,
// shrinks the order's totals through the same pricing rules used at
// checkout, and records an immutable return. The store applies the whole
// operation atomically.
func (s *Service) ProcessReturn(ctx context.Context, orderID string, req domain.OrderReturnRequest) (domain.OrderReturnResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.OrderReturnResponse{}, fmt.Errorf("admin role required")
	}
	if len(req.Products) == 0 {
		return domain.OrderReturnResponse{}, fmt.Errorf("%w: return product list is required", store.ErrInvalidOrder)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderReturnResponse{}, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return domain.OrderReturnResponse{}, fmt.Errorf("%w: cancelled orders cannot be returned", store.ErrInvalidOrder)
	}

	if req.IdempotencyKey != "" {
		if existing, err := s.repo.FindReturnByIdempotency(ctx, orderID, req.IdempotencyKey); err == nil {
			return s.replayReturn(ctx, orderID, existing)
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.OrderReturnResponse{}, err
		}
	}

	returnQty, err := collectReturnQuantities(req.Products)
	if err != nil {
		return domain.OrderReturnResponse{}, err
	}

	purified, returned, restocks, err := purifyOrderLines(order.Products, returnQty)
	if err != nil {
		return domain.OrderReturnResponse{}, err
	}
	if len(restocks) == 0 {
		return domain.OrderReturnResponse{}, fmt.Errorf("%w: nothing to return", store.ErrInvalidOrder)
	}

	appliedRedeem, _ := pricing.ResolveDiscount(purified, req.RedeemAmountCents)
	subTotal := pricing.Subtotal(purified)
	grandTotal := subTotal + order.VatAmountCents + order.TaxAmountCents + order.DeliveryChargeCents - appliedRedeem

	// A non-zero recorded round-off means the order was created with
	// round-to-unit pricing; the recomputed total keeps that behavior.
	roundOff := int64(0)
	if order.RoundOffCents != 0 {
		rounded := pricing.RoundToUnit(grandTotal)
		roundOff = rounded - grandTotal
		grandTotal = rounded
	}

	newPay := order.PayAmountCents
	if newPay > grandTotal {
		newPay = grandTotal
	}
	refundDue := order.PayAmountCents - newPay

	updated := *order
	updated.Products = purified
	updated.RedeemAmountCents = appliedRedeem
	updated.SubTotalCents = subTotal
	updated.RoundOffCents = roundOff
	updated.GrandTotalCents = grandTotal
	updated.PayAmountCents = newPay
	updated.DueAmountCents = domain.DueAmount(grandTotal, newPay)
	updated.PaymentStatus = domain.PaymentStatusFor(newPay, grandTotal)
	updated.UpdatedBy = actor.Username

	ret := domain.OrderReturn{
		ID:             xid.New("ret"),
		Code:           xid.Code("ret"),
		OrderID:        orderID,
		IdempotencyKey: req.IdempotencyKey,
		Products:       returned,
		RefundDueCents: refundDue,
		CreatedBy:      actor.Username,
		CreatedAt:      time.Now().UTC(),
	}

	created, err := s.repo.ApplyOrderReturn(ctx, updated, ret, restocks)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) && req.IdempotencyKey != "" {
			if existing, lookupErr := s.repo.FindReturnByIdempotency(ctx, orderID, req.IdempotencyKey); lookupErr == nil {
				return s.replayReturn(ctx, orderID, existing)
			}
		}
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidOrder) {
			return domain.OrderReturnResponse{}, err
		}
		return domain.OrderReturnResponse{}, fmt.Errorf("failed to process return: %w", err)
	}

	s.invalidateOrder(ctx, orderID)
	s.logAudit(ctx, "order_return", "order_return", created.ID,
		fmt.Sprintf("order=%s,code=%s,redeem=%d,refund_due=%d", orderID, created.Code, appliedRedeem, refundDue))

	refreshed, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderReturnResponse{}, fmt.Errorf("failed to process return: %w", err)
	}

	return domain.OrderReturnResponse{Order: *refreshed, OrderReturn: *created}, nil
}

func (s *Service) replayReturn(ctx context.Context, orderID string, existing *domain.OrderReturn) (domain.OrderReturnResponse, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.OrderReturnResponse{}, err
	}
	return domain.OrderReturnResponse{Order: *order, OrderReturn: *existing, Duplicate: true}, nil
}

func collectReturnQuantities(selections []domain.ReturnProductSelection) (map[string]int, error) {
	byVariation := make(map[string]int)
	for _, p := range selections {
		for _, v := range p.Variations {
			if v.VariationID == "" || v.ReturnQuantity < 1 {
				return nil, fmt.Errorf("%w: return quantity must be positive", store.ErrInvalidOrder)
			}
			byVariation[v.VariationID] += v.ReturnQuantity
		}
	}
	if len(byVariation) == 0 {
		return nil, fmt.Errorf("%w: return product list is required", store.ErrInvalidOrder)
	}
	return byVariation, nil
}

// purifyOrderLines subtracts returned quantities from the order snapshot.
// Variations drained to zero are dropped, as are products with no remaining
// variations. Any line touched by a return loses its per-unit discount
// attribution, on both the remaining and the returned side.
func purifyOrderLines(products []domain.OrderProduct, returnQty map[string]int) (purified, returned []domain.OrderProduct, restocks []domain.RestockInstruction, err error) {
	consumed := make(map[string]bool, len(returnQty))

	for _, p := range products {
		remaining := domain.OrderProduct{ProductID: p.ProductID, ProductName: p.ProductName, Category: p.Category}
		returnedProduct := domain.OrderProduct{ProductID: p.ProductID, ProductName: p.ProductName, Category: p.Category}

		for _, v := range p.Variations {
			qty, requested := returnQty[v.VariationID]
			if !requested {
				remaining.Variations = append(remaining.Variations, v)
				continue
			}
			consumed[v.VariationID] = true
			if qty > v.Quantity {
				return nil, nil, nil, fmt.Errorf("%w: return quantity %d exceeds ordered quantity %d for variation %s",
					store.ErrInvalidOrder, qty, v.Quantity, v.VariationID)
			}

			returnedLine := v
			returnedLine.Quantity = qty
			returnedLine.SaleDiscountPriceCents = 0
			returnedProduct.Variations = append(returnedProduct.Variations, returnedLine)
			restocks = append(restocks, restockInstruction(p, v, qty))

			if left := v.Quantity - qty; left > 0 {
				remainingLine := v
				remainingLine.Quantity = left
				remainingLine.SaleDiscountPriceCents = 0
				remaining.Variations = append(remaining.Variations, remainingLine)
			}
		}

		if len(remaining.Variations) > 0 {
			purified = append(purified, remaining)
		}
		if len(returnedProduct.Variations) > 0 {
			returned = append(returned, returnedProduct)
		}
	}

	for id := range returnQty {
		if !consumed[id] {
			return nil, nil, nil, fmt.Errorf("%w: variation %s is not part of this order", store.ErrInvalidOrder, id)
		}
	}

	return purified, returned, restocks, nil
}

func (s *Service) ListReturns(ctx context.Context, orderID string) (domain.OrderReturnListResponse, error) {
	if orderID == "" {
		return domain.OrderReturnListResponse{}, store.ErrInvalidOrder
	}
	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return domain.OrderReturnListResponse{}, err
	}

	returns, err := s.repo.ListReturnsByOrder(ctx, orderID)
	if err != nil {
		return domain.OrderReturnListResponse{}, err
	}
	return domain.OrderReturnListResponse{Returns: returns}, nil
}

func (s *Service) invalidateOrder(ctx context.Context, orderID string) {
	if err := s.orderCache.Invalidate(ctx, orderID); err != nil {
		log.Printf("[service] WARN: order cache invalidation failed for %s: %v", orderID, err)
	}
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[service] WARN: failed to write audit log action=%s entity=%s: %v", action, entityID, err)
	}
}
