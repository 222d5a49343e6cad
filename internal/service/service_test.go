package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/inventory"
	"tokopos/backend/internal/service"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/store/memory"
)

func newTestService(t *testing.T) (*service.Service, *memory.Store) {
	t.Helper()
	repo := memory.NewSeeded()
	svc := service.New(repo, inventory.NewAdjuster(repo), nil, time.Minute)
	return svc, repo
}

func adminCtx() context.Context {
	return service.WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierCtx() context.Context {
	return service.WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
}

func seedVariation(t *testing.T, repo *memory.Store, id string, qty int, costCents, saleCents int64) {
	t.Helper()
	_, err := repo.CreateVariation(context.Background(), domain.ProductVariation{
		ID:             id,
		ProductID:      "prod-" + id,
		ProductName:    "Test Product " + id,
		Category:       "test",
		Quantity:       qty,
		CostPriceCents: costCents,
		SalePriceCents: saleCents,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("seed variation %s: %v", id, err)
	}
}

func stockOf(t *testing.T, repo *memory.Store, id string) int {
	t.Helper()
	v, err := repo.GetVariationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get variation %s: %v", id, err)
	}
	return v.Quantity
}

func TestCreateOrderComputesTotals(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	resp, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
		Vat:                 domain.Charge{Type: domain.ChargeTypePercentage, Percent: 5},
		Tax:                 domain.Charge{Type: domain.ChargeTypePercentage, Percent: 2},
		DeliveryChargeCents: 1500,
		PayAmountCents:      40000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	order := resp.Order
	if order.SubTotalCents != 100000 {
		t.Fatalf("expected subtotal 100000, got %d", order.SubTotalCents)
	}
	if order.VatAmountCents != 5000 || order.TaxAmountCents != 2000 {
		t.Fatalf("expected vat 5000 tax 2000, got %d/%d", order.VatAmountCents, order.TaxAmountCents)
	}
	if order.GrandTotalCents != 108500 {
		t.Fatalf("expected grand total 108500, got %d", order.GrandTotalCents)
	}
	if order.DueAmountCents != 68500 {
		t.Fatalf("expected due 68500, got %d", order.DueAmountCents)
	}
	if order.PaymentStatus != domain.PaymentStatusPartial {
		t.Fatalf("expected partial payment status, got %s", order.PaymentStatus)
	}
	if got := stockOf(t, repo, "v1"); got != 40 {
		t.Fatalf("expected stock 40 after checkout, got %d", got)
	}
}

func TestCreateOrderOverpaymentReturnsChange(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	resp, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
		PayAmountCents: 120000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if resp.AppliedPayCents != 100000 {
		t.Fatalf("expected applied pay 100000, got %d", resp.AppliedPayCents)
	}
	if resp.ChangeCents != 20000 {
		t.Fatalf("expected change 20000, got %d", resp.ChangeCents)
	}
	if resp.Order.PaymentStatus != domain.PaymentStatusPaid || resp.Order.DueAmountCents != 0 {
		t.Fatalf("expected paid with zero due, got %s due %d", resp.Order.PaymentStatus, resp.Order.DueAmountCents)
	}
}

func TestCreateOrderClampsRedeemToProfit(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	resp, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
		RedeemAmountCents: 50000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if !resp.RedeemClamped {
		t.Fatal("expected redeem to be clamped")
	}
	if resp.Order.RedeemAmountCents != 40000 {
		t.Fatalf("expected applied redeem 40000, got %d", resp.Order.RedeemAmountCents)
	}
	if resp.Order.GrandTotalCents != 60000 {
		t.Fatalf("expected grand total 60000, got %d", resp.Order.GrandTotalCents)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 5, 6000, 10000)

	_, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := stockOf(t, repo, "v1"); got != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", got)
	}
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	req := domain.OrderCreateRequest{
		IdempotencyKey: "order-key-1",
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	}

	first, err := svc.CreateOrder(adminCtx(), req)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateOrder(adminCtx(), req)
	if err != nil {
		t.Fatalf("replay create: %v", err)
	}

	if !second.Duplicate {
		t.Fatal("expected replay to report duplicate")
	}
	if second.Order.ID != first.Order.ID {
		t.Fatalf("expected replay to return order %s, got %s", first.Order.ID, second.Order.ID)
	}
	if got := stockOf(t, repo, "v1"); got != 40 {
		t.Fatalf("expected stock decremented once to 40, got %d", got)
	}
}

func TestApplyPaymentLifecycle(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending before any payment, got %s", created.Order.PaymentStatus)
	}

	partial, err := svc.ApplyPayment(adminCtx(), created.Order.ID, 40000)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if partial.AppliedPayCents != 40000 || partial.Order.PaymentStatus != domain.PaymentStatusPartial {
		t.Fatalf("expected partial after 40000, got applied %d status %s", partial.AppliedPayCents, partial.Order.PaymentStatus)
	}

	final, err := svc.ApplyPayment(adminCtx(), created.Order.ID, 70000)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if final.AppliedPayCents != 60000 {
		t.Fatalf("expected applied capped at 60000, got %d", final.AppliedPayCents)
	}
	if final.ChangeCents != 10000 {
		t.Fatalf("expected change 10000, got %d", final.ChangeCents)
	}
	if final.Order.PaymentStatus != domain.PaymentStatusPaid || final.Order.DueAmountCents != 0 {
		t.Fatalf("expected paid with zero due, got %s due %d", final.Order.PaymentStatus, final.Order.DueAmountCents)
	}

	extra, err := svc.ApplyPayment(adminCtx(), created.Order.ID, 1000)
	if err != nil {
		t.Fatalf("payment on settled order: %v", err)
	}
	if extra.AppliedPayCents != 0 || extra.ChangeCents != 1000 {
		t.Fatalf("expected nothing applied on settled order, got applied %d change %d", extra.AppliedPayCents, extra.ChangeCents)
	}
	if extra.Order.PayAmountCents != 100000 {
		t.Fatalf("expected pay unchanged at 100000, got %d", extra.Order.PayAmountCents)
	}
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.ApplyPayment(adminCtx(), created.Order.ID, 0); !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for zero payment, got %v", err)
	}
}

func TestCancelOrderRestocksOnce(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got := stockOf(t, repo, "v1"); got != 40 {
		t.Fatalf("expected stock 40 after checkout, got %d", got)
	}

	cancelled, err := svc.CancelOrder(adminCtx(), created.Order.ID)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Order.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Order.Status)
	}
	if got := stockOf(t, repo, "v1"); got != 50 {
		t.Fatalf("expected stock restored to 50, got %d", got)
	}

	again, err := svc.CancelOrder(adminCtx(), created.Order.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Order.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled status on repeat, got %s", again.Order.Status)
	}
	if got := stockOf(t, repo, "v1"); got != 50 {
		t.Fatalf("expected no double restock, got %d", got)
	}
}

func TestUpdateStatusRejectsLeavingCancelled(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.CancelOrder(adminCtx(), created.Order.ID); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	_, err = svc.UpdateStatus(adminCtx(), created.Order.ID, domain.OrderStatusConfirmed)
	if !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder when leaving cancelled, got %v", err)
	}
}

func TestUpdateStatusToCancelledRestocks(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := svc.UpdateStatus(adminCtx(), created.Order.ID, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Order.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", updated.Order.Status)
	}
	if got := stockOf(t, repo, "v1"); got != 50 {
		t.Fatalf("expected stock restored to 50, got %d", got)
	}
}

func TestProcessReturnPartial(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
		RedeemAmountCents: 40000,
		PayAmountCents:    60000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Order.GrandTotalCents != 60000 || created.Order.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("unexpected checkout state: grand %d status %s", created.Order.GrandTotalCents, created.Order.PaymentStatus)
	}

	resp, err := svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		RedeemAmountCents: 40000,
		Products: []domain.ReturnProductSelection{
			{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 4},
			}},
		},
	})
	if err != nil {
		t.Fatalf("process return: %v", err)
	}

	order := resp.Order
	if order.SubTotalCents != 60000 {
		t.Fatalf("expected subtotal 60000 after return, got %d", order.SubTotalCents)
	}
	if order.RedeemAmountCents != 24000 {
		t.Fatalf("expected redeem re-clamped to 24000, got %d", order.RedeemAmountCents)
	}
	if order.GrandTotalCents != 36000 {
		t.Fatalf("expected grand total 36000, got %d", order.GrandTotalCents)
	}
	if order.PayAmountCents != 36000 || order.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected pay capped at 36000 and paid, got %d %s", order.PayAmountCents, order.PaymentStatus)
	}
	if resp.OrderReturn.RefundDueCents != 24000 {
		t.Fatalf("expected refund due 24000, got %d", resp.OrderReturn.RefundDueCents)
	}

	if len(order.Products) != 1 || len(order.Products[0].Variations) != 1 {
		t.Fatalf("expected one remaining line, got %+v", order.Products)
	}
	if order.Products[0].Variations[0].Quantity != 6 {
		t.Fatalf("expected 6 units remaining, got %d", order.Products[0].Variations[0].Quantity)
	}

	if len(resp.OrderReturn.Products) != 1 || resp.OrderReturn.Products[0].Variations[0].Quantity != 4 {
		t.Fatalf("expected return record with 4 units, got %+v", resp.OrderReturn.Products)
	}
	if resp.OrderReturn.Products[0].Variations[0].SaleDiscountPriceCents != 0 {
		t.Fatal("expected returned line discount to be zeroed")
	}

	if got := stockOf(t, repo, "v1"); got != 44 {
		t.Fatalf("expected stock 44 after return, got %d", got)
	}
}

func TestProcessReturnIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
		PayAmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	req := domain.OrderReturnRequest{
		IdempotencyKey: "return-key-1",
		Products: []domain.ReturnProductSelection{
			{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 3},
			}},
		},
	}

	first, err := svc.ProcessReturn(adminCtx(), created.Order.ID, req)
	if err != nil {
		t.Fatalf("first return: %v", err)
	}
	second, err := svc.ProcessReturn(adminCtx(), created.Order.ID, req)
	if err != nil {
		t.Fatalf("replay return: %v", err)
	}

	if !second.Duplicate {
		t.Fatal("expected replay to report duplicate")
	}
	if second.OrderReturn.ID != first.OrderReturn.ID {
		t.Fatalf("expected replay to return %s, got %s", first.OrderReturn.ID, second.OrderReturn.ID)
	}
	if got := stockOf(t, repo, "v1"); got != 43 {
		t.Fatalf("expected stock restocked once to 43, got %d", got)
	}
	if second.Order.SubTotalCents != first.Order.SubTotalCents {
		t.Fatalf("expected order unchanged by replay, got subtotal %d vs %d", second.Order.SubTotalCents, first.Order.SubTotalCents)
	}
}

func TestProcessReturnRejectsExcessQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 6},
			}},
		},
	})
	if !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for excess quantity, got %v", err)
	}
	if got := stockOf(t, repo, "v1"); got != 45 {
		t.Fatalf("expected stock unchanged at 45, got %d", got)
	}
}

func TestProcessReturnUnknownVariation(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{Variations: []domain.ReturnVariationSelection{
				{VariationID: "var-tee-s", ReturnQuantity: 1},
			}},
		},
	})
	if !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for foreign variation, got %v", err)
	}
}

func TestProcessReturnFullKeepsDeliveryCharge(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 5},
		},
		DeliveryChargeCents: 1500,
		PayAmountCents:      51500,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	resp, err := svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 5},
			}},
		},
	})
	if err != nil {
		t.Fatalf("process return: %v", err)
	}

	order := resp.Order
	if order.SubTotalCents != 0 {
		t.Fatalf("expected zero subtotal after full return, got %d", order.SubTotalCents)
	}
	if order.GrandTotalCents != 1500 {
		t.Fatalf("expected delivery charge retained as grand total, got %d", order.GrandTotalCents)
	}
	if order.PayAmountCents != 1500 {
		t.Fatalf("expected pay capped to 1500, got %d", order.PayAmountCents)
	}
	if resp.OrderReturn.RefundDueCents != 50000 {
		t.Fatalf("expected refund due 50000, got %d", resp.OrderReturn.RefundDueCents)
	}
	if got := stockOf(t, repo, "v1"); got != 50 {
		t.Fatalf("expected full restock to 50, got %d", got)
	}
}

func TestProcessReturnKeepsRoundOffBehavior(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10033)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 3},
		},
		RoundOff: true,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Order.GrandTotalCents != 30100 || created.Order.RoundOffCents != 1 {
		t.Fatalf("unexpected checkout rounding: grand %d roundoff %d", created.Order.GrandTotalCents, created.Order.RoundOffCents)
	}

	resp, err := svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 1},
			}},
		},
	})
	if err != nil {
		t.Fatalf("process return: %v", err)
	}

	order := resp.Order
	if order.SubTotalCents != 20066 {
		t.Fatalf("expected subtotal 20066, got %d", order.SubTotalCents)
	}
	if order.GrandTotalCents != 20100 {
		t.Fatalf("expected round-off retained, grand 20100, got %d", order.GrandTotalCents)
	}
	if order.RoundOffCents != 34 {
		t.Fatalf("expected round-off 34, got %d", order.RoundOffCents)
	}
}

func TestProcessReturnRequiresAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = svc.ProcessReturn(cashierCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 1},
			}},
		},
	})
	if err == nil {
		t.Fatal("expected cashier return to be rejected")
	}
}

func TestProcessReturnRejectsCancelledOrder(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.CancelOrder(adminCtx(), created.Order.ID); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	_, err = svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
		Products: []domain.ReturnProductSelection{
			{Variations: []domain.ReturnVariationSelection{
				{VariationID: "v1", ReturnQuantity: 1},
			}},
		},
	})
	if !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for cancelled order, got %v", err)
	}
}

func TestGetOrderJoinsCurrentInfo(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	detail, err := svc.GetOrder(context.Background(), created.Order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(detail.CurrentInfo) != 1 {
		t.Fatalf("expected one current_info entry, got %d", len(detail.CurrentInfo))
	}
	info := detail.CurrentInfo[0]
	if !info.Found || info.Quantity != 40 || info.SalePriceCents != 10000 {
		t.Fatalf("unexpected current info: %+v", info)
	}
}

func TestListReturnsByOrder(t *testing.T) {
	svc, repo := newTestService(t)
	seedVariation(t, repo, "v1", 50, 6000, 10000)

	created, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Products: []domain.OrderLineSelection{
			{VariationID: "v1", SelectedQuantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := svc.ProcessReturn(adminCtx(), created.Order.ID, domain.OrderReturnRequest{
			Products: []domain.ReturnProductSelection{
				{ProductID: "prod-v1", Variations: []domain.ReturnVariationSelection{
					{VariationID: "v1", ReturnQuantity: 2},
				}},
			},
		})
		if err != nil {
			t.Fatalf("return %d: %v", i, err)
		}
	}

	list, err := svc.ListReturns(adminCtx(), created.Order.ID)
	if err != nil {
		t.Fatalf("list returns: %v", err)
	}
	if len(list.Returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(list.Returns))
	}
}
