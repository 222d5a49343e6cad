package domain

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

const (
	ChargeTypePercentage = "percentage"
	ChargeTypeFixed      = "fixed"
)

// Charge is a configured vat/tax/discount component. Percentage charges are
// computed off the order subtotal; fixed charges pass through unchanged.
type Charge struct {
	Type        string  `json:"type"`
	Percent     float64 `json:"percent,omitempty"`
	AmountCents int64   `json:"amount_cents,omitempty"`
}

// ProductVariation is the catalog row that owns authoritative stock. Order
// line snapshots reference it by VariationID only; mutating one never touches
// the other except through an explicit stock adjustment.
type ProductVariation struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Category       string     `json:"category"`
	Quantity       int        `json:"quantity"`
	CostPriceCents int64      `json:"cost_price_cents"`
	SalePriceCents int64      `json:"sale_price_cents"`
	MfgDate        *time.Time `json:"mfg_date,omitempty"`
	ExpDate        *time.Time `json:"exp_date,omitempty"`
	Color          string     `json:"color,omitempty"`
	Size           string     `json:"size,omitempty"`
	WeightGrams    int        `json:"weight_grams,omitempty"`
	Active         bool       `json:"active"`
}

// OrderVariation is the immutable snapshot of a catalog variation captured at
// order time. SaleDiscountPriceCents, when positive, is the per-unit
// promotional price that replaces SalePriceCents in every total.
type OrderVariation struct {
	VariationID            string     `json:"variation_id"`
	Quantity               int        `json:"quantity"`
	CostPriceCents         int64      `json:"cost_price_cents"`
	SalePriceCents         int64      `json:"sale_price_cents"`
	SaleDiscountPriceCents int64      `json:"sale_discount_price_cents,omitempty"`
	MfgDate                *time.Time `json:"mfg_date,omitempty"`
	ExpDate                *time.Time `json:"exp_date,omitempty"`
	Color                  string     `json:"color,omitempty"`
	Size                   string     `json:"size,omitempty"`
	WeightGrams            int        `json:"weight_grams,omitempty"`
}

type OrderProduct struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Category    string           `json:"category,omitempty"`
	Variations  []OrderVariation `json:"variations"`
}

type Order struct {
	ID                  string         `json:"id"`
	Code                string         `json:"code"`
	IdempotencyKey      string         `json:"idempotency_key,omitempty"`
	Products            []OrderProduct `json:"products"`
	RedeemAmountCents   int64          `json:"redeem_amount_cents"`
	VatAmountCents      int64          `json:"vat_amount_cents"`
	TaxAmountCents      int64          `json:"tax_amount_cents"`
	DeliveryChargeCents int64          `json:"delivery_charge_cents"`
	SubTotalCents       int64          `json:"sub_total_cents"`
	RoundOffCents       int64          `json:"round_off_cents"`
	GrandTotalCents     int64          `json:"grand_total_cents"`
	PayAmountCents      int64          `json:"pay_amount_cents"`
	DueAmountCents      int64          `json:"due_amount_cents"`
	PaymentMethodID     string         `json:"payment_method_id,omitempty"`
	DeliveryZoneID      string         `json:"delivery_zone_id,omitempty"`
	CustomerID          string         `json:"customer_id,omitempty"`
	CouponID            string         `json:"coupon_id,omitempty"`
	Status              string         `json:"status"`
	PaymentStatus       string         `json:"payment_status"`
	IsActive            bool           `json:"is_active"`
	CreatedBy           string         `json:"created_by,omitempty"`
	UpdatedBy           string         `json:"updated_by,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// OrderReturn records exactly what left the order: quantities are the
// returned quantities, and unit discounts are zeroed because a returned unit
// carries no discount attribution. Never mutated after creation.
type OrderReturn struct {
	ID             string         `json:"id"`
	Code           string         `json:"code"`
	OrderID        string         `json:"order_id"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	Products       []OrderProduct `json:"products"`
	RefundDueCents int64          `json:"refund_due_cents"`
	CreatedBy      string         `json:"created_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RestockInstruction tells the store to add quantity back to a catalog
// variation, recreating the row from the order snapshot if it was deleted.
type RestockInstruction struct {
	VariationID string
	Quantity    int
	ProductID   string
	ProductName string
	Category    string
	Snapshot    OrderVariation
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type OrderLineSelection struct {
	ProductID          string `json:"id"`
	VariationID        string `json:"variation_id"`
	SelectedQuantity   int    `json:"selected_quantity"`
	DiscountPriceCents int64  `json:"discount,omitempty"`
}

type OrderCreateRequest struct {
	Code                string               `json:"code,omitempty"`
	IdempotencyKey      string               `json:"idempotency_key,omitempty"`
	Products            []OrderLineSelection `json:"products"`
	RedeemAmountCents   int64                `json:"redeem_amount_cents"`
	PayAmountCents      int64                `json:"pay_amount_cents"`
	Vat                 Charge               `json:"vat"`
	Tax                 Charge               `json:"tax"`
	DeliveryChargeCents int64                `json:"delivery_charge_cents"`
	RoundOff            bool                 `json:"is_round_off"`
	PaymentMethodID     string               `json:"payment_method_id,omitempty"`
	DeliveryZoneID      string               `json:"delivery_zone_id,omitempty"`
	CustomerID          string               `json:"customer_id,omitempty"`
	CouponID            string               `json:"coupon_id,omitempty"`
	Status              string               `json:"status,omitempty"`
}

type OrderCreateResponse struct {
	Order           Order `json:"order"`
	ChangeCents     int64 `json:"change_cents"`
	RedeemClamped   bool  `json:"redeem_clamped"`
	Duplicate       bool  `json:"duplicate"`
	AppliedPayCents int64 `json:"applied_pay_cents"`
}

type OrderUpdateRequest struct {
	PayAmountCents *int64  `json:"pay_amount_cents,omitempty"`
	Status         *string `json:"status,omitempty"`
}

type OrderUpdateResponse struct {
	Order           Order `json:"order"`
	AppliedPayCents int64 `json:"applied_pay_cents,omitempty"`
	ChangeCents     int64 `json:"change_cents,omitempty"`
}

type ReturnVariationSelection struct {
	VariationID    string `json:"id"`
	ReturnQuantity int    `json:"return_quantity"`
}

type ReturnProductSelection struct {
	ProductID  string                     `json:"id"`
	Variations []ReturnVariationSelection `json:"variations"`
}

type OrderReturnRequest struct {
	IdempotencyKey    string                   `json:"idempotency_key,omitempty"`
	RedeemAmountCents int64                    `json:"redeem_amount_cents"`
	Products          []ReturnProductSelection `json:"products"`
}

type OrderReturnResponse struct {
	Order       Order       `json:"order"`
	OrderReturn OrderReturn `json:"order_return"`
	Duplicate   bool        `json:"duplicate"`
}

// VariationCurrentInfo is the live catalog state joined onto an order read.
// It is never persisted on the order.
type VariationCurrentInfo struct {
	VariationID    string `json:"variation_id"`
	SalePriceCents int64  `json:"sale_price_cents"`
	Quantity       int    `json:"quantity"`
	Active         bool   `json:"active"`
	Found          bool   `json:"found"`
}

type OrderDetailResponse struct {
	Order       Order                  `json:"order"`
	CurrentInfo []VariationCurrentInfo `json:"current_info"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

type OrderReturnListResponse struct {
	Returns []OrderReturn `json:"returns"`
}

type VariationListResponse struct {
	Variations []ProductVariation `json:"variations"`
}
