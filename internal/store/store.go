package store

import (
	"context"
	"errors"

	"tokopos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrDuplicate         = errors.New("duplicate record")
)

type OrderFilter struct {
	Status        string
	PaymentStatus string
	Limit         int
}

type Repository interface {
	ListVariations(ctx context.Context) ([]domain.ProductVariation, error)
	GetVariationByID(ctx context.Context, id string) (*domain.ProductVariation, error)
	GetVariationsByIDs(ctx context.Context, ids []string) (map[string]domain.ProductVariation, error)
	CreateVariation(ctx context.Context, variation domain.ProductVariation) (*domain.ProductVariation, error)
	AddVariationStock(ctx context.Context, id string, qty int) error
	DecrementVariationStock(ctx context.Context, id string, qty int) error

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	FindOrderByIdempotency(ctx context.Context, key string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	ApplyOrderPayment(ctx context.Context, orderID string, payCents int64, updatedBy string) (*domain.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string, updatedBy string) (*domain.Order, error)

	// ApplyOrderReturn persists a return atomically: catalog restocks, the
	// rewritten order, and the immutable return record either all land or
	// none do. A duplicate (order id, idempotency key) pair yields
	// ErrDuplicate without touching stock.
	ApplyOrderReturn(ctx context.Context, updated domain.Order, ret domain.OrderReturn, restocks []domain.RestockInstruction) (*domain.OrderReturn, error)
	FindReturnByIdempotency(ctx context.Context, orderID string, key string) (*domain.OrderReturn, error)
	ListReturnsByOrder(ctx context.Context, orderID string) ([]domain.OrderReturn, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
