package memory

import (
	"context"
	"errors"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	variationsByID  map[string]domain.ProductVariation
	ordersByID      map[string]*domain.Order
	ordersByIdem    map[string]string
	returnsByID     map[string]domain.OrderReturn
	returnsByOrder  map[string][]string
	returnIdemByKey map[string]string
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables; hardcoded dev defaults apply when unset. The memory
// store is never used in production (DATABASE_URL selects postgres).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	variations := []domain.ProductVariation{
		{ID: "var-tee-s", ProductID: "prod-tee", ProductName: "Classic Tee", Category: "apparel", Quantity: 80, CostPriceCents: 600000, SalePriceCents: 1000000, Color: "black", Size: "S", WeightGrams: 180, Active: true},
		{ID: "var-tee-m", ProductID: "prod-tee", ProductName: "Classic Tee", Category: "apparel", Quantity: 120, CostPriceCents: 600000, SalePriceCents: 1000000, Color: "black", Size: "M", WeightGrams: 190, Active: true},
		{ID: "var-tee-l", ProductID: "prod-tee", ProductName: "Classic Tee", Category: "apparel", Quantity: 100, CostPriceCents: 620000, SalePriceCents: 1050000, Color: "black", Size: "L", WeightGrams: 200, Active: true},
		{ID: "var-hoodie-m", ProductID: "prod-hoodie", ProductName: "Zip Hoodie", Category: "apparel", Quantity: 40, CostPriceCents: 2500000, SalePriceCents: 4500000, Color: "navy", Size: "M", WeightGrams: 550, Active: true},
		{ID: "var-hoodie-l", ProductID: "prod-hoodie", ProductName: "Zip Hoodie", Category: "apparel", Quantity: 35, CostPriceCents: 2500000, SalePriceCents: 4500000, Color: "navy", Size: "L", WeightGrams: 580, Active: true},
		{ID: "var-cap-one", ProductID: "prod-cap", ProductName: "Snapback Cap", Category: "accessories", Quantity: 60, CostPriceCents: 800000, SalePriceCents: 1500000, Color: "olive", Size: "one-size", WeightGrams: 120, Active: true},
		{ID: "var-sock-m", ProductID: "prod-sock", ProductName: "Crew Socks 3-Pack", Category: "accessories", Quantity: 200, CostPriceCents: 300000, SalePriceCents: 550000, Size: "M", WeightGrams: 150, Active: true},
		{ID: "var-bottle-1l", ProductID: "prod-bottle", ProductName: "Steel Bottle 1L", Category: "gear", Quantity: 50, CostPriceCents: 1200000, SalePriceCents: 2200000, Color: "silver", WeightGrams: 400, Active: true},
	}

	byID := make(map[string]domain.ProductVariation, len(variations))
	for _, v := range variations {
		byID[v.ID] = v
	}

	return &Store{
		variationsByID:  byID,
		ordersByID:      make(map[string]*domain.Order),
		ordersByIdem:    make(map[string]string),
		returnsByID:     make(map[string]domain.OrderReturn),
		returnsByOrder:  make(map[string][]string),
		returnIdemByKey: make(map[string]string),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListVariations(_ context.Context) ([]domain.ProductVariation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	variations := make([]domain.ProductVariation, 0, len(s.variationsByID))
	for _, v := range s.variationsByID {
		if !v.Active {
			continue
		}
		variations = append(variations, v)
	}

	slices.SortFunc(variations, func(a, b domain.ProductVariation) int {
		if a.ProductName == b.ProductName {
			return strings.Compare(a.ID, b.ID)
		}
		return strings.Compare(a.ProductName, b.ProductName)
	})

	return variations, nil
}

func (s *Store) GetVariationByID(_ context.Context, id string) (*domain.ProductVariation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.variationsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyVar := v
	return &copyVar, nil
}

func (s *Store) GetVariationsByIDs(_ context.Context, ids []string) (map[string]domain.ProductVariation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.ProductVariation, len(ids))
	for _, id := range ids {
		if v, exists := s.variationsByID[id]; exists {
			result[id] = v
		}
	}
	return result, nil
}

func (s *Store) CreateVariation(_ context.Context, variation domain.ProductVariation) (*domain.ProductVariation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createVariationLocked(variation)
}

func (s *Store) createVariationLocked(variation domain.ProductVariation) (*domain.ProductVariation, error) {
	if variation.ID == "" || variation.ProductID == "" || variation.SalePriceCents < 1 {
		return nil, store.ErrInvalidOrder
	}
	if variation.Quantity < 0 {
		return nil, store.ErrInvalidOrder
	}
	if _, exists := s.variationsByID[variation.ID]; exists {
		return nil, store.ErrDuplicate
	}

	variation.Active = true
	s.variationsByID[variation.ID] = variation
	created := variation
	return &created, nil
}

func (s *Store) AddVariationStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addVariationStockLocked(id, qty)
}

func (s *Store) addVariationStockLocked(id string, qty int) error {
	v, exists := s.variationsByID[id]
	if !exists {
		return store.ErrNotFound
	}
	v.Quantity += qty
	s.variationsByID[id] = v
	return nil
}

func (s *Store) DecrementVariationStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.variationsByID[id]
	if !exists {
		return store.ErrNotFound
	}
	if v.Quantity < qty {
		return store.ErrInsufficientStock
	}
	v.Quantity -= qty
	s.variationsByID[id] = v
	return nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" || len(order.Products) == 0 {
		return nil, store.ErrInvalidOrder
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if order.IdempotencyKey != "" {
		if _, exists := s.ordersByIdem[order.IdempotencyKey]; exists {
			return nil, store.ErrDuplicate
		}
	}

	stored := cloneOrder(order)
	s.ordersByID[order.ID] = &stored
	if order.IdempotencyKey != "" {
		s.ordersByIdem[order.IdempotencyKey] = order.ID
	}

	created := cloneOrder(stored)
	return &created, nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := cloneOrder(*order)
	return &copyOrder, nil
}

func (s *Store) FindOrderByIdempotency(_ context.Context, key string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.ordersByIdem[key]
	if !exists {
		return nil, store.ErrNotFound
	}
	order, exists := s.ordersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := cloneOrder(*order)
	return &copyOrder, nil
}

func (s *Store) ListOrders(_ context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	orders := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		orders = append(orders, cloneOrder(*order))
	}

	slices.SortFunc(orders, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, nil
}

func (s *Store) ApplyOrderPayment(_ context.Context, orderID string, payCents int64, updatedBy string) (*domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, 0, store.ErrNotFound
	}
	if payCents < 1 {
		return nil, 0, store.ErrInvalidOrder
	}

	newPay, due, applied, _ := domain.ApplyPaymentAmounts(order.GrandTotalCents, order.PayAmountCents, payCents)
	order.PayAmountCents = newPay
	order.DueAmountCents = due
	order.PaymentStatus = domain.PaymentStatusFor(newPay, order.GrandTotalCents)
	order.UpdatedBy = updatedBy
	order.UpdatedAt = time.Now().UTC()

	copyOrder := cloneOrder(*order)
	return &copyOrder, applied, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID string, status string, updatedBy string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}

	order.Status = status
	order.UpdatedBy = updatedBy
	order.UpdatedAt = time.Now().UTC()

	copyOrder := cloneOrder(*order)
	return &copyOrder, nil
}

func (s *Store) ApplyOrderReturn(_ context.Context, updated domain.Order, ret domain.OrderReturn, restocks []domain.RestockInstruction) (*domain.OrderReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.ordersByID[updated.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if ret.IdempotencyKey != "" {
		if _, dup := s.returnIdemByKey[returnIdemKey(updated.ID, ret.IdempotencyKey)]; dup {
			return nil, store.ErrDuplicate
		}
	}

	// All-or-nothing under the store mutex: restocks, order rewrite and the
	// return record land together.
	for _, instr := range restocks {
		if err := s.addVariationStockLocked(instr.VariationID, instr.Quantity); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			if _, err := s.createVariationLocked(domain.ProductVariation{
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
			}); err != nil {
				return nil, err
			}
		}
	}

	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	stored := cloneOrder(updated)
	s.ordersByID[updated.ID] = &stored

	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now().UTC()
	}
	retStored := cloneReturn(ret)
	s.returnsByID[ret.ID] = retStored
	s.returnsByOrder[ret.OrderID] = append(s.returnsByOrder[ret.OrderID], ret.ID)
	if ret.IdempotencyKey != "" {
		s.returnIdemByKey[returnIdemKey(updated.ID, ret.IdempotencyKey)] = ret.ID
	}

	created := cloneReturn(ret)
	return &created, nil
}

func (s *Store) FindReturnByIdempotency(_ context.Context, orderID string, key string) (*domain.OrderReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.returnIdemByKey[returnIdemKey(orderID, key)]
	if !exists {
		return nil, store.ErrNotFound
	}
	ret, exists := s.returnsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRet := cloneReturn(ret)
	return &copyRet, nil
}

func (s *Store) ListReturnsByOrder(_ context.Context, orderID string) ([]domain.OrderReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.returnsByOrder[orderID]
	returns := make([]domain.OrderReturn, 0, len(ids))
	for _, id := range ids {
		if ret, exists := s.returnsByID[id]; exists {
			returns = append(returns, cloneReturn(ret))
		}
	}

	slices.SortFunc(returns, func(a, b domain.OrderReturn) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return returns, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" {
		return store.ErrInvalidOrder
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrDuplicate
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func returnIdemKey(orderID, key string) string {
	return orderID + "|" + key
}

func cloneOrder(order domain.Order) domain.Order {
	copyOrder := order
	copyOrder.Products = cloneProducts(order.Products)
	return copyOrder
}

func cloneReturn(ret domain.OrderReturn) domain.OrderReturn {
	copyRet := ret
	copyRet.Products = cloneProducts(ret.Products)
	return copyRet
}

func cloneProducts(products []domain.OrderProduct) []domain.OrderProduct {
	cloned := make([]domain.OrderProduct, len(products))
	for i, p := range products {
		cloned[i] = p
		cloned[i].Variations = slices.Clone(p.Variations)
	}
	return cloned
}
