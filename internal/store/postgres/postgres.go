package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListVariations(ctx context.Context) ([]domain.ProductVariation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, category, quantity, cost_price_cents,
			sale_price_cents, mfg_date, exp_date, color, size, weight_grams, active
		FROM product_variations
		WHERE active = true
		ORDER BY product_name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variations := make([]domain.ProductVariation, 0, 128)
	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return variations, nil
}

func (s *Store) GetVariationByID(ctx context.Context, id string) (*domain.ProductVariation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, category, quantity, cost_price_cents,
			sale_price_cents, mfg_date, exp_date, color, size, weight_grams, active
		FROM product_variations
		WHERE id = $1
	`, id)

	v, err := scanVariation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) GetVariationsByIDs(ctx context.Context, ids []string) (map[string]domain.ProductVariation, error) {
	result := make(map[string]domain.ProductVariation, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, category, quantity, cost_price_cents,
			sale_price_cents, mfg_date, exp_date, color, size, weight_grams, active
		FROM product_variations
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return nil, err
		}
		result[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) CreateVariation(ctx context.Context, variation domain.ProductVariation) (*domain.ProductVariation, error) {
	if variation.ID == "" || variation.ProductID == "" || variation.SalePriceCents < 1 || variation.Quantity < 0 {
		return nil, store.ErrInvalidOrder
	}

	variation.Active = true
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_variations (
			id, product_id, product_name, category, quantity, cost_price_cents,
			sale_price_cents, mfg_date, exp_date, color, size, weight_grams, active,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
	`, variation.ID, variation.ProductID, variation.ProductName, variation.Category,
		variation.Quantity, variation.CostPriceCents, variation.SalePriceCents,
		nullDate(variation.MfgDate), nullDate(variation.ExpDate), variation.Color,
		variation.Size, variation.WeightGrams, variation.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := variation
	return &created, nil
}

func (s *Store) AddVariationStock(ctx context.Context, id string, qty int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE product_variations
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2
	`, qty, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DecrementVariationStock(ctx context.Context, id string, qty int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE product_variations
		SET quantity = quantity - $1, updated_at = now()
		WHERE id = $2 AND quantity >= $1
	`, qty, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM product_variations WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrInsufficientStock
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" || len(order.Products) == 0 {
		return nil, store.ErrInvalidOrder
	}

	productsJSON, err := json.Marshal(order.Products)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, code, idempotency_key, products, redeem_amount_cents, vat_amount_cents,
			tax_amount_cents, delivery_charge_cents, sub_total_cents, round_off_cents,
			grand_total_cents, pay_amount_cents, due_amount_cents, payment_method_id,
			delivery_zone_id, customer_id, coupon_id, status, payment_status, is_active,
			created_by, updated_by, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`, order.ID, order.Code, nullIfEmpty(order.IdempotencyKey), productsJSON,
		order.RedeemAmountCents, order.VatAmountCents, order.TaxAmountCents,
		order.DeliveryChargeCents, order.SubTotalCents, order.RoundOffCents,
		order.GrandTotalCents, order.PayAmountCents, order.DueAmountCents,
		nullIfEmpty(order.PaymentMethodID), nullIfEmpty(order.DeliveryZoneID),
		nullIfEmpty(order.CustomerID), nullIfEmpty(order.CouponID),
		order.Status, order.PaymentStatus, order.IsActive,
		order.CreatedBy, order.UpdatedBy, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := order
	return &created, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return findOrder(s.db.QueryRowContext(ctx, orderSelect+` WHERE id = $1`, id))
}

func (s *Store) FindOrderByIdempotency(ctx context.Context, key string) (*domain.Order, error) {
	return findOrder(s.db.QueryRowContext(ctx, orderSelect+` WHERE idempotency_key = $1`, key))
}

const orderSelect = `
	SELECT id, code, COALESCE(idempotency_key,''), products, redeem_amount_cents,
		vat_amount_cents, tax_amount_cents, delivery_charge_cents, sub_total_cents,
		round_off_cents, grand_total_cents, pay_amount_cents, due_amount_cents,
		COALESCE(payment_method_id,''), COALESCE(delivery_zone_id,''),
		COALESCE(customer_id,''), COALESCE(coupon_id,''), status, payment_status,
		is_active, created_by, updated_by, created_at, updated_at
	FROM orders
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var productsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.IdempotencyKey,
		&productsJSON,
		&order.RedeemAmountCents,
		&order.VatAmountCents,
		&order.TaxAmountCents,
		&order.DeliveryChargeCents,
		&order.SubTotalCents,
		&order.RoundOffCents,
		&order.GrandTotalCents,
		&order.PayAmountCents,
		&order.DueAmountCents,
		&order.PaymentMethodID,
		&order.DeliveryZoneID,
		&order.CustomerID,
		&order.CouponID,
		&order.Status,
		&order.PaymentStatus,
		&order.IsActive,
		&order.CreatedBy,
		&order.UpdatedBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(productsJSON, &order.Products); err != nil {
		return nil, err
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return &order, nil
}

func findOrder(row *sql.Row) (*domain.Order, error) {
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, orderSelect+`
		WHERE ($1 = '' OR status = $1)
			AND ($2 = '' OR payment_status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, filter.Status, filter.PaymentStatus, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) ApplyOrderPayment(ctx context.Context, orderID string, payCents int64, updatedBy string) (*domain.Order, int64, error) {
	if payCents < 1 {
		return nil, 0, store.ErrInvalidOrder
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var grandTotal, currentPay int64
	err = tx.QueryRowContext(ctx, `
		SELECT grand_total_cents, pay_amount_cents
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&grandTotal, &currentPay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, store.ErrNotFound
		}
		return nil, 0, err
	}

	newPay, due, applied, _ := domain.ApplyPaymentAmounts(grandTotal, currentPay, payCents)

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET pay_amount_cents = $2, due_amount_cents = $3, payment_status = $4,
			updated_by = $5, updated_at = now()
		WHERE id = $1
	`, orderID, newPay, due, domain.PaymentStatusFor(newPay, grandTotal), updatedBy)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	return order, applied, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status string, updatedBy string) (*domain.Order, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_by = $3, updated_at = now()
		WHERE id = $1
	`, orderID, status, updatedBy)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetOrderByID(ctx, orderID)
}

func (s *Store) ApplyOrderReturn(ctx context.Context, updated domain.Order, ret domain.OrderReturn, restocks []domain.RestockInstruction) (*domain.OrderReturn, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE id = $1 FOR UPDATE
	`, updated.ID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if ret.IdempotencyKey != "" {
		var dup bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM order_returns WHERE order_id = $1 AND idempotency_key = $2)
		`, updated.ID, ret.IdempotencyKey).Scan(&dup)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, store.ErrDuplicate
		}
	}

	for _, instr := range restocks {
		res, err := tx.ExecContext(ctx, `
			UPDATE product_variations
			SET quantity = quantity + $1, updated_at = now()
			WHERE id = $2
		`, instr.Quantity, instr.VariationID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO product_variations (
					id, product_id, product_name, category, quantity, cost_price_cents,
					sale_price_cents, mfg_date, exp_date, color, size, weight_grams, active,
					created_at, updated_at
				)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,true,now(),now())
			`, instr.VariationID, instr.ProductID, instr.ProductName, instr.Category,
				instr.Quantity, instr.Snapshot.CostPriceCents, instr.Snapshot.SalePriceCents,
				nullDate(instr.Snapshot.MfgDate), nullDate(instr.Snapshot.ExpDate),
				instr.Snapshot.Color, instr.Snapshot.Size, instr.Snapshot.WeightGrams)
			if err != nil {
				return nil, err
			}
		}
	}

	productsJSON, err := json.Marshal(updated.Products)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET products = $2, redeem_amount_cents = $3, sub_total_cents = $4,
			round_off_cents = $5, grand_total_cents = $6, pay_amount_cents = $7,
			due_amount_cents = $8, payment_status = $9, updated_by = $10, updated_at = now()
		WHERE id = $1
	`, updated.ID, productsJSON, updated.RedeemAmountCents, updated.SubTotalCents,
		updated.RoundOffCents, updated.GrandTotalCents, updated.PayAmountCents,
		updated.DueAmountCents, updated.PaymentStatus, updated.UpdatedBy)
	if err != nil {
		return nil, err
	}

	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now().UTC()
	}
	returnedJSON, err := json.Marshal(ret.Products)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_returns (
			id, code, order_id, idempotency_key, products, refund_due_cents, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, ret.ID, ret.Code, ret.OrderID, nullIfEmpty(ret.IdempotencyKey), returnedJSON,
		ret.RefundDueCents, ret.CreatedBy, ret.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := ret
	return &created, nil
}

func (s *Store) FindReturnByIdempotency(ctx context.Context, orderID string, key string) (*domain.OrderReturn, error) {
	row := s.db.QueryRowContext(ctx, returnSelect+` WHERE order_id = $1 AND idempotency_key = $2`, orderID, key)
	ret, err := scanReturn(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return ret, nil
}

const returnSelect = `
	SELECT id, code, order_id, COALESCE(idempotency_key,''), products,
		refund_due_cents, created_by, created_at
	FROM order_returns
`

func scanReturn(row rowScanner) (*domain.OrderReturn, error) {
	var ret domain.OrderReturn
	var productsJSON []byte

	err := row.Scan(
		&ret.ID,
		&ret.Code,
		&ret.OrderID,
		&ret.IdempotencyKey,
		&productsJSON,
		&ret.RefundDueCents,
		&ret.CreatedBy,
		&ret.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(productsJSON, &ret.Products); err != nil {
		return nil, err
	}
	ret.CreatedAt = ret.CreatedAt.UTC()
	return &ret, nil
}

func (s *Store) ListReturnsByOrder(ctx context.Context, orderID string) ([]domain.OrderReturn, error) {
	rows, err := s.db.QueryContext(ctx, returnSelect+`
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	returns := make([]domain.OrderReturn, 0, 8)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, *ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return returns, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType,
		entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidOrder
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrInvalidOrder
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanVariation(row rowScanner) (domain.ProductVariation, error) {
	var v domain.ProductVariation
	var mfg, exp sql.NullTime
	var color, size sql.NullString

	err := row.Scan(&v.ID, &v.ProductID, &v.ProductName, &v.Category, &v.Quantity,
		&v.CostPriceCents, &v.SalePriceCents, &mfg, &exp, &color, &size, &v.WeightGrams, &v.Active)
	if err != nil {
		return v, err
	}

	if mfg.Valid {
		d := mfg.Time.UTC()
		v.MfgDate = &d
	}
	if exp.Valid {
		d := exp.Time.UTC()
		v.ExpDate = &d
	}
	if color.Valid {
		v.Color = color.String
	}
	if size.Valid {
		v.Size = size.String
	}
	return v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullDate(val *time.Time) any {
	if val == nil {
		return nil
	}
	return val.UTC()
}
