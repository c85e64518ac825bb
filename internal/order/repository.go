package order

import (
	"context"
	"database/sql"
	"errors"

	"modakarina-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrder persists the order and its item snapshot in one
	// transaction and fills in generated ids/timestamps.
	CreateOrder(ctx context.Context, o *Order) error

	SetPaymentID(ctx context.Context, orderID uint, externalID string) error
	GetByID(ctx context.Context, orderID uint) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)

	// MarkPaid transitions pending→paid and, only when the guard
	// update hits, decrements each snapshotted product's stock
	// (clamped at zero) and marks the payment approved. Returns
	// whether the transition was applied.
	MarkPaid(ctx context.Context, orderID uint) (bool, error)

	// MarkCancelled transitions pending→cancelled; no stock change.
	MarkCancelled(ctx context.Context, orderID uint) (bool, error)

	// UpdateStatus applies an admin transition, guarded on the
	// expected current status.
	UpdateStatus(ctx context.Context, orderID uint, from, to Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", o.UserID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, status, shipping_fee, total, payment_method,
			cep, street, number, complement, neighborhood, city, state
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`,
		o.UserID, o.Status, o.ShippingFee, o.Total, o.PaymentMethod,
		o.Address.CEP, o.Address.Street, o.Address.Number, o.Address.Complement,
		o.Address.Neighborhood, o.Address.City, o.Address.State,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`,
			item.OrderID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Uint("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	log.Info("order created", zap.Uint("order_id", o.ID))
	return nil
}

func (r *repository) SetPaymentID(ctx context.Context, orderID uint, externalID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_id = $1, updated_at = NOW() WHERE id = $2
	`, externalID, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	var paymentID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, shipping_fee, total, payment_method, payment_id,
		       cep, street, number, complement, neighborhood, city, state,
		       created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &o.Status, &o.ShippingFee, &o.Total, &o.PaymentMethod, &paymentID,
		&o.Address.CEP, &o.Address.Street, &o.Address.Number, &o.Address.Complement,
		&o.Address.Neighborhood, &o.Address.City, &o.Address.State,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.PaymentID = paymentID.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.UnitPrice, &item.Quantity, &item.Subtotal,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, status, shipping_fee, total, payment_method, payment_id,
		       created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		var paymentID sql.NullString
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.ShippingFee, &o.Total,
			&o.PaymentMethod, &paymentID, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		o.PaymentID = paymentID.String
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *repository) MarkPaid(ctx context.Context, orderID uint) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "MarkPaid"),
		zap.Uint("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Single-writer-wins guard: only the delivery that flips
	// pending→paid performs the stock decrement.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, orderID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		log.Info("order not pending, skipping paid transition")
		return false, tx.Commit()
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return false, err
	}

	type decrement struct {
		productID uint
		quantity  int
	}
	var decrements []decrement
	for rows.Next() {
		var d decrement
		if err := rows.Scan(&d.productID, &d.quantity); err != nil {
			rows.Close()
			return false, err
		}
		decrements = append(decrements, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, d := range decrements {
		// Clamped so stock never goes negative.
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = GREATEST(stock - $1, 0), updated_at = NOW()
			WHERE id = $2
		`, d.quantity, d.productID)
		if err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = 'approved', updated_at = NOW() WHERE order_id = $1
	`, orderID)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	log.Info("order marked as paid", zap.Int("items_decremented", len(decrements)))
	return true, nil
}

func (r *repository) MarkCancelled(ctx context.Context, orderID uint) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, orderID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = 'cancelled', updated_at = NOW() WHERE order_id = $1
	`, orderID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uint, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}
