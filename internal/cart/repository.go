package cart

import (
	"context"
	"database/sql"
	"errors"

	"modakarina-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetLine(ctx context.Context, userID, productID uint) (*Line, error)
	CreateLine(ctx context.Context, userID, productID uint, quantity int) (*Line, error)
	UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) error
	DeleteLine(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
	GetLines(ctx context.Context, userID uint) ([]Line, error)
	GetLineRows(ctx context.Context, userID uint) ([]LineRow, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetLine(ctx context.Context, userID, productID uint) (*Line, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM carts
		WHERE user_id = $1 AND product_id = $2
	`

	var l Line
	err := r.db.QueryRowContext(ctx, query, userID, productID).
		Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (r *repository) CreateLine(ctx context.Context, userID, productID uint, quantity int) (*Line, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateLine"),
		zap.Uint("user_id", userID),
		zap.Uint("product_id", productID),
	)

	query := `
		INSERT INTO carts (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, product_id, quantity, created_at, updated_at
	`

	var l Line
	err := r.db.QueryRowContext(ctx, query, userID, productID, quantity).
		Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		log.Error("failed to create cart line", zap.Error(err))
		return nil, err
	}

	log.Info("cart line created", zap.Uint("cart_line_id", l.ID))
	return &l, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
	`, quantity, userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *repository) DeleteLine(ctx context.Context, userID, productID uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}

func (r *repository) GetLines(ctx context.Context, userID uint) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (r *repository) GetLineRows(ctx context.Context, userID uint) ([]LineRow, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetLineRows"),
		zap.Uint("user_id", userID),
	)

	query := `
		SELECT
			c.product_id,
			p.name,
			p.price,
			p.promo_price,
			p.promo,
			p.stock,
			c.quantity
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1 AND p.active = TRUE
		ORDER BY c.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []LineRow
	for rows.Next() {
		var row LineRow
		if err := rows.Scan(
			&row.ProductID, &row.Name, &row.Price, &row.PromoPrice,
			&row.Promo, &row.Stock, &row.Quantity,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
