package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type GetOptions struct {
	ProductID  uint
	OnlyActive bool
}

type Repository interface {
	GetByID(ctx context.Context, opts GetOptions) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id uint, params UpdateParams) error
	SetActive(ctx context.Context, id uint, active bool) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, name, description, price, promo_price, promo, stock, active, created_at, updated_at
`

func (r *repository) GetByID(ctx context.Context, opts GetOptions) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if opts.OnlyActive {
		query += ` AND active = TRUE`
	}

	var p Product
	err := r.db.QueryRowContext(ctx, query, opts.ProductID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.PromoPrice,
		&p.Promo, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active = TRUE ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.PromoPrice,
			&p.Promo, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (name, description, price, promo_price, promo, stock, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, active, created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.PromoPrice, p.Promo, p.Stock,
	).Scan(&p.ID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) Update(ctx context.Context, id uint, params UpdateParams) error {
	set := ""
	args := []any{}
	argIndex := 1

	add := func(col string, val any) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, argIndex)
		args = append(args, val)
		argIndex++
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.PromoPrice != nil {
		add("promo_price", *params.PromoPrice)
	}
	if params.Promo != nil {
		add("promo", *params.Promo)
	}
	if params.Stock != nil {
		add("stock", *params.Stock)
	}

	if set == "" {
		return nil
	}

	query := fmt.Sprintf(
		"UPDATE products SET %s, updated_at = NOW() WHERE id = $%d",
		set, argIndex,
	)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uint, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
