package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdateStatusByExternalID(ctx context.Context, externalID, status string) error
	GetByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// RecordWebhookEvent persists an incoming notification. A second
	// delivery of the same (provider, event_id) pair reports
	// isDuplicate=true instead of inserting.
	RecordWebhookEvent(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (order_id, external_id, amount, status, method, ticket_url, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return r.db.QueryRowContext(ctx, query,
		p.OrderID, p.ExternalID, p.Amount, p.Status, p.Method, p.TicketURL, p.QRCode,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repository) UpdateStatusByExternalID(ctx context.Context, externalID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW() WHERE external_id = $2
	`, status, externalID)
	return err
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uint) (*Payment, error) {
	query := `
		SELECT id, order_id, external_id, amount, status, method, ticket_url, qr_code, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var p Payment
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.ExternalID, &p.Amount, &p.Status,
		&p.Method, &p.TicketURL, &p.QRCode, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) RecordWebhookEvent(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, provider, eventID, eventType, externalID, payload).Scan(&id)
	if err != nil {
		// Duplicate delivery resolves idempotently.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks SET processed_at = NOW() WHERE id = $1
	`, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks SET process_error = $2 WHERE id = $1
	`, webhookID, reason)
	return err
}
