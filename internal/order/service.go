package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"modakarina-be/internal/cart"
	"modakarina-be/internal/logger"
	"modakarina-be/internal/payment"
	"modakarina-be/internal/product"
	"modakarina-be/internal/shipping"
	"modakarina-be/internal/user"

	"go.uber.org/zap"
)

const webhookProvider = "mercadopago"

type Service interface {
	PlaceOrder(ctx context.Context, userID uint, address Address, paymentMethod string) (*Order, *payment.PaymentResponse, error)
	RetryPayment(ctx context.Context, userID, orderID uint) (*Order, *payment.PaymentResponse, error)
	GetOrders(ctx context.Context, userID uint) ([]*Order, error)
	GetOrderDetail(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) error

	// HandlePaymentNotification reconciles an asynchronous gateway
	// notification. The returned error is for logging only; the
	// webhook endpoint acknowledges regardless.
	HandlePaymentNotification(ctx context.Context, n Notification) error
}

type service struct {
	repo        Repository
	cartRepo    cart.Repository
	productRepo product.Repository
	userRepo    user.Repository
	paymentRepo payment.Repository
	gateway     payment.Gateway
	estimator   shipping.Estimator
}

func NewService(
	repo Repository,
	cartRepo cart.Repository,
	productRepo product.Repository,
	userRepo user.Repository,
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	estimator shipping.Estimator,
) Service {
	return &service{
		repo:        repo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		estimator:   estimator,
	}
}

// PlaceOrder converts the user's cart into a pending order with a
// frozen item snapshot, quotes shipping, and requests a payment from
// the gateway. Stock is validated here but only decremented once the
// gateway confirms payment.
func (s *service) PlaceOrder(ctx context.Context, userID uint, address Address, paymentMethod string) (*Order, *payment.PaymentResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", userID),
	)

	if address.CEP == "" {
		return nil, nil, ErrInvalidAddress
	}

	lines, err := s.cartRepo.GetLines(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	// Snapshot each line against the live catalog.
	items := make([]Item, 0, len(lines))
	var itemTotal float64

	for _, line := range lines {
		p, err := s.productRepo.GetByID(ctx, product.GetOptions{
			ProductID:  line.ProductID,
			OnlyActive: true,
		})
		if errors.Is(err, product.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, line.ProductID)
		}
		if err != nil {
			return nil, nil, err
		}

		if p.Stock < line.Quantity {
			return nil, nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}

		unitPrice := p.EffectivePrice()
		subtotal := unitPrice * float64(line.Quantity)
		itemTotal += subtotal

		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: unitPrice,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
	}

	quote, err := s.estimator.Estimate(ctx, address.CEP, itemTotal)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to estimate shipping: %w", err)
	}

	o := &Order{
		UserID:        userID,
		Items:         items,
		Address:       address,
		ShippingFee:   quote.Fee,
		Total:         itemTotal + quote.Fee,
		Status:        StatusPending,
		PaymentMethod: paymentMethod,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, nil, err
	}

	log = log.With(zap.Uint("order_id", o.ID))

	payResp, err := s.createPayment(ctx, o)
	if err != nil {
		// The order stays pending with no payment id; the caller can
		// retry payment creation without placing a duplicate order.
		log.Error("payment creation failed, order left pending", zap.Error(err))
		return o, nil, fmt.Errorf("failed to create payment: %w", err)
	}

	// A stale cart lets the buyer re-place the same order, so one
	// failed clear gets a second attempt before we give up on it.
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		log.Warn("cart clear failed, retrying", zap.Error(err))
		if err := s.cartRepo.Clear(ctx, userID); err != nil {
			log.Error("failed to clear cart after order placement", zap.Error(err))
		}
	}

	log.Info("order placed",
		zap.Float64("total", o.Total),
		zap.String("payment_id", o.PaymentID),
	)

	return o, payResp, nil
}

// RetryPayment re-requests a payment artifact for an existing pending
// order. An already-attached payment is returned as-is so retries never
// create duplicate charges.
func (s *service) RetryPayment(ctx context.Context, userID, orderID uint) (*Order, *payment.PaymentResponse, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.UserID != userID {
		return nil, nil, ErrUnauthorized
	}
	if o.Status != StatusPending {
		return nil, nil, ErrNotPending
	}

	// An existing charge must be returned, never re-created. The
	// payments row carries the full artifact; the order's payment_id
	// alone still proves a charge exists when that row is missing.
	p, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	switch {
	case err == nil && p.ExternalID != "":
		return o, &payment.PaymentResponse{
			ExternalID: p.ExternalID,
			Status:     p.Status,
			Amount:     p.Amount,
			TicketURL:  p.TicketURL,
			QRCode:     p.QRCode,
		}, nil
	case err != nil && !errors.Is(err, payment.ErrPaymentNotFound):
		return nil, nil, err
	}

	if o.PaymentID != "" {
		return o, &payment.PaymentResponse{
			ExternalID: o.PaymentID,
			Status:     payment.StatusPending,
			Amount:     o.Total,
		}, nil
	}

	payResp, err := s.createPayment(ctx, o)
	if err != nil {
		return o, nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return o, payResp, nil
}

func (s *service) createPayment(ctx context.Context, o *Order) (*payment.PaymentResponse, error) {
	u, err := s.userRepo.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}

	payResp, err := s.gateway.CreatePayment(ctx, payment.CreatePaymentParams{
		OrderID:    o.ID,
		Amount:     o.Total,
		PayerEmail: u.Email,
		PayerName:  u.Name,
		Method:     o.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	// The payments row is written first: if the process dies between
	// the two writes, the retry path finds the row and returns the
	// existing charge instead of creating another.
	if err := s.paymentRepo.SavePayment(ctx, &payment.Payment{
		OrderID:    o.ID,
		ExternalID: payResp.ExternalID,
		Amount:     payResp.Amount,
		Status:     payResp.Status,
		Method:     o.PaymentMethod,
		TicketURL:  payResp.TicketURL,
		QRCode:     payResp.QRCode,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.SetPaymentID(ctx, o.ID, payResp.ExternalID); err != nil {
		return nil, err
	}
	o.PaymentID = payResp.ExternalID

	return payResp, nil
}

func (s *service) GetOrders(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetOrderDetail(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		return nil, ErrUnauthorized
	}

	return o, nil
}

// UpdateStatus applies an admin transition (paid→shipped,
// shipped→delivered, pending→cancelled).
func (s *service) UpdateStatus(ctx context.Context, orderID uint, status Status) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !o.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	return s.repo.UpdateStatus(ctx, orderID, o.Status, status)
}

// HandlePaymentNotification is the webhook reconciliation path.
// Notifications are at-least-once: duplicates and unknown references
// are acknowledged without any state change, and the pending→paid
// guard makes the stock decrement apply exactly once.
func (s *service) HandlePaymentNotification(ctx context.Context, n Notification) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "HandlePaymentNotification"),
		zap.String("notification_type", n.Type),
		zap.String("payment_id", n.Data.ID),
	)

	if n.Type != "payment" || n.Data.ID == "" {
		log.Debug("ignoring non-payment notification")
		return nil
	}

	eventID := string(n.ID)
	if eventID == "" {
		eventID = n.Data.ID
	}

	webhookID, duplicate, err := s.paymentRepo.RecordWebhookEvent(
		ctx, webhookProvider, eventID, n.Type, n.Data.ID, n.Raw,
	)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	if duplicate {
		log.Info("duplicate webhook delivery, skipping")
		return nil
	}

	info, err := s.gateway.GetPayment(ctx, n.Data.ID)
	if err != nil {
		_ = s.paymentRepo.MarkWebhookFailed(ctx, webhookID, err.Error())
		return fmt.Errorf("failed to fetch payment details: %w", err)
	}

	orderID, err := strconv.ParseUint(info.ExternalReference, 10, 64)
	if err != nil || orderID == 0 {
		// Not one of ours; acknowledge and move on.
		log.Warn("payment has no resolvable order reference",
			zap.String("external_reference", info.ExternalReference),
		)
		return s.paymentRepo.MarkWebhookProcessed(ctx, webhookID)
	}

	log = log.With(zap.Uint64("order_id", orderID), zap.String("payment_status", info.Status))

	switch info.Status {
	case payment.StatusApproved:
		applied, err := s.repo.MarkPaid(ctx, uint(orderID))
		if err != nil {
			_ = s.paymentRepo.MarkWebhookFailed(ctx, webhookID, err.Error())
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		if applied {
			log.Info("order paid, stock decremented")
		}

	case payment.StatusCancelled, payment.StatusRejected:
		applied, err := s.repo.MarkCancelled(ctx, uint(orderID))
		if err != nil {
			_ = s.paymentRepo.MarkWebhookFailed(ctx, webhookID, err.Error())
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if applied {
			log.Info("order cancelled")
		}

	default:
		log.Info("no transition for payment status")
	}

	return s.paymentRepo.MarkWebhookProcessed(ctx, webhookID)
}
