// Package orders implements the order/payment reconciliation workflow: one
// engine coordinating checkout initiation against the payment gateway and the
// asynchronous success/fail/cancel callbacks that resolve the payment later.
package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/nayeemx/gymstore/internal/events"
	"github.com/nayeemx/gymstore/internal/gateway"
	"github.com/nayeemx/gymstore/internal/metrics"
	"github.com/nayeemx/gymstore/internal/models"
)

// Domain describes one product line. The same engine serves courses and
// accessories; only the descriptor differs.
type Domain struct {
	Name            string
	ProductCategory string
	ProductProfile  string
}

var (
	DomainCourse = Domain{
		Name:            "course",
		ProductCategory: "Fitness Course",
		ProductProfile:  "gym course",
	}
	DomainAccessories = Domain{
		Name:            "accessories",
		ProductCategory: "Gym Accessories",
		ProductProfile:  "gym accessories",
	}
)

type SessionCreator interface {
	CreateSession(ctx context.Context, req gateway.SessionRequest) (*gateway.Session, error)
}

// Publisher receives lifecycle events. Implemented by events.Producer; nil in
// the engine means events are off.
type Publisher interface {
	OrderCreated(ctx context.Context, event events.OrderCreated)
	PaymentResolved(ctx context.Context, event events.PaymentResolved)
}

type EngineConfig struct {
	Domain       Domain
	Store        Store
	Gateway      SessionCreator
	Events       Publisher
	Metrics      *metrics.Metrics
	CallbackBase string
	Currency     string
	Logger       *zap.Logger
}

type Engine struct {
	domain       Domain
	store        Store
	gateway      SessionCreator
	events       Publisher
	metrics      *metrics.Metrics
	callbackBase string
	currency     string
	log          *zap.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Currency == "" {
		cfg.Currency = "BDT"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{
		domain:       cfg.Domain,
		store:        cfg.Store,
		gateway:      cfg.Gateway,
		events:       cfg.Events,
		metrics:      cfg.Metrics,
		callbackBase: cfg.CallbackBase,
		currency:     cfg.Currency,
		log:          cfg.Logger.With(zap.String("domain", cfg.Domain.Name)),
	}
}

func (e *Engine) Domain() Domain { return e.domain }

type InitiateInput struct {
	UserID        string
	Product       models.ProductRef
	Shipping      models.ShippingInfo
	TotalAmount   int64
	PaymentMethod string
}

func (in InitiateInput) validate() error {
	switch {
	case in.UserID == "":
		return fmt.Errorf("%w: missing userId", ErrInvalidInput)
	case in.Product.Title == "":
		return fmt.Errorf("%w: missing product title", ErrInvalidInput)
	case in.Shipping.Name == "" || in.Shipping.Email == "":
		return fmt.Errorf("%w: missing shipping name or email", ErrInvalidInput)
	case in.TotalAmount <= 0:
		return fmt.Errorf("%w: totalAmount must be positive", ErrInvalidInput)
	}
	return nil
}

type InitiateResult struct {
	RedirectURL   string
	OrderID       uuid.UUID
	TransactionID string
}

// Initiate reserves a Pending order row, creates the hosted-checkout session
// and returns the gateway page the browser should be sent to. The row is
// reserved before the gateway call so a callback can always resolve to an
// order; a failed gateway call releases the reservation again.
func (e *Engine) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	trnID, err := newTransactionID()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}

	method := in.PaymentMethod
	if method == "" {
		method = "gateway"
	}

	order := &models.Order{
		Domain:        e.domain.Name,
		UserID:        in.UserID,
		Product:       datatypes.NewJSONType(in.Product),
		Shipping:      in.Shipping,
		OrderStatus:   models.OrderPending,
		PaymentStatus: models.PaymentPending,
		PaymentMethod: method,
		TotalAmount:   in.TotalAmount,
		PaymentID:     trnID,
	}
	if err := e.store.Create(ctx, order); err != nil {
		return nil, err
	}

	start := time.Now()
	session, err := e.gateway.CreateSession(ctx, e.sessionRequest(trnID, in))
	if e.metrics != nil {
		e.metrics.GatewaySessionSeconds.WithLabelValues(e.domain.Name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if delErr := e.store.Delete(ctx, order.ID); delErr != nil {
			// The sweeper expires the stale reservation later.
			e.log.Warn("release reserved order failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(delErr),
			)
		}
		e.log.Error("gateway session creation failed", zap.String("tran_id", trnID), zap.Error(err))
		return nil, err
	}

	e.log.Info("order initiated",
		zap.String("order_id", order.ID.String()),
		zap.String("tran_id", trnID),
		zap.Int64("total_amount", in.TotalAmount),
	)
	if e.metrics != nil {
		e.metrics.OrdersInitiated.WithLabelValues(e.domain.Name).Inc()
	}
	if e.events != nil {
		e.events.OrderCreated(ctx, events.OrderCreated{
			EventID:       uuid.New().String(),
			Domain:        e.domain.Name,
			OrderID:       order.ID.String(),
			UserID:        in.UserID,
			TransactionID: trnID,
			TotalAmount:   in.TotalAmount,
			Timestamp:     time.Now().UTC(),
		})
	}

	return &InitiateResult{
		RedirectURL:   session.CheckoutURL,
		OrderID:       order.ID,
		TransactionID: trnID,
	}, nil
}

func (e *Engine) sessionRequest(trnID string, in InitiateInput) gateway.SessionRequest {
	base := fmt.Sprintf("%s/api/gym/%s/order/payment", e.callbackBase, e.domain.Name)
	return gateway.SessionRequest{
		TransactionID:    trnID,
		Amount:           in.TotalAmount,
		Currency:         e.currency,
		SuccessURL:       fmt.Sprintf("%s/success/%s", base, trnID),
		FailURL:          fmt.Sprintf("%s/fail/%s", base, trnID),
		CancelURL:        fmt.Sprintf("%s/cancel/%s", base, trnID),
		ProductName:      in.Product.Title,
		ProductCategory:  e.domain.ProductCategory,
		ProductProfile:   e.domain.ProductProfile,
		CustomerName:     in.Shipping.Name,
		CustomerEmail:    in.Shipping.Email,
		CustomerPhone:    in.Shipping.Phone,
		CustomerAddress:  in.Shipping.Address,
		CustomerCity:     in.Shipping.City,
		CustomerPostcode: in.Shipping.Postcode,
	}
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
	OutcomeCancel  Outcome = "cancel"
)

// Resolution is what the callback handler tells the browser via the redirect
// query string. It is never an HTTP error: the caller is a user's browser
// mid-checkout, not an API client.
type Resolution string

const (
	ResolutionSuccess Resolution = "success"
	ResolutionFailed  Resolution = "failed"
	ResolutionError   Resolution = "error"
)

// HandleOutcome applies one gateway callback to the order identified by the
// transaction id. Transitions go through a conditional update that only fires
// while the payment is still Pending, so redelivered and concurrent callbacks
// cannot double-apply. A duplicate success still resolves to "success".
func (e *Engine) HandleOutcome(ctx context.Context, trnID string, outcome Outcome) Resolution {
	resolution := e.resolveOutcome(ctx, trnID, outcome)
	if e.metrics != nil {
		e.metrics.PaymentCallbacks.WithLabelValues(e.domain.Name, string(outcome), string(resolution)).Inc()
	}
	return resolution
}

func (e *Engine) resolveOutcome(ctx context.Context, trnID string, outcome Outcome) Resolution {
	var (
		payment     models.PaymentStatus
		orderStatus *models.OrderStatus
		resolved    Resolution
	)

	switch outcome {
	case OutcomeSuccess:
		confirmed := models.OrderConfirmed
		payment, orderStatus, resolved = models.PaymentPaid, &confirmed, ResolutionSuccess
	case OutcomeFail:
		payment, resolved = models.PaymentFailed, ResolutionFailed
	case OutcomeCancel:
		// Cancellation closes both axes: the payment failed and the order
		// will not be fulfilled.
		cancelled := models.OrderCancelled
		payment, orderStatus, resolved = models.PaymentFailed, &cancelled, ResolutionFailed
	default:
		e.log.Warn("unknown payment outcome", zap.String("tran_id", trnID), zap.String("outcome", string(outcome)))
		return ResolutionError
	}

	updated, err := e.store.ResolvePayment(ctx, trnID, payment, orderStatus)
	if err != nil {
		e.log.Error("resolve payment", zap.String("tran_id", trnID), zap.Error(err))
		return ResolutionError
	}
	if updated {
		e.log.Info("payment resolved",
			zap.String("tran_id", trnID),
			zap.String("outcome", string(outcome)),
			zap.String("payment_status", string(payment)),
		)
		e.publishResolved(ctx, trnID, outcome, payment, orderStatus)
		return resolved
	}

	// Nothing transitioned: the transaction id is unknown or the order was
	// already resolved. A redelivered success is answered as success.
	if outcome == OutcomeSuccess {
		order, err := e.store.FindByPaymentID(ctx, trnID)
		if err == nil && order.PaymentStatus == models.PaymentPaid {
			return ResolutionSuccess
		}
	}
	e.log.Warn("payment callback did not modify any order", zap.String("tran_id", trnID), zap.String("outcome", string(outcome)))
	return ResolutionError
}

func (e *Engine) publishResolved(ctx context.Context, trnID string, outcome Outcome, payment models.PaymentStatus, orderStatus *models.OrderStatus) {
	if e.events == nil {
		return
	}
	event := events.PaymentResolved{
		EventID:       uuid.New().String(),
		Domain:        e.domain.Name,
		TransactionID: trnID,
		Outcome:       string(outcome),
		PaymentStatus: string(payment),
		Timestamp:     time.Now().UTC(),
	}
	if orderStatus != nil {
		event.OrderStatus = string(*orderStatus)
	}
	e.events.PaymentResolved(ctx, event)
}

// Capture is the manual confirmation flow, independent of payment callbacks.
// It flips orderStatus to Confirmed and leaves paymentStatus alone.
func (e *Engine) Capture(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := e.store.Confirm(ctx, orderID)
	if err != nil {
		return nil, err
	}
	e.log.Info("order captured", zap.String("order_id", orderID.String()))
	return order, nil
}

// newTransactionID returns 16 random bytes hex-encoded. The id doubles as the
// only correlation key the callbacks carry, so it has to be unpredictable.
func newTransactionID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
