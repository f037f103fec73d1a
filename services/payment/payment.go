package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

const (
	KindInvalid     = "invalid_payment_method"
	KindUnavailable = "payment_unavailable"
)

// Error is returned when a payment method cannot be used for a direct request.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a payment Error of the given kind.
func IsKind(err error, kind string) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// paymentMethodGetter is the part of the Stripe client used here.
type paymentMethodGetter interface {
	Get(id string, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error)
}

// StripeVerifier checks that a payment method exists and is usable before a
// direct request carrying it is sent to the gateway.
type StripeVerifier struct {
	methods    paymentMethodGetter
	logger     *zap.Logger
	retryDelay time.Duration
	now        func() time.Time
}

func NewStripeVerifier(secretKey string, logger *zap.Logger) *StripeVerifier {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return newStripeVerifier(sc.PaymentMethods, logger)
}

func newStripeVerifier(methods paymentMethodGetter, logger *zap.Logger) *StripeVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeVerifier{
		methods:    methods,
		logger:     logger,
		retryDelay: 500 * time.Millisecond,
		now:        time.Now,
	}
}

// VerifyPaymentMethod fetches the method from Stripe. A transport failure is
// retried once; a Stripe API error means the method is unusable.
func (v *StripeVerifier) VerifyPaymentMethod(ctx context.Context, paymentMethodID string) error {
	id := strings.TrimSpace(paymentMethodID)
	if !strings.HasPrefix(id, "pm_") {
		return &Error{Kind: KindInvalid, Message: fmt.Sprintf("%q is not a payment method id", paymentMethodID)}
	}

	var pm *stripe.PaymentMethod
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		params := &stripe.PaymentMethodParams{}
		params.Context = ctx
		pm, err = v.methods.Get(id, params)
		if err == nil {
			break
		}
		var se *stripe.Error
		if errors.As(err, &se) {
			v.logger.Info("payment method rejected by stripe",
				zap.String("paymentMethodID", id),
				zap.String("code", string(se.Code)))
			return &Error{Kind: KindInvalid, Message: se.Msg, Err: err}
		}
		if attempt == 0 {
			v.logger.Warn("stripe lookup failed, retrying", zap.String("paymentMethodID", id), zap.Error(err))
			select {
			case <-ctx.Done():
				return &Error{Kind: KindUnavailable, Message: "payment verification cancelled", Err: ctx.Err()}
			case <-time.After(v.retryDelay):
			}
		}
	}
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: "could not reach payment provider", Err: err}
	}

	if pm.Card != nil && cardExpired(pm.Card.ExpYear, pm.Card.ExpMonth, v.now()) {
		return &Error{Kind: KindInvalid, Message: fmt.Sprintf("card ending %s has expired", pm.Card.Last4)}
	}
	return nil
}

func cardExpired(year, month int64, now time.Time) bool {
	if year == 0 || month == 0 {
		return false
	}
	// Cards are valid through the last day of their expiry month.
	firstInvalid := time.Date(int(year), time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(firstInvalid)
}
