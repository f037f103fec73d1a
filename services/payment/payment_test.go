package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type scriptedMethods struct {
	results []error
	method  *stripe.PaymentMethod
	calls   int
}

func (s *scriptedMethods) Get(id string, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return nil, s.results[i]
	}
	if s.method != nil {
		return s.method, nil
	}
	return &stripe.PaymentMethod{ID: id}, nil
}

func verifier(m *scriptedMethods) *StripeVerifier {
	v := newStripeVerifier(m, nil)
	v.retryDelay = time.Millisecond
	v.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }
	return v
}

func TestVerifyPaymentMethod_OK(t *testing.T) {
	m := &scriptedMethods{}
	require.NoError(t, verifier(m).VerifyPaymentMethod(context.Background(), "pm_123"))
	assert.Equal(t, 1, m.calls)
}

func TestVerifyPaymentMethod_RetriesTransportFailureOnce(t *testing.T) {
	m := &scriptedMethods{results: []error{errors.New("connection reset")}}
	require.NoError(t, verifier(m).VerifyPaymentMethod(context.Background(), "pm_123"))
	assert.Equal(t, 2, m.calls)

	m = &scriptedMethods{results: []error{errors.New("reset"), errors.New("reset again")}}
	err := verifier(m).VerifyPaymentMethod(context.Background(), "pm_123")
	assert.True(t, IsKind(err, KindUnavailable))
	assert.Equal(t, 2, m.calls)
}

func TestVerifyPaymentMethod_StripeErrorIsNotRetried(t *testing.T) {
	m := &scriptedMethods{results: []error{&stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such PaymentMethod"}}}
	err := verifier(m).VerifyPaymentMethod(context.Background(), "pm_404")
	assert.True(t, IsKind(err, KindInvalid))
	assert.Contains(t, err.Error(), "No such PaymentMethod")
	assert.Equal(t, 1, m.calls)
}

func TestVerifyPaymentMethod_Malformed(t *testing.T) {
	m := &scriptedMethods{}
	err := verifier(m).VerifyPaymentMethod(context.Background(), "card_123")
	assert.True(t, IsKind(err, KindInvalid))
	assert.Equal(t, 0, m.calls)
}

func TestVerifyPaymentMethod_ExpiredCard(t *testing.T) {
	m := &scriptedMethods{method: &stripe.PaymentMethod{
		ID:   "pm_old",
		Card: &stripe.PaymentMethodCard{ExpMonth: 5, ExpYear: 2024, Last4: "4242"},
	}}
	err := verifier(m).VerifyPaymentMethod(context.Background(), "pm_old")
	assert.True(t, IsKind(err, KindInvalid))
	assert.Contains(t, err.Error(), "4242")

	m.method.Card.ExpMonth = 6
	assert.NoError(t, verifier(m).VerifyPaymentMethod(context.Background(), "pm_old"))
}
