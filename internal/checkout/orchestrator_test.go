package checkout

import (
	"context"
	"errors"
	"testing"

	"quitanda/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCart is a mock implementation of the Cart dependency.
type MockCart struct {
	mock.Mock
}

func (m *MockCart) TotalPrice() decimal.Decimal {
	args := m.Called()
	return args.Get(0).(decimal.Decimal)
}

func (m *MockCart) CreateOrder(ctx context.Context, addressID int64, paymentMethod string, deliveryFee decimal.Decimal) (int64, error) {
	args := m.Called(ctx, addressID, paymentMethod, deliveryFee)
	return args.Get(0).(int64), args.Error(1)
}

func fee() decimal.Decimal {
	return decimal.RequireFromString("8.00")
}

func TestPlace_RequiresAddress(t *testing.T) {
	cart := new(MockCart)
	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	_, err := o.Place(context.Background(), nil, "pix")

	assert.ErrorIs(t, err, model.ErrNoAddress)
	cart.AssertNotCalled(t, "CreateOrder",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlace_RequiresPersistedAddress(t *testing.T) {
	cart := new(MockCart)
	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	_, err := o.Place(context.Background(), &model.Address{}, "pix")

	assert.ErrorIs(t, err, model.ErrNoAddress)
}

func TestPlace_Success(t *testing.T) {
	cart := new(MockCart)
	cart.On("CreateOrder", mock.Anything, int64(7), "pix", fee()).
		Return(int64(123), nil).Once()

	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	orderID, err := o.Place(context.Background(), &model.Address{ID: 7}, "pix")

	require.NoError(t, err)
	assert.Equal(t, int64(123), orderID)
	cart.AssertExpectations(t)
}

func TestPlace_EmptyCartSurfaces(t *testing.T) {
	cart := new(MockCart)
	cart.On("CreateOrder", mock.Anything, int64(7), "pix", fee()).
		Return(int64(0), nil).Once()

	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	_, err := o.Place(context.Background(), &model.Address{ID: 7}, "pix")

	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestPlace_BackendFailurePropagates(t *testing.T) {
	backendErr := errors.New("cart state changed")

	cart := new(MockCart)
	cart.On("CreateOrder", mock.Anything, int64(7), "dinheiro", fee()).
		Return(int64(0), backendErr).Once()

	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	_, err := o.Place(context.Background(), &model.Address{ID: 7}, "dinheiro")

	assert.ErrorIs(t, err, backendErr)
}

func TestSummary(t *testing.T) {
	cart := new(MockCart)
	cart.On("TotalPrice").Return(decimal.RequireFromString("23.47"))

	o := NewOrchestrator(cart, fee(), zerolog.Nop())

	s := o.Summary()

	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("23.47")))
	assert.True(t, s.DeliveryFee.Equal(fee()))
	assert.True(t, s.Total.Equal(decimal.RequireFromString("31.47")))
}
