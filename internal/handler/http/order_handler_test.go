package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

func checkoutBody(t *testing.T) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(CheckoutRequest{
		NameOnCard:    "Dana Cohen",
		CardNumber:    "4242424242424242",
		ExpiryMonth:   12,
		ExpiryYear:    2030,
		CVV:           "123",
		Country:       "Israel",
		City:          "Tel Aviv",
		StreetAddress: "1 Rothschild Blvd",
		ZipCode:       "6688101",
	})
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:       userID,
		Username: "dana",
		Email:    "dana@example.com",
		Role:     domain.RoleUser,
	}
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:           orderID,
		UserID:       userID,
		Status:       domain.OrderStatusPlaced,
		TotalPayment: 9000,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCheckout_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(t)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_Success(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("GetByID", mock.Anything, userID).Return(sampleUser(), nil)
	env.carts.On("Get", mock.Anything, sessionID).Return(storedCart(), nil)
	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)
	env.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	env.carts.On("Delete", mock.Anything, sessionID).Return(nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(t))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(9000), resp.Data.TotalPayment)
	assert.Equal(t, userID, resp.Data.UserID)

	env.orders.AssertExpectations(t)
	env.carts.AssertExpectations(t)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("GetByID", mock.Anything, userID).Return(sampleUser(), nil)
	env.carts.On("Get", mock.Anything, sessionID).Return(nil, apperrors.ErrNotFound)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(t))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_InsufficientInventory(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("GetByID", mock.Anything, userID).Return(sampleUser(), nil)
	env.carts.On("Get", mock.Anything, sessionID).Return(storedCart(), nil)
	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)
	env.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(apperrors.Conflict("insufficient inventory for Walnut Desk Lamp"))

	req := sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(t))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	// The cart must survive a failed checkout.
	env.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCheckout_InvalidCardNumber(t *testing.T) {
	env := newTestEnv(t)

	b, _ := json.Marshal(CheckoutRequest{
		NameOnCard:    "Dana Cohen",
		CardNumber:    "1234",
		ExpiryMonth:   12,
		ExpiryYear:    2030,
		CVV:           "123",
		Country:       "Israel",
		City:          "Tel Aviv",
		StreetAddress: "1 Rothschild Blvd",
		ZipCode:       "6688101",
	})
	req := sessionRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestGetOrder_Owner(t *testing.T) {
	env := newTestEnv(t)

	env.orders.On("GetByID", mock.Anything, orderID).Return(sampleOrder(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrder_OtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)

	env.orders.On("GetByID", mock.Anything, orderID).Return(sampleOrder(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListOrders_OwnOnly(t *testing.T) {
	env := newTestEnv(t)

	env.orders.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.UserID != nil && *f.UserID == userID
	})).Return([]domain.Order{*sampleOrder()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminListOrders_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=bogus", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
