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
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/httputil"
)

const (
	productID  = "550e8400-e29b-41d4-a716-446655440001"
	categoryID = "550e8400-e29b-41d4-a716-446655440002"
	userID     = "550e8400-e29b-41d4-a716-446655440003"
	adminID    = "550e8400-e29b-41d4-a716-446655440004"
	orderID    = "550e8400-e29b-41d4-a716-446655440005"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          productID,
		Name:        "Walnut Desk Lamp",
		Slug:        "walnut-desk-lamp",
		Description: "A warm desk lamp",
		Price:       4500,
		Inventory:   10,
		CategoryID:  categoryID,
		ImageURL:    "/images/products/" + productID + "/lamp.jpg",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// --- Public catalog ---

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("List", mock.Anything, mock.Anything).
		Return([]domain.Product{*sampleProduct()}, 1, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestListProducts_InvalidPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?page=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListProducts_PriceRangeInverted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=5000&max_price=100", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)
	env.reviews.On("Summary", mock.Anything, productID).Return(4.5, 2, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("GetByID", mock.Anything, productID).
		Return(nil, apperrors.NotFound("product", productID))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProduct_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("Search", mock.Anything, "lamp", 5).
		Return([]domain.Product{*sampleProduct()}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=lamp", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
}

// --- Admin CRUD ---

func createProductBody(t *testing.T) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(CreateProductRequest{
		Name:       "Walnut Desk Lamp",
		Price:      4500,
		Inventory:  10,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestCreateProduct_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", createProductBody(t)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProduct_RequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", createProductBody(t))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, userID, domain.RoleUser))

	rec := env.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_AdminSuccess(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", createProductBody(t))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.products.AssertExpectations(t)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	b, _ := json.Marshal(CreateProductRequest{Price: 4500})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUpdateProduct_Admin(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)
	env.products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	b, _ := json.Marshal(map[string]any{"price": 5200})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID, bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.products.AssertExpectations(t)
}

func TestDeleteProduct_Admin(t *testing.T) {
	env := newTestEnv(t)

	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)
	env.products.On("Delete", mock.Anything, productID).Return(nil)
	env.store.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+productID, nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.products.AssertExpectations(t)
}

// --- Categories ---

func TestListCategories(t *testing.T) {
	env := newTestEnv(t)

	env.categories.On("List", mock.Anything).
		Return([]domain.Category{{ID: categoryID, Name: "Lighting", Slug: "lighting"}}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCategoryProducts_UnknownCategory(t *testing.T) {
	env := newTestEnv(t)

	env.categories.On("GetByID", mock.Anything, categoryID).
		Return(nil, apperrors.NotFound("category", categoryID))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/categories/"+categoryID+"/products", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateCategory_Conflict(t *testing.T) {
	env := newTestEnv(t)

	env.categories.On("Create", mock.Anything, mock.AnythingOfType("*domain.Category")).
		Return(apperrors.AlreadyExists("category", "name", "Lighting"))

	b, _ := json.Marshal(CategoryRequest{Name: "Lighting"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/categories", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteCategory_Admin(t *testing.T) {
	env := newTestEnv(t)

	env.categories.On("Delete", mock.Anything, categoryID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/categories/"+categoryID, nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, adminID, domain.RoleAdmin))

	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.categories.AssertExpectations(t)
}
