package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/internal/service"
	"github.com/yosefkovan/storefront/pkg/httputil"
	"github.com/yosefkovan/storefront/pkg/pagination"
	"github.com/yosefkovan/storefront/pkg/validator"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
	products   *service.ProductService
	logger     *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(categories *service.CategoryService, products *service.ProductService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// CategoryRequest is the JSON request body for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.categories.GetByID(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// ListCategoryProducts handles GET /api/v1/categories/{id}/products
func (h *CategoryHandler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Resolve the category first so an unknown id is a 404, not an empty page.
	if _, err := h.categories.GetByID(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.FromRequest(r)
	categoryID := id.String()
	filter := repository.ProductFilter{
		CategoryID: &categoryID,
		Page:       params.Page,
		PerPage:    params.PerPage,
	}

	products, total, err := h.products.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), service.CategoryInput{Name: req.Name})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id.String(), service.CategoryInput{Name: req.Name})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}
//
// Deleting a category removes its products and their reviews.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
