package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yosefkovan/storefront/internal/service"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/httputil"
	"github.com/yosefkovan/storefront/pkg/middleware"
	"github.com/yosefkovan/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for the session cart.
//
// The cart is keyed by the session cookie set by the session middleware;
// no authentication is required.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateItemRequest is the JSON request body for setting a cart line quantity.
// A quantity of zero removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.Internal(errors.New("session not established")), h.logger)
		return "", false
	}
	return sessionID, true
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddItemRequest
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

	cart, err := h.service.AddItem(r.Context(), sessionID, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateItem handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateItemRequest
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

	cart, err := h.service.UpdateItemQuantity(r.Context(), sessionID, productID.String(), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sessionID, productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}
