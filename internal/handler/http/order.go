package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/internal/service"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/httputil"
	"github.com/yosefkovan/storefront/pkg/middleware"
	"github.com/yosefkovan/storefront/pkg/pagination"
	"github.com/yosefkovan/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// CheckoutRequest is the JSON request body for placing an order.
type CheckoutRequest struct {
	NameOnCard    string `json:"name_on_card" validate:"required,max=200"`
	CardNumber    string `json:"card_number" validate:"required,credit_card"`
	ExpiryMonth   int    `json:"expiry_month" validate:"required,gte=1,lte=12"`
	ExpiryYear    int    `json:"expiry_year" validate:"required,gte=2000"`
	CVV           string `json:"cvv" validate:"required,len=3"`
	Country       string `json:"country" validate:"required,max=100"`
	City          string `json:"city" validate:"required,max=100"`
	StreetAddress string `json:"street_address" validate:"required,max=300"`
	ZipCode       string `json:"zip_code" validate:"required,max=20"`
}

// Checkout handles POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.Internal(errors.New("session not established")), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CheckoutRequest
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

	order, err := h.service.PlaceOrder(r.Context(), sessionID, userID, service.CheckoutInput{
		NameOnCard:    req.NameOnCard,
		CardNumber:    req.CardNumber,
		ExpiryMonth:   req.ExpiryMonth,
		ExpiryYear:    req.ExpiryYear,
		CVV:           req.CVV,
		Country:       req.Country,
		City:          req.City,
		StreetAddress: req.StreetAddress,
		ZipCode:       req.ZipCode,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	role := middleware.RoleFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), id.String(), userID, role)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders
//
// Returns the authenticated user's own orders, newest first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	params := pagination.FromRequest(r)

	orders, total, err := h.service.ListByUser(r.Context(), userID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, params.Page, params.PerPage))
}

// AdminListOrders handles GET /api/v1/admin/orders
func (h *OrderHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.OrderFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := r.URL.Query().Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if v != domain.OrderStatusPlaced && v != domain.OrderStatusShipped && v != domain.OrderStatusDelivered {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "status must be one of: placed, shipped, delivered"},
			})
			return
		}
		filter.Status = &v
	}

	orders, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}
