package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yosefkovan/storefront/internal/service"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/httputil"
	"github.com/yosefkovan/storefront/pkg/middleware"
	"github.com/yosefkovan/storefront/pkg/validator"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// AddReviewRequest is the JSON request body for posting a review.
type AddReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"max=5000"`
}

// ListReviews handles GET /api/v1/products/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	result, err := h.service.ListByProduct(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// AddReview handles POST /api/v1/products/{id}/reviews
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddReviewRequest
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

	review, err := h.service.AddReview(r.Context(), productID.String(), userID, service.AddReviewInput{
		Rating: req.Rating,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}
