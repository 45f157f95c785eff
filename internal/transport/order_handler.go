package transport

import (
	"errors"
	"net/http"

	"inkthread/internal/domain"
	"inkthread/internal/middleware"
	"inkthread/internal/repository"
	"inkthread/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderDetailResponse pairs an order with its line items
type OrderDetailResponse struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
}

// OrderHandler handles HTTP requests for checkout and order tracking
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// OrderStatusRequest carries a fulfilment stage change
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered"`
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)

		// Fulfilment is an admin concern
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Put("/{id}/status", h.UpdateStatus)
		})
	})
}

// Checkout handles turning the user's cart into a pending order
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.orderService.Checkout(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total))
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles listing the user's orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder handles fetching one order with its items
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, items, err := h.orderService.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrOrderNotOwned):
			middleware.RespondWithError(w, http.StatusForbidden, "order belongs to another user")
		default:
			h.logger.Error("Failed to get order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderDetailResponse{Order: order, Items: items})
}

// UpdateStatus handles an admin advancing an order's fulfilment stage
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req OrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidStatusChange):
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", req.Status))
	w.WriteHeader(http.StatusNoContent)
}
