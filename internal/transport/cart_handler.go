package transport

import (
	"errors"
	"net/http"

	"inkthread/internal/middleware"
	"inkthread/internal/repository"
	"inkthread/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest adds a stock product to the cart. Quantities below 1
// are not rejected; the cart clamps them to 1.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
}

// UpdateCartItemRequest changes a line item's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse wraps the cart items with the running total
type CartResponse struct {
	Items interface{} `json:"items"`
	Total float64     `json:"total"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

// GetCart handles listing the user's cart with its total
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	items, total, err := h.cartService.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list cart items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: items, Total: total})
}

// AddItem handles adding a stock product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	item, err := h.cartService.AddStockItem(r.Context(), userID, productID, req.Quantity, req.Size, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrSelectionNotListed):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("Failed to add cart item", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	h.logger.Info("Cart item added",
		zap.String("cart_item_id", item.ID.String()),
		zap.String("user_id", userID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItem handles changing a line item's quantity
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item ID")
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cartService.UpdateQuantity(r.Context(), userID, itemID, req.Quantity); err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart item updated"})
}

// RemoveItem handles deleting a line item
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item ID")
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), userID, itemID); err != nil {
		h.respondCartError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCart handles emptying the user's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	case errors.Is(err, service.ErrCartItemNotOwned):
		middleware.RespondWithError(w, http.StatusForbidden, "cart item belongs to another user")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "operation failed")
	}
}

// requireUser pulls the authenticated user id from the request context
func requireUser(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}
