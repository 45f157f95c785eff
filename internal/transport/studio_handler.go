package transport

import (
	"errors"
	"net/http"

	"inkthread/internal/canvas"
	"inkthread/internal/middleware"
	"inkthread/internal/repository"
	"inkthread/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSessionRequest starts a design session, optionally with a product
type CreateSessionRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
}

// SelectProductRequest switches a session to another product
type SelectProductRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// SelectionRequest carries a color or size choice
type SelectionRequest struct {
	Value string `json:"value" validate:"required"`
}

// QuantityRequest carries the order quantity. Values below 1 are clamped,
// not rejected.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// TextElementRequest adds a text annotation to the canvas
type TextElementRequest struct {
	Text       string `json:"text" validate:"required"`
	Color      string `json:"color"`
	FontSize   int    `json:"font_size" validate:"omitempty,gte=1"`
	FontFamily string `json:"font_family"`
}

// ShapeElementRequest adds a rectangle or circle to the canvas
type ShapeElementRequest struct {
	Shape string `json:"shape" validate:"required,oneof=rectangle circle"`
	Color string `json:"color"`
}

// SaveDesignRequest names a design on save; the name is optional
type SaveDesignRequest struct {
	Name string `json:"name"`
}

// StudioHandler handles HTTP requests for design sessions and saved designs
type StudioHandler struct {
	studioService service.StudioService
	logger        *zap.Logger
}

// NewStudioHandler creates a new StudioHandler
func NewStudioHandler(studioService service.StudioService, logger *zap.Logger) *StudioHandler {
	return &StudioHandler{
		studioService: studioService,
		logger:        logger,
	}
}

// RegisterRoutes registers all studio routes
func (h *StudioHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/studio/sessions", func(r chi.Router) {
		// Sessions are anonymous until save or checkout
		r.Post("/", h.CreateSession)
		r.Get("/{sessionID}", h.GetSession)
		r.Put("/{sessionID}/product", h.SelectProduct)
		r.Put("/{sessionID}/color", h.SelectColor)
		r.Put("/{sessionID}/size", h.SelectSize)
		r.Put("/{sessionID}/quantity", h.SetQuantity)
		r.Post("/{sessionID}/elements/text", h.AddTextElement)
		r.Post("/{sessionID}/elements/shape", h.AddShapeElement)
		r.Get("/{sessionID}/render", h.RenderSession)

		// Persistence requires an authenticated shopper
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/{sessionID}/save", h.SaveDesign)
			r.Post("/{sessionID}/cart", h.AddToCart)
		})
	})

	r.Route("/api/designs", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListDesigns)
		r.Post("/{id}/open", h.OpenDesign)
		r.Delete("/{id}", h.DeleteDesign)
	})
}

// CreateSession handles starting a new design session
func (h *StudioHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := uuid.Nil
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		productID = id
	}

	view, err := h.studioService.CreateSession(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to create design session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.Info("Design session created", zap.String("session_id", view.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// GetSession handles fetching the current session state
func (h *StudioHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.studioService.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// SelectProduct handles switching the session's product
func (h *StudioHandler) SelectProduct(w http.ResponseWriter, r *http.Request) {
	var req SelectProductRequest
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

	view, err := h.studioService.SelectProduct(r.Context(), chi.URLParam(r, "sessionID"), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondSessionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// SelectColor handles a garment color choice
func (h *StudioHandler) SelectColor(w http.ResponseWriter, r *http.Request) {
	h.applySelection(w, r, h.studioService.SelectColor)
}

// SelectSize handles a garment size choice
func (h *StudioHandler) SelectSize(w http.ResponseWriter, r *http.Request) {
	h.applySelection(w, r, h.studioService.SelectSize)
}

func (h *StudioHandler) applySelection(w http.ResponseWriter, r *http.Request, apply func(sessionID, value string) (*service.SessionView, error)) {
	var req SelectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := apply(chi.URLParam(r, "sessionID"), req.Value)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// SetQuantity handles changing the order quantity
func (h *StudioHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studioService.SetQuantity(chi.URLParam(r, "sessionID"), req.Quantity)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddTextElement handles adding a text annotation
func (h *StudioHandler) AddTextElement(w http.ResponseWriter, r *http.Request) {
	var req TextElementRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studioService.AddTextElement(chi.URLParam(r, "sessionID"), req.Text, req.Color, req.FontSize, req.FontFamily)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddShapeElement handles adding a shape annotation
func (h *StudioHandler) AddShapeElement(w http.ResponseWriter, r *http.Request) {
	var req ShapeElementRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studioService.AddShapeElement(chi.URLParam(r, "sessionID"), req.Shape, req.Color)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RenderSession handles rendering the session's canvas as a PNG
func (h *StudioHandler) RenderSession(w http.ResponseWriter, r *http.Request) {
	png, err := h.studioService.RenderPNG(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// SaveDesign handles persisting the session's design
func (h *StudioHandler) SaveDesign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req SaveDesignRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	design, err := h.studioService.SaveDesign(r.Context(), chi.URLParam(r, "sessionID"), req.Name, userID)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.logger.Info("Design saved",
		zap.String("design_id", design.ID.String()),
		zap.String("user_id", userID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, design)
}

// AddToCart handles turning the session into a cart line item
func (h *StudioHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	item, err := h.studioService.AddToCart(r.Context(), chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.logger.Info("Design session added to cart",
		zap.String("cart_item_id", item.ID.String()),
		zap.String("user_id", userID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// ListDesigns handles listing the user's saved designs
func (h *StudioHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	designs, err := h.studioService.ListDesigns(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list designs", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to list designs")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, designs)
}

// OpenDesign handles reopening a saved design in a fresh session
func (h *StudioHandler) OpenDesign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	designID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid design ID")
		return
	}

	view, err := h.studioService.LoadDesign(r.Context(), designID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDesignNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "design not found")
		case errors.Is(err, service.ErrDesignNotOwned):
			middleware.RespondWithError(w, http.StatusForbidden, "design belongs to another user")
		default:
			h.respondSessionError(w, err)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// DeleteDesign handles removing a saved design
func (h *StudioHandler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	designID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid design ID")
		return
	}

	if err := h.studioService.DeleteDesign(r.Context(), designID, userID); err != nil {
		if errors.Is(err, service.ErrDesignNotOwned) {
			middleware.RespondWithError(w, http.StatusForbidden, "design belongs to another user")
			return
		}
		h.logger.Error("Failed to delete design", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete design")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondSessionError maps session and canvas errors to HTTP statuses
func (h *StudioHandler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "design session not found")
	case errors.Is(err, service.ErrNotAuthenticated):
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrDesignNotOwned):
		middleware.RespondWithError(w, http.StatusForbidden, "design belongs to another user")
	case errors.Is(err, canvas.ErrInvalidSelection),
		errors.Is(err, canvas.ErrUnknownShape):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, canvas.ErrNoProduct),
		errors.Is(err, canvas.ErrEmptyDesign):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Studio operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "operation failed")
	}
}
