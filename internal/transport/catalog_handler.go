package transport

import (
	"net/http"
	"strconv"

	"inkthread/internal/middleware"
	"inkthread/internal/repository"
	"inkthread/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents the admin product create/update payload
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"base_price" validate:"gte=0"`
	CategoryID  string   `json:"category_id" validate:"required,uuid"`
	Colors      []string `json:"colors" validate:"required,min=1"`
	Sizes       []string `json:"sizes" validate:"required,min=1"`
	MockupURL   string   `json:"mockup_url"`
}

// CategoryRequest represents the admin category create payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// ProductListResponse wraps a product page with its total count
type ProductListResponse struct {
	Products interface{} `json:"products"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.ListProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{id}", h.GetProduct)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})
}

// ListProducts handles paginated product listing
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))

	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		categoryID = &id
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// SearchProducts handles product search by name or description
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	products, total, err := h.catalogService.SearchProducts(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct handles fetching a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles admin product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		CategoryID:  categoryID,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		MockupURL:   req.MockupURL,
	})
	if err != nil {
		if err == service.ErrInvalidProduct {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles admin product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		CategoryID:  categoryID,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		MockupURL:   req.MockupURL,
	})
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if err == service.ErrInvalidProduct {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles admin product deletion
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles category listing
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory handles admin category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// DeleteCategory handles admin category deletion
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		if err == service.ErrCategoryInUse {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
