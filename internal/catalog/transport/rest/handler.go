// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	catalogerrors "github.com/abgdnv/shopadmin/internal/catalog/errors"
	"github.com/abgdnv/shopadmin/internal/catalog/service"
	"github.com/abgdnv/shopadmin/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	defaultOffset = 0
	defaultLimit  = 100
	maxLimit      = 500
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog REST handler.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Title", found.Title)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// FindAll retrieves a page of products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := web.QueryInt32(w, r, h.logger, "limit", defaultLimit, web.Bounds{Min: 1, Max: maxLimit})
	if !ok {
		return
	}
	offset, ok := web.QueryInt32(w, r, h.logger, "offset", defaultOffset, web.NonNegative)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	dto, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "Title", dto.Title)

	newProduct, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Title", newProduct.Title)
	web.RespondJSON(w, h.logger, http.StatusCreated, newProduct)
}

// Update replaces all fields of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	dto, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), service.ProductDto{
		ID:          id,
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		Price:       dto.Price,
		Image:       dto.Image,
	})
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Title", updated.Title)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate reads the product body. On failure it writes the 400
// response (plain error or validation envelope) and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (service.ProductCreateDto, bool) {
	var dto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return dto, false
	}
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return dto, false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return dto, false
	}
	return dto, true
}
