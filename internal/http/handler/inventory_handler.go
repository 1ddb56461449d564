package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// List godoc
// @Summary List inventory items
// @Description Get paginated inventory with optional search and category filter. Each item carries its stock level classification.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name"
// @Param category query string false "Filter by category"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.InventoryItemDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory [get]
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	result, err := h.inventoryService.List(r.Context(), page, pageSize, search, category)
	if err != nil {
		respondServiceError(w, h.logger, err, "list inventory")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// LowStock godoc
// @Summary List items at or below a stock threshold
// @Description Items with the lowest quantities first. The threshold defaults to 10.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param threshold query int false "Quantity threshold" default(10)
// @Success 200 {array} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 10
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = parsed
	}

	items, err := h.inventoryService.LowStock(r.Context(), threshold)
	if err != nil {
		respondServiceError(w, h.logger, err, "list low stock items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// GetByID godoc
// @Summary Get inventory item by ID
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 200 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/{id} [get]
func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.inventoryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get inventory item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Create godoc
// @Summary Create inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body domain.CreateInventoryItemRequest true "Item data"
// @Success 201 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Referenced supplier not found"
// @Security BearerAuth
// @Router /inventory [post]
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.inventoryService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create inventory item")
		return
	}

	w.Header().Set("Location", "/api/v1/inventory/"+item.ID.String())
	respondJSON(w, http.StatusCreated, item)
}

// Update godoc
// @Summary Update inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Param request body domain.UpdateInventoryItemRequest true "Item data"
// @Success 200 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/{id} [put]
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.UpdateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.inventoryService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update inventory item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/{id} [delete]
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete inventory item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
