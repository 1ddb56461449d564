package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type SaleHandler struct {
	saleService *service.SaleService
	logger      *zap.Logger
}

func NewSaleHandler(saleService *service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// List godoc
// @Summary List sales
// @Description Get paginated sales with optional date range filter (RFC 3339 timestamps)
// @Tags Sales
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param from query string false "Only sales at or after this time" format(date-time)
// @Param to query string false "Only sales before this time" format(date-time)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SaleDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /sales [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	var from, to *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' timestamp, expected RFC 3339")
			return
		}
		from = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' timestamp, expected RFC 3339")
			return
		}
		to = &t
	}

	sales, total, err := h.saleService.List(r.Context(), page, pageSize, from, to)
	if err != nil {
		respondServiceError(w, h.logger, err, "list sales")
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       sales,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

// GetByID godoc
// @Summary Get sale by ID
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {object} domain.SaleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/{id} [get]
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get sale")
		return
	}

	respondJSON(w, http.StatusOK, sale)
}

// Create godoc
// @Summary Record a sale
// @Description Commit a sale: prices are snapshotted server-side, stock is decremented atomically. Overdrawing any line rolls back the whole sale.
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body domain.CreateSaleRequest true "Sale data"
// @Success 201 {object} domain.SaleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Customer or inventory item not found"
// @Failure 422 {object} domain.APIError "Insufficient stock"
// @Security BearerAuth
// @Router /sales [post]
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sale, err := h.saleService.Commit(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondServiceError(w, h.logger, err, "record sale")
		return
	}

	w.Header().Set("Location", "/api/v1/sales/"+sale.ID.String())
	respondJSON(w, http.StatusCreated, sale)
}

// Update godoc
// @Summary Edit a sale
// @Description Replace the line items of a sale. Previously sold quantities are restored before the new set is applied.
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Param request body domain.UpdateSaleRequest true "Replacement sale data"
// @Success 200 {object} domain.SaleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Insufficient stock"
// @Security BearerAuth
// @Router /sales/{id} [put]
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	var req domain.UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sale, err := h.saleService.Edit(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondServiceError(w, h.logger, err, "update sale")
		return
	}

	respondJSON(w, http.StatusOK, sale)
}

// Delete godoc
// @Summary Delete a sale
// @Description Remove a sale and return its quantities to inventory
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/{id} [delete]
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	if err := h.saleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete sale")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
