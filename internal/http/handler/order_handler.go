package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// List godoc
// @Summary List work orders
// @Description Get paginated work orders. Technicians only see orders assigned to them.
// @Tags Orders
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending, in_progress, finished, delivered)
// @Param search query string false "Search by device, problem or customer name"
// @Param sortBy query string false "Sort field" Enums(received_at, status, priority)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.WorkOrderDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	orders, total, err := h.orderService.List(r.Context(), page, pageSize, status, search, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "list orders")
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

// GetByID godoc
// @Summary Get work order by ID
// @Description Get a work order with its full history. Technicians can only fetch their own orders.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Create godoc
// @Summary Create work order
// @Description Register a device intake. Accepts either an existing customer reference or an inline new customer.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body domain.CreateOrderRequest true "Order data"
// @Success 201 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Referenced customer or technician not found"
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerRequired) {
			respondWithError(w, http.StatusBadRequest, "Either customerId or newCustomer must be provided")
			return
		}
		if errors.Is(err, service.ErrNotATechnician) {
			respondWithError(w, http.StatusUnprocessableEntity, "Assignee is not an active technician")
			return
		}
		respondServiceError(w, h.logger, err, "create order")
		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+order.ID.String())
	respondJSON(w, http.StatusCreated, order)
}

// UpdateStatus godoc
// @Summary Update order status
// @Description Move an order through its lifecycle. Only adjacent transitions are allowed.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.UpdateOrderStatusRequest true "Target status and optional comment"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req domain.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondServiceError(w, h.logger, err, "update order status")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// AssignTechnician godoc
// @Summary Assign technician
// @Description Assign an active technician to the order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.AssignTechnicianRequest true "Technician reference"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Assignee is not an active technician"
// @Security BearerAuth
// @Router /orders/{id}/technician [put]
func (h *OrderHandler) AssignTechnician(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req domain.AssignTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.AssignTechnician(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotATechnician) {
			respondWithError(w, http.StatusUnprocessableEntity, "Assignee is not an active technician")
			return
		}
		respondServiceError(w, h.logger, err, "assign technician")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// AddNote godoc
// @Summary Add order note
// @Description Append a note to the order and record it in the history
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.AddOrderNoteRequest true "Note text"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id}/notes [post]
func (h *OrderHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req domain.AddOrderNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.AddNote(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add order note")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Delete godoc
// @Summary Delete work order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
