package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	employeeService *service.EmployeeService
	logger          *zap.Logger
}

func NewEmployeeHandler(employeeService *service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// inviteResponse returns the created account together with its one-time
// activation token.
type inviteResponse struct {
	Employee    *domain.EmployeeDTO `json:"employee"`
	InviteToken string              `json:"inviteToken"`
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param role query string false "Filter by role" Enums(admin, technician, salesperson, viewer)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.EmployeeDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /employees [get]
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	role := domain.EmployeeRole(r.URL.Query().Get("role"))

	result, err := h.employeeService.List(r.Context(), page, pageSize, role)
	if err != nil {
		respondServiceError(w, h.logger, err, "list employees")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListTechnicians godoc
// @Summary List active technicians
// @Description Feeds the technician picker on the order form
// @Tags Employees
// @Accept json
// @Produce json
// @Success 200 {array} domain.EmployeeDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/technicians [get]
func (h *EmployeeHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.employeeService.ListTechnicians(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list technicians")
		return
	}

	respondJSON(w, http.StatusOK, technicians)
}

// Me godoc
// @Summary Get own profile
// @Tags Employees
// @Accept json
// @Produce json
// @Success 200 {object} domain.EmployeeDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/me [get]
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	employee, err := h.employeeService.GetByID(r.Context(), userCtx.EmployeeID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get own profile")
		return
	}

	respondJSON(w, http.StatusOK, employee)
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Change own name or phone. Role and status are managed by an admin via /employees/{id}.
// @Tags Employees
// @Accept json
// @Produce json
// @Param request body domain.UpdateEmployeeRequest true "Profile data (role and status are rejected)"
// @Success 200 {object} domain.EmployeeDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/me [put]
func (h *EmployeeHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Self-service covers name and phone only
	if req.Role != nil || req.Status != nil {
		respondWithError(w, http.StatusBadRequest, "Role and status are managed by an admin")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	employee, err := h.employeeService.Update(r.Context(), userCtx.EmployeeID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update own profile")
		return
	}

	respondJSON(w, http.StatusOK, employee)
}

// GetByID godoc
// @Summary Get employee by ID
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID" format(uuid)
// @Success 200 {object} domain.EmployeeDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	employee, err := h.employeeService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get employee")
		return
	}

	respondJSON(w, http.StatusOK, employee)
}

// Invite godoc
// @Summary Invite an employee
// @Description Create an invited account. The returned token activates the account via /auth/activate.
// @Tags Employees
// @Accept json
// @Produce json
// @Param request body domain.InviteEmployeeRequest true "Invite data"
// @Success 201 {object} inviteResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already in use"
// @Security BearerAuth
// @Router /employees [post]
func (h *EmployeeHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req domain.InviteEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	employee, token, err := h.employeeService.Invite(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		respondServiceError(w, h.logger, err, "invite employee")
		return
	}

	respondJSON(w, http.StatusCreated, inviteResponse{Employee: employee, InviteToken: token})
}

// Update godoc
// @Summary Update employee
// @Description Change an employee's name, phone, role or status
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID" format(uuid)
// @Param request body domain.UpdateEmployeeRequest true "Employee data"
// @Success 200 {object} domain.EmployeeDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var req domain.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	employee, err := h.employeeService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update employee")
		return
	}

	respondJSON(w, http.StatusOK, employee)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	if err := h.employeeService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete employee")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
