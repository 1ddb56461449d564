package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler covers the unauthenticated account endpoints: workshop
// registration, login and invite activation.
type AuthHandler struct {
	employeeService *service.EmployeeService
	logger          *zap.Logger
}

func NewAuthHandler(employeeService *service.EmployeeService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// Register godoc
// @Summary Register a new workshop
// @Description Create a workshop tenant with its first admin account and log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Registration data"
// @Success 201 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already in use"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.employeeService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		respondServiceError(w, h.logger, err, "register workshop")
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Exchange credentials for an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Account inactive"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.employeeService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if errors.Is(err, service.ErrAccountInactive) {
			respondWithError(w, http.StatusForbidden, "Account is not active")
			return
		}
		respondServiceError(w, h.logger, err, "log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Activate godoc
// @Summary Activate an invited account
// @Description Set a password for an invited account using its invite token and log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.ActivateEmployeeRequest true "Activation data"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Unknown or used invite token"
// @Router /auth/activate [post]
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req domain.ActivateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.employeeService.Activate(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInviteToken) {
			respondWithError(w, http.StatusNotFound, "Invalid or expired invite token")
			return
		}
		respondServiceError(w, h.logger, err, "activate account")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
