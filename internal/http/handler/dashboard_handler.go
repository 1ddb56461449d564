package handler

import (
	"net/http"

	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Get godoc
// @Summary Get dashboard
// @Description Order counters per status, customer count, this month's sales total, recent orders and the reorder list
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} domain.DashboardDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}
