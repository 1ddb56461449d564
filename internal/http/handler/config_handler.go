package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/service"
	"go.uber.org/zap"
)

type ConfigHandler struct {
	configService *service.ConfigService
	logger        *zap.Logger
}

func NewConfigHandler(configService *service.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// Get godoc
// @Summary Get workshop settings
// @Tags Config
// @Accept json
// @Produce json
// @Success 200 {object} domain.TenantConfigDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /config [get]
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get settings")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// Update godoc
// @Summary Update workshop settings
// @Description Apply a partial settings change
// @Tags Config
// @Accept json
// @Produce json
// @Param request body domain.UpdateTenantConfigRequest true "Settings"
// @Success 200 {object} domain.TenantConfigDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /config [put]
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTenantConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cfg, err := h.configService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update settings")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// UploadLogo godoc
// @Summary Upload workshop logo
// @Description Upload a logo image (multipart form field "logo", max 2 MiB)
// @Tags Config
// @Accept multipart/form-data
// @Produce json
// @Param logo formData file true "Logo image (png, jpeg, svg or webp)"
// @Success 200 {object} domain.TenantConfigDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /config/logo [post]
func (h *ConfigHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Form field 'logo' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(header.Filename))
	}

	cfg, err := h.configService.UploadLogo(r.Context(), header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload logo")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// DownloadLogo godoc
// @Summary Download workshop logo
// @Tags Config
// @Produce octet-stream
// @Success 200 {file} binary
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError "No logo uploaded"
// @Security BearerAuth
// @Router /config/logo [get]
func (h *ConfigHandler) DownloadLogo(w http.ResponseWriter, r *http.Request) {
	reader, storagePath, err := h.configService.DownloadLogo(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "download logo")
		return
	}
	defer reader.Close()

	if ct := mime.TypeByExtension(path.Ext(storagePath)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream logo", zap.Error(err))
	}
}
