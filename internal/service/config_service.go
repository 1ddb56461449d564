package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/storage"
	"go.uber.org/zap"
)

// allowed logo content types mapped to their extensions
var logoContentTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// maxLogoSize caps logo uploads at 2 MiB
const maxLogoSize = 2 << 20

// ConfigService manages per-tenant settings and the workshop logo
type ConfigService struct {
	configRepo *repository.TenantConfigRepository
	store      storage.Storage
	logger     *zap.Logger
}

func NewConfigService(
	configRepo *repository.TenantConfigRepository,
	store storage.Storage,
	logger *zap.Logger,
) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		store:      store,
		logger:     logger,
	}
}

// Get returns the tenant's settings, creating defaults on first access
func (s *ConfigService) Get(ctx context.Context) (*domain.TenantConfigDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}

	dto := mapper.ToTenantConfigDTO(cfg)
	return &dto, nil
}

// Update applies a partial settings change
func (s *ConfigService) Update(ctx context.Context, req *domain.UpdateTenantConfigRequest) (*domain.TenantConfigDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}

	if req.CompanyName != nil {
		cfg.CompanyName = *req.CompanyName
	}
	if req.CompanyEmail != nil {
		cfg.CompanyEmail = *req.CompanyEmail
	}
	if req.CompanyPhone != nil {
		cfg.CompanyPhone = *req.CompanyPhone
	}
	if req.Address != nil {
		cfg.Address = *req.Address
	}
	if req.NotifyOrderStatus != nil {
		cfg.NotifyOrderStatus = *req.NotifyOrderStatus
	}
	if req.NotifyLowStock != nil {
		cfg.NotifyLowStock = *req.NotifyLowStock
	}
	if req.Currency != nil {
		cfg.Currency = strings.ToUpper(*req.Currency)
	}
	if req.TaxPercent != nil {
		pct, err := decimal.NewFromString(*req.TaxPercent)
		if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: tax percent must be between 0 and 100", ErrInvalidInput)
		}
		cfg.TaxPercent = pct
	}
	if req.InvoicePrefix != nil {
		cfg.InvoicePrefix = *req.InvoicePrefix
	}
	if req.InvoiceTerms != nil {
		cfg.InvoiceTerms = *req.InvoiceTerms
	}
	if req.LowStockThreshold != nil {
		cfg.LowStockThreshold = *req.LowStockThreshold
	}

	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to update tenant config: %w", err)
	}

	s.logger.Info("tenant config updated",
		zap.String("tenantID", userCtx.TenantID.String()),
	)

	dto := mapper.ToTenantConfigDTO(cfg)
	return &dto, nil
}

// UploadLogo stores a new workshop logo and replaces the previous one
func (s *ConfigService) UploadLogo(ctx context.Context, filename, contentType string, data io.Reader) (*domain.TenantConfigDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	ext, ok := logoContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported logo content type %q", ErrInvalidInput, contentType)
	}
	if filename == "" {
		filename = "logo" + ext
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}

	prefix := "logos/" + userCtx.TenantID.String()
	limited := io.LimitReader(data, maxLogoSize+1)
	storagePath, size, err := s.store.Upload(ctx, prefix, filename, contentType, limited)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}
	if size > maxLogoSize {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to remove oversized logo", zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: logo exceeds %d bytes", ErrInvalidInput, maxLogoSize)
	}

	oldPath := cfg.LogoPath
	cfg.LogoPath = storagePath
	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to update tenant config: %w", err)
	}

	if oldPath != "" && oldPath != storagePath {
		if err := s.store.Delete(ctx, oldPath); err != nil {
			s.logger.Warn("failed to remove previous logo",
				zap.String("path", oldPath),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("logo uploaded",
		zap.String("tenantID", userCtx.TenantID.String()),
		zap.Int64("size", size),
	)

	dto := mapper.ToTenantConfigDTO(cfg)
	return &dto, nil
}

// DownloadLogo streams the stored logo for the current tenant
func (s *ConfigService) DownloadLogo(ctx context.Context) (io.ReadCloser, string, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, "", ErrUserContextRequired
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load tenant config: %w", err)
	}
	if cfg.LogoPath == "" {
		return nil, "", ErrNotFound
	}

	reader, err := s.store.Download(ctx, cfg.LogoPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read logo: %w", err)
	}
	return reader, cfg.LogoPath, nil
}
