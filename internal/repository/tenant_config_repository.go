package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type TenantConfigRepository struct {
	db *gorm.DB
}

func NewTenantConfigRepository(db *gorm.DB) *TenantConfigRepository {
	return &TenantConfigRepository{db: db}
}

// GetOrCreate returns the tenant's config row, creating a default one on
// first access.
func (r *TenantConfigRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID) (*domain.TenantConfig, error) {
	var cfg domain.TenantConfig
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg = domain.DefaultTenantConfig(tenantID)
	if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *TenantConfigRepository) Update(ctx context.Context, cfg *domain.TenantConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// CreateTx inserts a config row inside an existing transaction, used
// during tenant registration.
func (r *TenantConfigRepository) CreateTx(tx *gorm.DB, cfg *domain.TenantConfig) error {
	return tx.Create(cfg).Error
}

// AllTenantIDs returns every tenant id, for background sweeps
func (r *TenantConfigRepository) AllTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Tenant{}).Pluck("id", &ids).Error
	return ids, err
}

// GetForTenant loads config without a request context, for background jobs
func (r *TenantConfigRepository) GetForTenant(ctx context.Context, tenantID uuid.UUID) (*domain.TenantConfig, error) {
	return r.GetOrCreate(ctx, tenantID)
}
