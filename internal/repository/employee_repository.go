package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetForAuth loads an account by ID while a request is being
// authenticated. No user context exists yet, so there is no tenant
// filter; the middleware checks the row against the token's claims.
func (r *EmployeeRepository) GetForAuth(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetByEmail looks up an account for login. Login happens before a tenant
// is known, so this is the one lookup that is not tenant filtered.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetByInviteToken looks up an invited account by its activation token.
// Activation also happens pre-authentication.
func (r *EmployeeRepository) GetByInviteToken(ctx context.Context, token string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).
		Where("invite_token = ? AND status = ?", token, domain.EmployeeStatusInvited).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	return query.Delete(&domain.Employee{}).Error
}

func (r *EmployeeRepository) List(ctx context.Context, page, pageSize int, role domain.EmployeeRole) ([]domain.Employee, int64, error) {
	var employees []domain.Employee
	var total int64

	page, pageSize = ClampPage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Employee{})
	query = ApplyTenantFilter(ctx, query)

	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&employees).Error

	return employees, total, err
}

// ListActiveTechnicians returns active technicians for assignment pickers
func (r *EmployeeRepository) ListActiveTechnicians(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	query := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", domain.RoleTechnician, domain.EmployeeStatusActive)
	query = ApplyTenantFilter(ctx, query)
	err := query.Order("name ASC").Find(&employees).Error
	return employees, err
}

// ListAdmins returns active admins, used for tenant-wide notifications
func (r *EmployeeRepository) ListAdmins(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	query := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", domain.RoleAdmin, domain.EmployeeStatusActive)
	query = ApplyTenantFilter(ctx, query)
	err := query.Find(&employees).Error
	return employees, err
}

// ListAdminsForTenant is ListAdmins for background jobs that run without a
// request context.
func (r *EmployeeRepository) ListAdminsForTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ? AND status = ?", tenantID, domain.RoleAdmin, domain.EmployeeStatusActive).
		Find(&employees).Error
	return employees, err
}
