package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmployeeService covers account lifecycle: tenant registration, login,
// invites and activation, plus staff management.
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	tenantRepo   *repository.TenantRepository
	configRepo   *repository.TenantConfigRepository
	tokens       *auth.TokenManager
	logger       *zap.Logger
}

func NewEmployeeService(
	employeeRepo *repository.EmployeeRepository,
	tenantRepo *repository.TenantRepository,
	configRepo *repository.TenantConfigRepository,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		tenantRepo:   tenantRepo,
		configRepo:   configRepo,
		tokens:       tokens,
		logger:       logger,
	}
}

// Register creates a new workshop tenant with its config row and first
// admin account in one transaction, then logs the admin in.
func (s *EmployeeService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	if _, err := s.employeeRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !isRecordNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := &domain.Tenant{Name: req.WorkshopName}
	admin := &domain.Employee{
		Name:   req.Name,
		Email:  req.Email,
		Role:   domain.RoleAdmin,
		Status: domain.EmployeeStatusActive,
	}
	admin.PasswordHash = hash

	err = s.tenantRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.tenantRepo.CreateTx(tx, tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		cfg := domain.DefaultTenantConfig(tenant.ID)
		if err := s.configRepo.CreateTx(tx, &cfg); err != nil {
			return fmt.Errorf("failed to create tenant config: %w", err)
		}
		admin.TenantID = tenant.ID
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workshop registered",
		zap.String("tenantID", tenant.ID.String()),
		zap.String("adminEmail", admin.Email),
	)

	return s.buildLoginResponse(admin)
}

// Login verifies credentials and issues a token. Failed lookups and bad
// passwords both map to ErrInvalidCredentials so the response does not
// reveal which accounts exist.
func (s *EmployeeService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	employee, err := s.employeeRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !auth.CheckPassword(req.Password, employee.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if employee.Status != domain.EmployeeStatusActive {
		return nil, ErrAccountInactive
	}

	return s.buildLoginResponse(employee)
}

// Invite creates an invited account with an activation token. The token
// is returned so the handler can hand it to whatever delivery channel the
// workshop uses.
func (s *EmployeeService) Invite(ctx context.Context, req *domain.InviteEmployeeRequest) (*domain.EmployeeDTO, string, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, "", ErrUserContextRequired
	}

	if _, err := s.employeeRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !isRecordNotFound(err) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate invite token: %w", err)
	}

	employee := &domain.Employee{
		TenantID:    userCtx.TenantID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		Status:      domain.EmployeeStatusInvited,
		InviteToken: token,
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, "", fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("employee invited",
		zap.String("tenantID", userCtx.TenantID.String()),
		zap.String("email", req.Email),
		zap.String("role", string(req.Role)),
	)

	dto := mapper.ToEmployeeDTO(employee)
	return &dto, token, nil
}

// Activate turns an invited account into an active one. The invite token
// is single use, it is cleared on success.
func (s *EmployeeService) Activate(ctx context.Context, req *domain.ActivateEmployeeRequest) (*domain.LoginResponse, error) {
	employee, err := s.employeeRepo.GetByInviteToken(ctx, req.Token)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrInvalidInviteToken
		}
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	employee.PasswordHash = hash
	employee.Status = domain.EmployeeStatusActive
	employee.InviteToken = ""

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}

	s.logger.Info("employee activated",
		zap.String("tenantID", employee.TenantID.String()),
		zap.String("employeeID", employee.ID.String()),
	)

	return s.buildLoginResponse(employee)
}

func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmployeeDTO, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	dto := mapper.ToEmployeeDTO(employee)
	return &dto, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateEmployeeRequest) (*domain.EmployeeDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Role != nil {
		// An admin cannot demote themselves, that could strand the tenant
		// without any admin
		if employee.ID == userCtx.EmployeeID && *req.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot change own role", ErrInvalidInput)
		}
		employee.Role = *req.Role
	}
	if req.Status != nil {
		if employee.ID == userCtx.EmployeeID && *req.Status != domain.EmployeeStatusActive {
			return nil, fmt.Errorf("%w: cannot deactivate own account", ErrInvalidInput)
		}
		employee.Status = *req.Status
	}

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	dto := mapper.ToEmployeeDTO(employee)
	return &dto, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}
	if id == userCtx.EmployeeID {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	}

	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (s *EmployeeService) List(ctx context.Context, page, pageSize int, role domain.EmployeeRole) (*domain.PaginatedResponse, error) {
	if role != "" && !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	employees, total, err := s.employeeRepo.List(ctx, page, pageSize, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	page, pageSize = repository.ClampPage(page, pageSize)
	dtos := make([]domain.EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = mapper.ToEmployeeDTO(&employees[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListTechnicians feeds the assignment picker on the order form
func (s *EmployeeService) ListTechnicians(ctx context.Context) ([]domain.EmployeeDTO, error) {
	employees, err := s.employeeRepo.ListActiveTechnicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}

	dtos := make([]domain.EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = mapper.ToEmployeeDTO(&employees[i])
	}
	return dtos, nil
}

func (s *EmployeeService) buildLoginResponse(employee *domain.Employee) (*domain.LoginResponse, error) {
	token, err := s.tokens.Issue(employee)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.LoginResponse{
		Token:    token,
		Employee: mapper.ToEmployeeDTO(employee),
	}, nil
}

func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
