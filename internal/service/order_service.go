package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
)

// Status transition rules: defines valid transitions between order statuses.
// One step forward, one step back; delivered is terminal.
var validStatusTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusInProgress},
	domain.OrderStatusInProgress: {domain.OrderStatusFinished, domain.OrderStatusPending},
	domain.OrderStatusFinished:   {domain.OrderStatusDelivered, domain.OrderStatusInProgress},
	domain.OrderStatusDelivered:  {},
}

// CanTransition reports whether the lifecycle table allows the move
func CanTransition(from, to domain.OrderStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	orderRepo        *repository.OrderRepository
	historyRepo      *repository.OrderHistoryRepository
	customerRepo     *repository.CustomerRepository
	employeeRepo     *repository.EmployeeRepository
	notificationRepo *repository.NotificationRepository
	configRepo       *repository.TenantConfigRepository
	feed             *events.Feed
	logger           *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	historyRepo *repository.OrderHistoryRepository,
	customerRepo *repository.CustomerRepository,
	employeeRepo *repository.EmployeeRepository,
	notificationRepo *repository.NotificationRepository,
	configRepo *repository.TenantConfigRepository,
	feed *events.Feed,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:        orderRepo,
		historyRepo:      historyRepo,
		customerRepo:     customerRepo,
		employeeRepo:     employeeRepo,
		notificationRepo: notificationRepo,
		configRepo:       configRepo,
		feed:             feed,
		logger:           logger,
	}
}

func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.WorkOrderDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if req.CustomerID == nil && req.NewCustomer == nil {
		return nil, ErrCustomerRequired
	}
	if req.CustomerID != nil && req.NewCustomer != nil {
		return nil, fmt.Errorf("%w: pass customerId or newCustomer, not both", ErrInvalidInput)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	estimated, err := parseAmount(req.EstimatedCost)
	if err != nil {
		return nil, fmt.Errorf("%w: bad estimatedCost", ErrInvalidInput)
	}
	advance, err := parseAmount(req.AdvancePayment)
	if err != nil {
		return nil, fmt.Errorf("%w: bad advancePayment", ErrInvalidInput)
	}

	if req.TechnicianID != nil {
		if err := s.verifyTechnician(ctx, *req.TechnicianID); err != nil {
			return nil, err
		}
	}

	order := &domain.WorkOrder{
		TenantID:           userCtx.TenantID,
		TechnicianID:       req.TechnicianID,
		DeviceType:         req.DeviceType,
		DeviceModel:        req.DeviceModel,
		IMEI:               req.IMEI,
		Problem:            req.Problem,
		DeliveryConditions: req.DeliveryConditions,
		Status:             domain.OrderStatusPending,
		Priority:           priority,
		EstimatedCost:      estimated,
		AdvancePayment:     advance,
		Warranty:           req.Warranty,
		ReceivedAt:         time.Now().UTC(),
	}

	if req.NewCustomer != nil {
		customer := &domain.Customer{
			TenantID: userCtx.TenantID,
			Name:     req.NewCustomer.Name,
			Phone:    req.NewCustomer.Phone,
			Email:    req.NewCustomer.Email,
		}
		// Customer and order land together or not at all
		if err := s.orderRepo.CreateWithCustomer(ctx, customer, order); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	} else {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, fmt.Errorf("customer not found: %w", ErrNotFound)
		}
		order.CustomerID = *req.CustomerID
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	s.recordHistory(ctx, order, domain.OrderActionCreated, "Order received", "", "")

	if order.TechnicianID != nil {
		s.notifyAssignment(ctx, order, *order.TechnicianID)
	}

	s.feed.Publish(events.Event{
		Entity: "order", Action: events.ActionCreated, EntityID: order.ID, TenantID: userCtx.TenantID,
	})

	// Reload with relations
	order, err = s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	dto := mapper.ToWorkOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrderDTO, error) {
	order, err := s.getVisibleOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToWorkOrderDTO(order)

	history, err := s.historyRepo.ListByOrder(ctx, id)
	if err != nil {
		s.logger.Warn("failed to load order history", zap.Error(err))
	}
	for i := range history {
		dto.History = append(dto.History, mapper.ToOrderHistoryDTO(&history[i]))
	}

	return &dto, nil
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, status, search string, sort repository.SortConfig) ([]domain.WorkOrderDTO, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUserContextRequired
	}

	filter := repository.OrderListFilter{
		Search: search,
		Sort:   sort,
	}
	if status != "" {
		normalized := domain.NormalizeOrderStatus(status)
		if !normalized.IsValid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		filter.Status = normalized
	}
	// Technicians only see their own assignments, enforced in the query
	if userCtx.IsTechnician() {
		techID := userCtx.EmployeeID
		filter.TechnicianID = &techID
	}

	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.WorkOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, mapper.ToWorkOrderDTO(&orders[i]))
	}
	return dtos, total, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderStatusRequest) (*domain.WorkOrderDTO, error) {
	order, err := s.getVisibleOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := domain.NormalizeOrderStatus(req.Status)
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	// Same status is a no-op: no write, no history entry
	if newStatus == order.Status {
		dto := mapper.ToWorkOrderDTO(order)
		return &dto, nil
	}

	if !CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, newStatus)
	}

	oldStatus := order.Status
	fields := map[string]interface{}{"status": newStatus}
	if newStatus == domain.OrderStatusDelivered {
		now := time.Now().UTC()
		fields["delivered_at"] = now
		order.DeliveredAt = &now
	}
	if err := s.orderRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	order.Status = newStatus

	s.recordHistory(ctx, order, domain.OrderActionStatusUpdated, req.Comment, oldStatus, newStatus)

	if order.TechnicianID != nil {
		s.notifyStatusChange(ctx, order, oldStatus, newStatus)
	}

	s.feed.Publish(events.Event{
		Entity: "order", Action: events.ActionUpdated, EntityID: order.ID, TenantID: order.TenantID,
	})

	dto := mapper.ToWorkOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) AssignTechnician(ctx context.Context, id uuid.UUID, req *domain.AssignTechnicianRequest) (*domain.WorkOrderDTO, error) {
	order, err := s.getVisibleOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.verifyTechnician(ctx, req.TechnicianID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateFields(ctx, id, map[string]interface{}{
		"technician_id": req.TechnicianID,
	}); err != nil {
		return nil, fmt.Errorf("failed to assign technician: %w", err)
	}
	techID := req.TechnicianID
	order.TechnicianID = &techID

	s.recordHistory(ctx, order, domain.OrderActionTechnicianAssigned, "Technician assigned", "", "")
	s.notifyAssignment(ctx, order, req.TechnicianID)

	s.feed.Publish(events.Event{
		Entity: "order", Action: events.ActionUpdated, EntityID: order.ID, TenantID: order.TenantID,
	})

	order, err = s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	dto := mapper.ToWorkOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) AddNote(ctx context.Context, id uuid.UUID, req *domain.AddOrderNoteRequest) (*domain.WorkOrderDTO, error) {
	order, err := s.getVisibleOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	notes := order.Notes
	if notes != "" {
		notes += "\n"
	}
	notes += req.Note

	if err := s.orderRepo.UpdateFields(ctx, id, map[string]interface{}{"notes": notes}); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	order.Notes = notes

	s.recordHistory(ctx, order, domain.OrderActionNoteAdded, req.Note, "", "")

	dto := mapper.ToWorkOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.getVisibleOrder(ctx, id)
	if err != nil {
		return err
	}

	// History rows go with the order, in the same transaction
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "order", Action: events.ActionDeleted, EntityID: order.ID, TenantID: order.TenantID,
	})
	return nil
}

// getVisibleOrder loads an order and enforces technician visibility
func (s *OrderService) getVisibleOrder(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if userCtx.IsTechnician() {
		if order.TechnicianID == nil || *order.TechnicianID != userCtx.EmployeeID {
			// Hidden, not forbidden: technicians cannot probe other orders
			return nil, ErrNotFound
		}
	}
	return order, nil
}

func (s *OrderService) verifyTechnician(ctx context.Context, technicianID uuid.UUID) error {
	tech, err := s.employeeRepo.GetByID(ctx, technicianID)
	if err != nil {
		return fmt.Errorf("technician not found: %w", ErrNotFound)
	}
	if tech.Role != domain.RoleTechnician || tech.Status != domain.EmployeeStatusActive {
		return ErrNotATechnician
	}
	return nil
}

func (s *OrderService) recordHistory(ctx context.Context, order *domain.WorkOrder, action domain.OrderAction, comment string, from, to domain.OrderStatus) {
	entry := &domain.OrderHistoryEntry{
		OrderID:    order.ID,
		TenantID:   order.TenantID,
		Action:     action,
		Comment:    comment,
		FromStatus: from,
		ToStatus:   to,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		actorID := userCtx.EmployeeID
		entry.ActorID = &actorID
	}
	if err := s.historyRepo.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record order history",
			zap.String("order_id", order.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (s *OrderService) notifyAssignment(ctx context.Context, order *domain.WorkOrder, technicianID uuid.UUID) {
	if !s.statusNotificationsEnabled(ctx, order.TenantID) {
		return
	}
	notification := &domain.Notification{
		TenantID:    order.TenantID,
		RecipientID: technicianID,
		Title:       "New repair assigned",
		Message:     fmt.Sprintf("%s %s: %s", order.DeviceType, order.DeviceModel, order.Problem),
		Icon:        "wrench",
		Link:        "/orders/" + order.ID.String(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create assignment notification", zap.Error(err))
	}
}

func (s *OrderService) notifyStatusChange(ctx context.Context, order *domain.WorkOrder, from, to domain.OrderStatus) {
	if !s.statusNotificationsEnabled(ctx, order.TenantID) {
		return
	}
	notification := &domain.Notification{
		TenantID:    order.TenantID,
		RecipientID: *order.TechnicianID,
		Title:       "Order status changed",
		Message:     fmt.Sprintf("%s %s moved from %s to %s", order.DeviceType, order.DeviceModel, from, to),
		Icon:        "clipboard",
		Link:        "/orders/" + order.ID.String(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create status notification", zap.Error(err))
	}
}

func (s *OrderService) statusNotificationsEnabled(ctx context.Context, tenantID uuid.UUID) bool {
	cfg, err := s.configRepo.GetForTenant(ctx, tenantID)
	if err != nil {
		s.logger.Warn("failed to load tenant config", zap.Error(err))
		return true
	}
	return cfg.NotifyOrderStatus
}

// parseAmount parses an optional money string, empty meaning zero
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
