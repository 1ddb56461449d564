package mapper

import (
	"time"

	"github.com/taller-labs/workshop-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToEmployeeDTO converts an Employee model to its DTO
func ToEmployeeDTO(e *domain.Employee) domain.EmployeeDTO {
	return domain.EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Phone:     e.Phone,
		Role:      e.Role,
		Status:    e.Status,
		CreatedAt: formatTime(e.CreatedAt),
		UpdatedAt: formatTime(e.UpdatedAt),
	}
}

// ToCustomerDTO converts a Customer model to its DTO
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

// ToWorkOrderDTO converts a WorkOrder model to its DTO
func ToWorkOrderDTO(o *domain.WorkOrder) domain.WorkOrderDTO {
	dto := domain.WorkOrderDTO{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		TechnicianID:       o.TechnicianID,
		DeviceType:         o.DeviceType,
		DeviceModel:        o.DeviceModel,
		IMEI:               o.IMEI,
		Problem:            o.Problem,
		DeliveryConditions: o.DeliveryConditions,
		Status:             o.Status,
		Priority:           o.Priority,
		EstimatedCost:      o.EstimatedCost.StringFixed(2),
		AdvancePayment:     o.AdvancePayment.StringFixed(2),
		Warranty:           o.Warranty,
		ReceivedAt:         formatTime(o.ReceivedAt),
		DeliveredAt:        formatTimePtr(o.DeliveredAt),
		Notes:              o.Notes,
	}
	if o.Customer != nil {
		dto.CustomerName = o.Customer.Name
		dto.CustomerPhone = o.Customer.Phone
	}
	if o.Technician != nil {
		dto.TechnicianName = o.Technician.Name
	}
	return dto
}

// ToOrderHistoryDTO converts an OrderHistoryEntry model to its DTO
func ToOrderHistoryDTO(e *domain.OrderHistoryEntry) domain.OrderHistoryDTO {
	dto := domain.OrderHistoryDTO{
		ID:         e.ID,
		OrderID:    e.OrderID,
		Action:     e.Action,
		Comment:    e.Comment,
		ActorID:    e.ActorID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		CreatedAt:  formatTime(e.CreatedAt),
	}
	if e.Actor != nil {
		dto.ActorName = e.Actor.Name
	}
	return dto
}

// ToSupplierDTO converts a Supplier model to its DTO.
// Aggregates are filled by the service.
func ToSupplierDTO(s *domain.Supplier) domain.SupplierDTO {
	return domain.SupplierDTO{
		ID:            s.ID,
		Name:          s.Name,
		Category:      s.Category,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Status:        s.Status,
		CreatedAt:     formatTime(s.CreatedAt),
		UpdatedAt:     formatTime(s.UpdatedAt),
	}
}

// ToInventoryItemDTO converts an InventoryItem model to its DTO
func ToInventoryItemDTO(i *domain.InventoryItem) domain.InventoryItemDTO {
	dto := domain.InventoryItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		Description: i.Description,
		Price:       i.Price.StringFixed(2),
		Quantity:    i.Quantity,
		StockLevel:  domain.ClassifyStock(i.Quantity),
		SupplierID:  i.SupplierID,
		CreatedAt:   formatTime(i.CreatedAt),
		UpdatedAt:   formatTime(i.UpdatedAt),
	}
	if i.Supplier != nil {
		dto.SupplierName = i.Supplier.Name
	}
	return dto
}

// ToSaleDTO converts a Sale model to its DTO
func ToSaleDTO(s *domain.Sale) domain.SaleDTO {
	dto := domain.SaleDTO{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		EmployeeID:    s.EmployeeID,
		PaymentMethod: s.PaymentMethod,
		Subtotal:      s.Subtotal.StringFixed(2),
		Tax:           s.Tax.StringFixed(2),
		Total:         s.Total.StringFixed(2),
		SoldAt:        formatTime(s.SoldAt),
	}
	if s.Customer != nil {
		dto.CustomerName = s.Customer.Name
	}
	if s.Employee != nil {
		dto.EmployeeName = s.Employee.Name
	}
	for i := range s.Items {
		dto.Items = append(dto.Items, ToSaleItemDTO(&s.Items[i]))
	}
	return dto
}

// ToSaleItemDTO converts a SaleItem model to its DTO
func ToSaleItemDTO(i *domain.SaleItem) domain.SaleItemDTO {
	return domain.SaleItemDTO{
		ID:       i.ID,
		ItemID:   i.ItemID,
		Name:     i.Name,
		Price:    i.Price.StringFixed(2),
		Quantity: i.Quantity,
		Subtotal: i.Subtotal.StringFixed(2),
	}
}

// ToNotificationDTO converts a Notification model to its DTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Icon:      n.Icon,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    formatTimePtr(n.ReadAt),
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// ToTenantConfigDTO converts a TenantConfig model to its DTO
func ToTenantConfigDTO(c *domain.TenantConfig) domain.TenantConfigDTO {
	return domain.TenantConfigDTO{
		CompanyName:       c.CompanyName,
		CompanyEmail:      c.CompanyEmail,
		CompanyPhone:      c.CompanyPhone,
		Address:           c.Address,
		LogoPath:          c.LogoPath,
		NotifyOrderStatus: c.NotifyOrderStatus,
		NotifyLowStock:    c.NotifyLowStock,
		Currency:          c.Currency,
		TaxPercent:        c.TaxPercent.StringFixed(2),
		InvoicePrefix:     c.InvoicePrefix,
		InvoiceTerms:      c.InvoiceTerms,
		LowStockThreshold: c.LowStockThreshold,
	}
}
