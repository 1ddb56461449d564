package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type TenantDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
}

type EmployeeDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Role      EmployeeRole   `json:"role"`
	Status    EmployeeStatus `json:"status"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type WorkOrderDTO struct {
	ID                 uuid.UUID     `json:"id"`
	CustomerID         uuid.UUID     `json:"customerId"`
	CustomerName       string        `json:"customerName,omitempty"`
	CustomerPhone      string        `json:"customerPhone,omitempty"`
	TechnicianID       *uuid.UUID    `json:"technicianId,omitempty"`
	TechnicianName     string        `json:"technicianName,omitempty"`
	DeviceType         string        `json:"deviceType"`
	DeviceModel        string        `json:"deviceModel"`
	IMEI               string        `json:"imei,omitempty"`
	Problem            string        `json:"problem"`
	DeliveryConditions string        `json:"deliveryConditions,omitempty"`
	Status             OrderStatus   `json:"status"`
	Priority           OrderPriority `json:"priority"`
	EstimatedCost      string        `json:"estimatedCost"`
	AdvancePayment     string        `json:"advancePayment"`
	Warranty           bool          `json:"warranty"`
	ReceivedAt         string        `json:"receivedAt"`
	DeliveredAt        *string       `json:"deliveredAt,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	History            []OrderHistoryDTO `json:"history,omitempty"`
}

type OrderHistoryDTO struct {
	ID         uuid.UUID   `json:"id"`
	OrderID    uuid.UUID   `json:"orderId"`
	Action     OrderAction `json:"action"`
	Comment    string      `json:"comment,omitempty"`
	ActorID    *uuid.UUID  `json:"actorId,omitempty"`
	ActorName  string      `json:"actorName,omitempty"`
	FromStatus OrderStatus `json:"fromStatus,omitempty"`
	ToStatus   OrderStatus `json:"toStatus,omitempty"`
	CreatedAt  string      `json:"createdAt"`
}

type SupplierDTO struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Category      string         `json:"category,omitempty"`
	ContactPerson string         `json:"contactPerson,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	Status        SupplierStatus `json:"status"`
	ProductCount  int64          `json:"productCount"`
	LastPurchase  *string        `json:"lastPurchase,omitempty"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

type InventoryItemDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category,omitempty"`
	Description  string     `json:"description,omitempty"`
	Price        string     `json:"price"`
	Quantity     int        `json:"quantity"`
	StockLevel   StockLevel `json:"stockLevel"`
	SupplierID   *uuid.UUID `json:"supplierId,omitempty"`
	SupplierName string     `json:"supplierName,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

type SaleDTO struct {
	ID            uuid.UUID     `json:"id"`
	CustomerID    *uuid.UUID    `json:"customerId,omitempty"`
	CustomerName  string        `json:"customerName,omitempty"`
	EmployeeID    uuid.UUID     `json:"employeeId"`
	EmployeeName  string        `json:"employeeName,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Subtotal      string        `json:"subtotal"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	SoldAt        string        `json:"soldAt"`
	Items         []SaleItemDTO `json:"items,omitempty"`
}

type SaleItemDTO struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"itemId"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Quantity int       `json:"quantity"`
	Subtotal string    `json:"subtotal"`
}

type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon,omitempty"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	ReadAt    *string   `json:"readAt,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type TenantConfigDTO struct {
	CompanyName       string `json:"companyName,omitempty"`
	CompanyEmail      string `json:"companyEmail,omitempty"`
	CompanyPhone      string `json:"companyPhone,omitempty"`
	Address           string `json:"address,omitempty"`
	LogoPath          string `json:"logoPath,omitempty"`
	NotifyOrderStatus bool   `json:"notifyOrderStatus"`
	NotifyLowStock    bool   `json:"notifyLowStock"`
	Currency          string `json:"currency"`
	TaxPercent        string `json:"taxPercent"`
	InvoicePrefix     string `json:"invoicePrefix"`
	InvoiceTerms      string `json:"invoiceTerms,omitempty"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

// DashboardDTO aggregates the landing page counters
type DashboardDTO struct {
	PendingOrders    int64              `json:"pendingOrders"`
	InProgressOrders int64              `json:"inProgressOrders"`
	FinishedOrders   int64              `json:"finishedOrders"`
	DeliveredOrders  int64              `json:"deliveredOrders"`
	CustomerCount    int64              `json:"customerCount"`
	MonthlySalesTotal string            `json:"monthlySalesTotal"`
	RecentOrders     []WorkOrderDTO     `json:"recentOrders"`
	LowStockItems    []InventoryItemDTO `json:"lowStockItems"`
}

// Request DTOs

type RegisterRequest struct {
	WorkshopName string `json:"workshopName" validate:"required,max=200"`
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token    string      `json:"token"`
	Employee EmployeeDTO `json:"employee"`
}

type InviteEmployeeRequest struct {
	Name  string       `json:"name" validate:"required,max=200"`
	Email string       `json:"email" validate:"required,email"`
	Phone string       `json:"phone,omitempty" validate:"max=50"`
	Role  EmployeeRole `json:"role" validate:"required,oneof=admin technician salesperson viewer"`
}

type ActivateEmployeeRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateEmployeeRequest struct {
	Name   *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone  *string         `json:"phone,omitempty" validate:"omitempty,max=50"`
	Role   *EmployeeRole   `json:"role,omitempty" validate:"omitempty,oneof=admin technician salesperson viewer"`
	Status *EmployeeStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone,omitempty" validate:"max=50"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateOrderRequest accepts either an existing customer reference or an
// inline new customer, never both.
type CreateOrderRequest struct {
	CustomerID         *uuid.UUID             `json:"customerId,omitempty"`
	NewCustomer        *CreateCustomerRequest `json:"newCustomer,omitempty"`
	DeviceType         string                 `json:"deviceType" validate:"required,max=100"`
	DeviceModel        string                 `json:"deviceModel" validate:"required,max=200"`
	IMEI               string                 `json:"imei,omitempty" validate:"max=50"`
	Problem            string                 `json:"problem" validate:"required"`
	DeliveryConditions string                 `json:"deliveryConditions,omitempty"`
	Priority           OrderPriority          `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	EstimatedCost      string                 `json:"estimatedCost,omitempty"`
	AdvancePayment     string                 `json:"advancePayment,omitempty"`
	Warranty           bool                   `json:"warranty"`
	TechnicianID       *uuid.UUID             `json:"technicianId,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment,omitempty" validate:"max=500"`
}

type AssignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technicianId" validate:"required"`
}

type AddOrderNoteRequest struct {
	Note string `json:"note" validate:"required,max=2000"`
}

type CreateSupplierRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Category      string `json:"category,omitempty" validate:"max=100"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"max=200"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"max=50"`
	Address       string `json:"address,omitempty" validate:"max=500"`
}

type UpdateSupplierRequest struct {
	Name          *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	Category      *string         `json:"category,omitempty" validate:"omitempty,max=100"`
	ContactPerson *string         `json:"contactPerson,omitempty" validate:"omitempty,max=200"`
	Email         *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string         `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address       *string         `json:"address,omitempty" validate:"omitempty,max=500"`
	Status        *SupplierStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type CreateInventoryItemRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Category    string     `json:"category,omitempty" validate:"max=100"`
	Description string     `json:"description,omitempty"`
	Price       string     `json:"price" validate:"required"`
	Quantity    int        `json:"quantity" validate:"gte=0"`
	SupplierID  *uuid.UUID `json:"supplierId,omitempty"`
}

type UpdateInventoryItemRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Description *string    `json:"description,omitempty"`
	Price       *string    `json:"price,omitempty"`
	Quantity    *int       `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	SupplierID  *uuid.UUID `json:"supplierId,omitempty"`
}

// SaleLineRequest is one requested sale line. Price is not accepted from
// the client; the current inventory price is snapshotted server-side.
type SaleLineRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customerId,omitempty"`
	PaymentMethod PaymentMethod     `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customerId,omitempty"`
	PaymentMethod *PaymentMethod    `json:"paymentMethod,omitempty" validate:"omitempty,oneof=cash card transfer"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateTenantConfigRequest struct {
	CompanyName       *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
	CompanyEmail      *string `json:"companyEmail,omitempty" validate:"omitempty,email"`
	CompanyPhone      *string `json:"companyPhone,omitempty" validate:"omitempty,max=50"`
	Address           *string `json:"address,omitempty" validate:"omitempty,max=500"`
	NotifyOrderStatus *bool   `json:"notifyOrderStatus,omitempty"`
	NotifyLowStock    *bool   `json:"notifyLowStock,omitempty"`
	Currency          *string `json:"currency,omitempty" validate:"omitempty,max=10"`
	TaxPercent        *string `json:"taxPercent,omitempty"`
	InvoicePrefix     *string `json:"invoicePrefix,omitempty" validate:"omitempty,max=20"`
	InvoiceTerms      *string `json:"invoiceTerms,omitempty"`
	LowStockThreshold *int    `json:"lowStockThreshold,omitempty" validate:"omitempty,gte=0"`
}

// UnreadCountDTO carries the unread notification counter
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
