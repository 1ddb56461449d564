package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key client-side so inserts behave the
// same on PostgreSQL and on the SQLite databases used in tests.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Tenant represents a workshop (one company account)
type Tenant struct {
	BaseModel
	Name      string     `gorm:"type:varchar(200);not null"`
	Employees []Employee `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// EmployeeRole represents the permission level of an employee
type EmployeeRole string

const (
	RoleAdmin       EmployeeRole = "admin"
	RoleTechnician  EmployeeRole = "technician"
	RoleSalesperson EmployeeRole = "salesperson"
	RoleViewer      EmployeeRole = "viewer"
)

// IsValid checks if the EmployeeRole is a valid enum value
func (r EmployeeRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleSalesperson, RoleViewer:
		return true
	}
	return false
}

// EmployeeStatus represents the account state of an employee
type EmployeeStatus string

const (
	EmployeeStatusInvited  EmployeeStatus = "invited"
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee represents a workshop user account
type Employee struct {
	BaseModel
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;index;column:tenant_id"`
	Tenant       *Tenant        `gorm:"foreignKey:TenantID"`
	Name         string         `gorm:"type:varchar(200);not null"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string         `gorm:"type:varchar(50)"`
	PasswordHash string         `gorm:"type:varchar(255);column:password_hash"`
	Role         EmployeeRole   `gorm:"type:varchar(50);not null;default:'viewer';index"`
	Status       EmployeeStatus `gorm:"type:varchar(50);not null;default:'invited';index"`
	InviteToken  string         `gorm:"type:varchar(64);index;column:invite_token"`
}

// Customer represents a repair shop customer
type Customer struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;column:tenant_id"`
	Name     string    `gorm:"type:varchar(200);not null;index"`
	Phone    string    `gorm:"type:varchar(50)"`
	Email    string    `gorm:"type:varchar(255)"`
}

// OrderStatus represents the lifecycle state of a work order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusFinished   OrderStatus = "finished"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusFinished, OrderStatusDelivered:
		return true
	}
	return false
}

// NormalizeOrderStatus maps legacy status values onto the current enum.
// Older records used "active" for freshly received orders.
func NormalizeOrderStatus(raw string) OrderStatus {
	if raw == "active" {
		return OrderStatusPending
	}
	return OrderStatus(raw)
}

// OrderPriority represents the urgency of a work order
type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityNormal OrderPriority = "normal"
	PriorityHigh   OrderPriority = "high"
)

// IsValid checks if the OrderPriority is a valid enum value
func (p OrderPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// WorkOrder represents a device repair order
type WorkOrder struct {
	BaseModel
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID"`
	TechnicianID       *uuid.UUID      `gorm:"type:uuid;index;column:technician_id"`
	Technician         *Employee       `gorm:"foreignKey:TechnicianID"`
	DeviceType         string          `gorm:"type:varchar(100);not null;column:device_type"`
	DeviceModel        string          `gorm:"type:varchar(200);not null;column:device_model"`
	IMEI               string          `gorm:"type:varchar(50);column:imei"`
	Problem            string          `gorm:"type:text;not null"`
	DeliveryConditions string          `gorm:"type:text;column:delivery_conditions"`
	Status             OrderStatus     `gorm:"type:varchar(50);not null;default:'pending';index"`
	Priority           OrderPriority   `gorm:"type:varchar(50);not null;default:'normal'"`
	EstimatedCost      decimal.Decimal `gorm:"type:decimal(12,2);column:estimated_cost"`
	AdvancePayment     decimal.Decimal `gorm:"type:decimal(12,2);column:advance_payment"`
	Warranty           bool            `gorm:"not null;default:false"`
	ReceivedAt         time.Time       `gorm:"not null;column:received_at"`
	DeliveredAt        *time.Time      `gorm:"column:delivered_at"`
	Notes              string          `gorm:"type:text"`
	History            []OrderHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderAction classifies an order history entry
type OrderAction string

const (
	OrderActionCreated            OrderAction = "created"
	OrderActionStatusUpdated      OrderAction = "status_updated"
	OrderActionTechnicianAssigned OrderAction = "technician_assigned"
	OrderActionNoteAdded          OrderAction = "note_added"
)

// OrderHistoryEntry is an append-only audit record for a work order
type OrderHistoryEntry struct {
	ID         uuid.UUID   `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index;column:order_id"`
	TenantID   uuid.UUID   `gorm:"type:uuid;not null;index;column:tenant_id"`
	Action     OrderAction `gorm:"type:varchar(50);not null"`
	Comment    string      `gorm:"type:text"`
	ActorID    *uuid.UUID  `gorm:"type:uuid;column:actor_id"`
	Actor      *Employee   `gorm:"foreignKey:ActorID"`
	CreatedAt  time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	FromStatus OrderStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(50);column:to_status"`
}

// BeforeCreate assigns the primary key client-side
func (e *OrderHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SupplierStatus represents the state of a supplier relationship
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents a parts supplier
type Supplier struct {
	BaseModel
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index;column:tenant_id"`
	Name          string         `gorm:"type:varchar(200);not null;index"`
	Category      string         `gorm:"type:varchar(100)"`
	ContactPerson string         `gorm:"type:varchar(200);column:contact_person"`
	Email         string         `gorm:"type:varchar(255)"`
	Phone         string         `gorm:"type:varchar(50)"`
	Address       string         `gorm:"type:varchar(500)"`
	Status        SupplierStatus `gorm:"type:varchar(50);not null;default:'active';index"`
}

// InventoryItem represents a stocked product or spare part
type InventoryItem struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index;column:tenant_id"`
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Category    string          `gorm:"type:varchar(100);index"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null;default:0;check:quantity >= 0"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid;index;column:supplier_id"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID"`
}

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsValid checks if the PaymentMethod is a valid enum value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Sale represents a completed point-of-sale transaction
type Sale struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index;column:customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index;column:employee_id"`
	Employee      *Employee       `gorm:"foreignKey:EmployeeID"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(50);not null;column:payment_method"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SoldAt        time.Time       `gorm:"not null;column:sold_at"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem is one line of a sale, snapshotting name and price at sale time
type SaleItem struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID   uuid.UUID       `gorm:"type:uuid;not null;index;column:sale_id"`
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index;column:item_id"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity int             `gorm:"not null"`
	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// BeforeCreate assigns the primary key client-side
func (s *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Notification represents an in-app message for an employee
type Notification struct {
	BaseModel
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index;column:recipient_id"`
	Recipient   *Employee  `gorm:"foreignKey:RecipientID"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Message     string     `gorm:"type:text;not null"`
	Icon        string     `gorm:"type:varchar(50)"`
	Link        string     `gorm:"type:varchar(500)"`
	IsRead      bool       `gorm:"not null;default:false;column:is_read;index"`
	ReadAt      *time.Time `gorm:"column:read_at"`
}

// TenantConfig holds per-tenant settings, one row per tenant
type TenantConfig struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:tenant_id"`

	// Company profile
	CompanyName  string `gorm:"type:varchar(200);column:company_name"`
	CompanyEmail string `gorm:"type:varchar(255);column:company_email"`
	CompanyPhone string `gorm:"type:varchar(50);column:company_phone"`
	Address      string `gorm:"type:varchar(500)"`
	LogoPath     string `gorm:"type:varchar(500);column:logo_path"`

	// Notification toggles
	NotifyOrderStatus bool `gorm:"not null;default:true;column:notify_order_status"`
	NotifyLowStock    bool `gorm:"not null;default:true;column:notify_low_stock"`

	// Invoicing
	Currency      string          `gorm:"type:varchar(10);not null;default:'USD'"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:16;column:tax_percent"`
	InvoicePrefix string          `gorm:"type:varchar(20);not null;default:'INV-';column:invoice_prefix"`
	InvoiceTerms  string          `gorm:"type:text;column:invoice_terms"`

	// Items at or below this quantity appear in the dashboard reorder list
	LowStockThreshold int `gorm:"not null;default:10;column:low_stock_threshold"`
}

// DefaultTenantConfig returns the settings a new tenant starts with
func DefaultTenantConfig(tenantID uuid.UUID) TenantConfig {
	return TenantConfig{
		TenantID:          tenantID,
		NotifyOrderStatus: true,
		NotifyLowStock:    true,
		Currency:          "USD",
		TaxPercent:        decimal.NewFromInt(16),
		InvoicePrefix:     "INV-",
		LowStockThreshold: 10,
	}
}
