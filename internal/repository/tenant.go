package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (created_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config
// fieldMap maps API field names to database column names
// Returns the default sort if field is not in whitelist
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyTenantFilter applies the multi-tenant filter to a GORM query.
// Every tenant-scoped query must pass through here. A request without a
// tenant in context matches nothing rather than everything.
func ApplyTenantFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	tenantID, ok := auth.TenantFromContext(ctx)
	if !ok || tenantID == uuid.Nil {
		return query.Where("1 = 0")
	}
	return query.Where("tenant_id = ?", tenantID)
}

// ApplyTenantFilterWithAlias applies the tenant filter using a table alias.
// Use this when joining multiple tables and the tenant_id column needs
// qualification.
func ApplyTenantFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	tenantID, ok := auth.TenantFromContext(ctx)
	if !ok || tenantID == uuid.Nil {
		return query.Where("1 = 0")
	}
	return query.Where(tableAlias+".tenant_id = ?", tenantID)
}

// ClampPage normalizes page and pageSize for paginated queries
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
