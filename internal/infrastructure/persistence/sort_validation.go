package persistence

import (
	"strings"

	"github.com/constructora/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyPaging adds ORDER BY, LIMIT and OFFSET from filter
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	return query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Limit(filter.PageSize).
		Offset(filter.Offset())
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"nombre":     true,
	"ubicacion":  true,
}

// HouseSortFields contains allowed sort fields for houses
var HouseSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"manzana":         true,
	"numero_casa":     true,
	"valor_final":     true,
	"total_abonado":   true,
	"saldo_pendiente": true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"nombres":    true,
	"apellidos":  true,
	"cedula":     true,
	"status":     true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"consecutivo": true,
	"fecha_pago":  true,
	"monto":       true,
	"fuente":      true,
}

// RenunciationSortFields contains allowed sort fields for renunciations
var RenunciationSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"fecha_renuncia": true,
	"estado":         true,
}
