package persistence

import "strings"

// Sort parameters arrive from query strings and are interpolated into
// ORDER BY clauses, so both the field and the direction are validated
// against closed sets before they reach SQL.

// ValidateSortOrder normalizes a requested sort direction. Anything
// other than ASC (case-insensitive) collapses to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when the whitelist allows it and
// defaultField otherwise. Matching is exact after trimming whitespace.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields covers the base-entity columns every table has.
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}
