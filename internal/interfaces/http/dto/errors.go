package dto

import "net/http"

// API error codes use the ERR_<CATEGORY>_<DETAIL> format. Domain error
// codes from the billing packages pass through unchanged so clients can
// react to them directly.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Codes raised by the duration billing domain.
const (
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrderState    = "INVALID_ORDER_STATE"
	ErrCodeInvalidPricingRule   = "INVALID_PRICING_RULE"
	ErrCodeNegativeBillingTime  = "NEGATIVE_BILLING_TIME"
	ErrCodeInvalidPrepaidAmount = "INVALID_PREPAID_AMOUNT"
	ErrCodeProductDisabled      = "PRODUCT_DISABLED"
)

// ErrorCodeHTTPStatus is the single source of truth for mapping error
// codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeProductNotFound:      http.StatusNotFound,
	ErrCodeOrderNotFound:        http.StatusNotFound,
	ErrCodeInvalidOrderState:    http.StatusConflict,
	ErrCodeInvalidPricingRule:   http.StatusBadRequest,
	ErrCodeNegativeBillingTime:  http.StatusUnprocessableEntity,
	ErrCodeInvalidPrepaidAmount: http.StatusBadRequest,
	ErrCodeProductDisabled:      http.StatusUnprocessableEntity,
}

// GetHTTPStatus resolves the status for an error code, defaulting to 500
// for codes the map does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates shared-kernel error codes into the
// ERR_-prefixed API format.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode maps a shared-kernel code to its API form. Codes
// that are already normalized, including billing domain codes, come back
// unchanged.
func NormalizeErrorCode(code string) string {
	if normalized, ok := LegacyErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}
