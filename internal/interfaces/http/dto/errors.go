package dto

import (
	"net/http"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes pass through unchanged.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "INVALID_TOKEN"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ledger.CodeCounterNotFound: http.StatusInternalServerError,

	// Input -> 400
	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,

	// Auth -> 401
	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,

	shared.CodeNotFound:     http.StatusNotFound,
	ErrCodeRouteNotFound:    http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	// Conflicting state -> 409
	shared.CodeAlreadyExists:          http.StatusConflict,
	shared.CodeConcurrentModification: http.StatusConflict,
	shared.CodeDuplicateRequest:       http.StatusConflict,
	ledger.CodeAlreadyDisbursed:       http.StatusConflict,
	ledger.CodeDuplicateDisbursement:  http.StatusConflict,
	client.CodeRequestPending:         http.StatusConflict,
	client.CodeRenunciationPending:    http.StatusConflict,
	client.CodeActiveDisbursement:     http.StatusConflict,
	client.CodeDuplicateDocument:      http.StatusConflict,
	housing.CodeHouseInUse:            http.StatusConflict,
	housing.CodeHouseAssigned:         http.StatusConflict,
	housing.CodeProjectInUse:          http.StatusConflict,
	housing.CodeDuplicateHouse:        http.StatusConflict,

	// Business rules -> 422
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	ledger.CodeCeilingExceeded:   http.StatusUnprocessableEntity,
	ledger.CodeHouseMismatch:     http.StatusUnprocessableEntity,
	client.CodeProcessClosed:     http.StatusUnprocessableEntity,
	client.CodeClientInactive:    http.StatusUnprocessableEntity,
	client.CodeStepNotApplicable: http.StatusUnprocessableEntity,
	client.CodeStepOrder:         http.StatusUnprocessableEntity,
	client.CodePaymentDrivenStep: http.StatusUnprocessableEntity,
	client.CodeMissingEvidence:   http.StatusUnprocessableEntity,
	client.CodeFinancingMismatch: http.StatusUnprocessableEntity,
	housing.CodeBalanceExceeded:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
