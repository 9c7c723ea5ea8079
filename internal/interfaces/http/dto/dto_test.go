package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{shared.CodeConcurrentModification, http.StatusConflict},
		{shared.CodeDuplicateRequest, http.StatusConflict},
		{ledger.CodeCeilingExceeded, http.StatusUnprocessableEntity},
		{ledger.CodeAlreadyDisbursed, http.StatusConflict},
		{ledger.CodeDuplicateDisbursement, http.StatusConflict},
		{ledger.CodeCounterNotFound, http.StatusInternalServerError},
		{client.CodeRequestPending, http.StatusConflict},
		{client.CodeStepOrder, http.StatusUnprocessableEntity},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Success)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewValidationErrorResponse_JSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "monto", Message: "This field is required"},
	})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "monto", "message": "This field is required"}]
		}
	}`, string(raw))
}

func TestPagination(t *testing.T) {
	page, size := Pagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = Pagination(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, 200, size)
}
