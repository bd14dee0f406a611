package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mehmetnuribasa/boreksan/internal/domain/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeSessionExpired, http.StatusUnauthorized},
		{ErrCodeReconcileFailed, http.StatusUnprocessableEntity},
		{ErrCodeNoChanges, http.StatusUnprocessableEntity},
		{ErrCodeBackend, http.StatusBadGateway},
		{ErrCodeBackendUnavailable, http.StatusServiceUnavailable},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{"ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeCutoffPassed, NormalizeErrorCode("ORDER_CUTOFF_PASSED"))
	assert.Equal(t, ErrCodeSessionExpired, NormalizeErrorCode("SESSION_EXPIRED"))
	assert.Equal(t, "ERR_ALREADY_NEW", NormalizeErrorCode("ERR_ALREADY_NEW"))

	// every mapped code has a status
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "no HTTP status for %s (%s)", apiCode, domainCode)
	}
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1",
		[]ValidationDetail{{Field: "targetQuantity", Message: "Must be greater than or equal to 0"}})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}

func TestToEditsAndPending(t *testing.T) {
	five, zero := 5, 0
	edits := ToEdits([]TargetEditRequest{
		{ShopKey: "Lale", ProductID: 2, TargetQuantity: &five},
		{ShopKey: "Ada", ProductID: 1, TargetQuantity: &zero},
	})
	require.Len(t, edits, 2)
	assert.Equal(t, reconcile.Key{ShopKey: "Lale", ProductID: 2}, edits[0].Key)
	assert.Equal(t, 5, edits[0].Target)

	pending := FromPending(map[reconcile.Key]int{
		{ShopKey: "Lale", ProductID: 2}: 5,
		{ShopKey: "Ada", ProductID: 3}:  1,
		{ShopKey: "Ada", ProductID: 1}:  0,
	})
	assert.Equal(t, []PendingEdit{
		{ShopKey: "Ada", ProductID: 1, TargetQuantity: 0},
		{ShopKey: "Ada", ProductID: 3, TargetQuantity: 1},
		{ShopKey: "Lale", ProductID: 2, TargetQuantity: 5},
	}, pending)
}
