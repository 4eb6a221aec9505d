package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/models"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&models.CreateTransactionRequest{EventID: "not-a-uuid"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "must be a valid uuid", apperr.FieldsOf(err)["event_id"])
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	assert.NoError(t, Validate(&models.CreateTransactionRequest{
		EventID:   "4f1d1a56-2c1e-4a39-9a8c-5b7d3c1a2e10",
		CouponIDs: []string{"8c3e0f0a-1f8b-4a77-8f0e-2c2b8e1d9a01"},
	}))
}

func TestDecodeAndValidateRejectsBadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader("{"))

	var req models.CreateTransactionRequest
	err := DecodeAndValidate(r, &req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSecondsUntilRoundsUp(t *testing.T) {
	now := time.Now()

	left, ok := SecondsUntil(now.Add(1500*time.Millisecond), now)
	assert.True(t, ok)
	assert.Equal(t, int64(2), left)

	_, ok = SecondsUntil(now.Add(-time.Second), now)
	assert.False(t, ok)
}
