package pass_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/models"
	"ms-transactions/internal/pass"
)

func claims() pass.Claims {
	t := &models.Transaction{
		ID:           "tx-1",
		EventID:      "event-1",
		CustomerID:   "customer-1",
		CustomerName: "Ayu",
		Event:        &models.Event{Name: "Jazz Night"},
	}
	return pass.ClaimsFor(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestTokenRoundTrip(t *testing.T) {
	gen, err := pass.NewGenerator("test-secret-key")
	require.NoError(t, err)

	token, err := gen.Token(claims())
	require.NoError(t, err)

	opened, err := gen.Open(token)
	require.NoError(t, err)
	assert.Equal(t, claims(), *opened)
}

func TestTokensDifferPerIssue(t *testing.T) {
	gen, err := pass.NewGenerator("test-secret-key")
	require.NoError(t, err)

	a, err := gen.Token(claims())
	require.NoError(t, err)
	b, err := gen.Token(claims())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestForeignTokenIsRejected(t *testing.T) {
	issuer, err := pass.NewGenerator("secret-a")
	require.NoError(t, err)
	verifier, err := pass.NewGenerator("secret-b")
	require.NoError(t, err)

	token, err := issuer.Token(claims())
	require.NoError(t, err)

	_, err = verifier.Open(token)
	assert.True(t, errors.Is(err, pass.ErrInvalidPass))

	_, err = verifier.Open("not base64 !!")
	assert.True(t, errors.Is(err, pass.ErrInvalidPass))
}

func TestPNG(t *testing.T) {
	gen, err := pass.NewGenerator("test-secret-key")
	require.NoError(t, err)

	img, err := gen.PNG(claims())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}
