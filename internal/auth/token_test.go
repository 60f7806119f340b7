package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.IssueToken(42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.EmployeeID)
}

func TestTokenSigner_ExpiredToken(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.IssueToken(42, -time.Minute)
	require.NoError(t, err)

	_, err = signer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	signer := NewTokenSigner("right-secret")
	other := NewTokenSigner("wrong-secret")

	token, err := signer.IssueToken(42, time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSigner_Garbage(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		_, err := signer.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, tok)
	}
}
