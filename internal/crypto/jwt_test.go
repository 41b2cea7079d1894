package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := m.CreateToken("u1")
	require.NoError(t, err)

	userID, err := m.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}

func TestJWTManager_RejectsForeignToken(t *testing.T) {
	issuer, err := NewJWTManager("secret-a")
	require.NoError(t, err)
	verifier, err := NewJWTManager("secret-b")
	require.NoError(t, err)

	token, err := issuer.CreateToken("u1")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	_, err = m.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}
