package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatty-im/chatty/internal/crypto"
)

type fakeVerifier struct {
	userID string
	err    error
}

func (f fakeVerifier) VerifyToken(token string) (string, error) {
	return f.userID, f.err
}

func TestAuthenticateHandshake_MissingAuth(t *testing.T) {
	_, err := AuthenticateHandshake(nil, fakeVerifier{userID: "u1"})
	require.ErrorIs(t, err, ErrAuthMissing)

	_, err = AuthenticateHandshake(map[string]any{}, fakeVerifier{userID: "u1"})
	require.ErrorIs(t, err, ErrAuthMissing)
}

func TestAuthenticateHandshake_MalformedAuth(t *testing.T) {
	_, err := AuthenticateHandshake(map[string]any{"token": 12345}, fakeVerifier{userID: "u1"})
	require.ErrorIs(t, err, ErrAuthInvalid)
}

func TestAuthenticateHandshake_VerifierRejects(t *testing.T) {
	_, err := AuthenticateHandshake(map[string]any{"token": "t"}, fakeVerifier{err: crypto.ErrInvalidToken})
	require.ErrorIs(t, err, ErrAuthInvalid)
}

func TestAuthenticateHandshake_Valid(t *testing.T) {
	userID, err := AuthenticateHandshake(map[string]any{"token": "t"}, fakeVerifier{userID: "u1"})
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}

func TestAuthenticateHandshake_RealTokens(t *testing.T) {
	m, err := crypto.NewJWTManager("handshake-secret")
	require.NoError(t, err)
	token, err := m.CreateToken("u42")
	require.NoError(t, err)

	userID, err := AuthenticateHandshake(map[string]any{"token": token}, m)
	require.NoError(t, err)
	require.Equal(t, "u42", userID)

	_, err = AuthenticateHandshake(map[string]any{"token": token + "x"}, m)
	require.ErrorIs(t, err, ErrAuthInvalid)
}
