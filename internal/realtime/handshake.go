package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chatty-im/chatty/internal/wire"
)

// Admission failure taxonomy. Both are terminal for the connection attempt:
// the socket is told why and disconnected before any presence state is touched.
var (
	// ErrAuthMissing means the handshake carried no session token.
	ErrAuthMissing = errors.New("authentication token not provided")
	// ErrAuthInvalid means the handshake token failed verification or the auth
	// payload was malformed.
	ErrAuthInvalid = errors.New("invalid authentication token")
)

// TokenVerifier verifies a session token and returns the user id it binds.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// AuthenticateHandshake validates the Socket.IO handshake auth object and
// resolves it to a user id. Token payloads are never assumed well-formed:
// anything that does not verify into an identity is rejected.
func AuthenticateHandshake(auth any, verifier TokenVerifier) (string, error) {
	var payload wire.SocketAuthPayload
	if err := decodeAny(auth, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}

	if payload.Token == "" {
		return "", ErrAuthMissing
	}

	userID, err := verifier.VerifyToken(payload.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}

	return userID, nil
}
