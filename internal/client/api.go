package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/chatty-im/chatty/internal/api/middleware"
	"github.com/chatty-im/chatty/internal/wire"
)

// defaultHTTPTimeout is the per-request timeout used by the REST client.
const defaultHTTPTimeout = 15 * time.Second

// APIError is a REST error payload surfaced to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// API is the REST client for the chatty server. The session credential is a
// cookie set by the auth endpoints; the cookie jar carries it on subsequent
// requests and Token extracts it for the realtime handshake.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates a REST client for the given server base URL (no trailing
// slash).
func NewAPI(serverURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &API{
		baseURL: strings.TrimRight(serverURL, "/"),
		http: &http.Client{
			Timeout: defaultHTTPTimeout,
			Jar:     jar,
		},
	}, nil
}

// Token returns the current session token from the jwt cookie, or "" when not
// authenticated.
func (a *API) Token() string {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return ""
	}
	for _, c := range a.http.Jar.Cookies(u) {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	return ""
}

func (a *API) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp wire.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Message == "" {
			errResp.Message = "Something went wrong"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Signup calls POST /auth/signup.
func (a *API) Signup(ctx context.Context, req wire.SignupRequest) (wire.User, error) {
	var user wire.User
	err := a.doJSON(ctx, http.MethodPost, "/auth/signup", req, &user)
	return user, err
}

// Login calls POST /auth/login.
func (a *API) Login(ctx context.Context, req wire.LoginRequest) (wire.User, error) {
	var user wire.User
	err := a.doJSON(ctx, http.MethodPost, "/auth/login", req, &user)
	return user, err
}

// Logout calls POST /auth/logout.
func (a *API) Logout(ctx context.Context) error {
	return a.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Check calls GET /auth/check.
func (a *API) Check(ctx context.Context) (wire.User, error) {
	var user wire.User
	err := a.doJSON(ctx, http.MethodGet, "/auth/check", nil, &user)
	return user, err
}

// UpdateProfile calls PUT /auth/update-profile.
func (a *API) UpdateProfile(ctx context.Context, req wire.UpdateProfileRequest) (wire.User, error) {
	var user wire.User
	err := a.doJSON(ctx, http.MethodPut, "/auth/update-profile", req, &user)
	return user, err
}

// ListContacts calls GET /messages/users.
func (a *API) ListContacts(ctx context.Context) ([]wire.User, error) {
	var users []wire.User
	err := a.doJSON(ctx, http.MethodGet, "/messages/users", nil, &users)
	return users, err
}

// ListMessages calls GET /messages/:userId.
func (a *API) ListMessages(ctx context.Context, userID string) ([]wire.Message, error) {
	var messages []wire.Message
	err := a.doJSON(ctx, http.MethodGet, "/messages/"+userID, nil, &messages)
	return messages, err
}

// SendMessage calls POST /messages/send/:userId and returns the canonical
// persisted record.
func (a *API) SendMessage(ctx context.Context, receiverID string, req wire.SendMessageRequest) (wire.Message, error) {
	var msg wire.Message
	err := a.doJSON(ctx, http.MethodPost, "/messages/send/"+receiverID, req, &msg)
	return msg, err
}
