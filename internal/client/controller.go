package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/wire"
)

// Notifier surfaces user-visible notifications (the toast collaborator). All
// failures render as transient notifications; none crash the controller.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Controller is the client session controller: it owns at most one realtime
// connection per process, reacts to presence and forced-disconnect events,
// and bridges REST-sent messages with push-received messages into a single
// feed. State mutation happens only inside its methods and event handlers.
type Controller struct {
	api       *API
	transport Transport
	notifier  Notifier
	// reload is invoked after a forced disconnect: continuing with stale local
	// state after losing the session is unsafe, so the caller rebuilds from
	// scratch (the terminal client re-runs the auth check).
	reload func()

	mu          sync.Mutex
	socketUp    bool
	authUser    *wire.User
	onlineUsers []string
	users       []wire.User
	selected    *wire.User
	messages    []wire.Message
}

// NewController creates a controller. notifier and reload may be nil.
func NewController(api *API, transport Transport, notifier Notifier, reload func()) *Controller {
	return &Controller{
		api:       api,
		transport: transport,
		notifier:  notifier,
		reload:    reload,
	}
}

func (c *Controller) notifySuccess(message string) {
	if c.notifier != nil {
		c.notifier.Success(message)
	}
}

func (c *Controller) notifyError(message string) {
	if c.notifier != nil {
		c.notifier.Error(message)
	}
}

// errMessage extracts the human-readable message from a REST error.
func errMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Something went wrong"
}

func decodePayload(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// CheckAuth resolves the current session via GET /auth/check and connects the
// realtime socket when authenticated. Failure leaves the controller signed
// out without a notification (an expired session is not an error to shout
// about).
func (c *Controller) CheckAuth(ctx context.Context) (*wire.User, error) {
	user, err := c.api.Check(ctx)
	if err != nil {
		logger.Debugf("Auth check failed: %v", err)
		c.mu.Lock()
		c.authUser = nil
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.authUser = &user
	c.mu.Unlock()

	if token := c.api.Token(); token != "" {
		c.ConnectSocket(token)
	}
	return &user, nil
}

// Signup creates an account, then connects the realtime socket with the
// freshly issued session token.
func (c *Controller) Signup(ctx context.Context, req wire.SignupRequest) error {
	user, err := c.api.Signup(ctx, req)
	if err != nil {
		c.notifyError(errMessage(err))
		return err
	}

	c.mu.Lock()
	c.authUser = &user
	c.mu.Unlock()

	if token := c.api.Token(); token != "" {
		c.ConnectSocket(token)
	}
	c.notifySuccess("Account created successfully")
	return nil
}

// Login authenticates, then connects the realtime socket.
func (c *Controller) Login(ctx context.Context, req wire.LoginRequest) error {
	user, err := c.api.Login(ctx, req)
	if err != nil {
		c.notifyError(errMessage(err))
		return err
	}

	c.mu.Lock()
	c.authUser = &user
	c.mu.Unlock()

	if token := c.api.Token(); token != "" {
		c.ConnectSocket(token)
	}
	c.notifySuccess("Logged in successfully")
	return nil
}

// Logout ends the REST session and tears down the realtime connection.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.api.Logout(ctx); err != nil {
		logger.Errorf("Logout failed: %v", err)
		return err
	}

	c.mu.Lock()
	c.authUser = nil
	c.mu.Unlock()

	c.DisconnectSocket()
	c.notifySuccess("Logged out successfully")
	return nil
}

// UpdateProfile updates the avatar via PUT /auth/update-profile.
func (c *Controller) UpdateProfile(ctx context.Context, req wire.UpdateProfileRequest) error {
	user, err := c.api.UpdateProfile(ctx, req)
	if err != nil {
		c.notifyError(errMessage(err))
		return err
	}

	c.mu.Lock()
	c.authUser = &user
	c.mu.Unlock()

	c.notifySuccess("Profile updated successfully")
	return nil
}

// ConnectSocket opens the realtime connection with the given session token.
// A connection already exists -> no-op: the existing connection is reused,
// never duplicated.
func (c *Controller) ConnectSocket(token string) {
	c.mu.Lock()
	if c.socketUp {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.transport.On("connect_error", func(payload any) {
		logger.Warnf("Socket connection error: %v", payload)
		c.notifyError("Failed to connect to chat server")
	})

	c.transport.On(wire.EventOnlineUsers, func(payload any) {
		var users []string
		if err := decodePayload(payload, &users); err != nil {
			logger.Warnf("getOnlineUsers decode error: %v", err)
			return
		}
		// Wholesale replacement: the registry always sends the complete set.
		c.mu.Lock()
		c.onlineUsers = users
		c.mu.Unlock()
	})

	c.transport.On(wire.EventForceDisconnect, func(payload any) {
		c.handleForceDisconnect()
	})

	if err := c.transport.Connect(c.api.baseURL, token); err != nil {
		logger.Warnf("Socket connect failed: %v", err)
		c.notifyError("Failed to connect to chat server")
		return
	}

	c.mu.Lock()
	c.socketUp = true
	c.mu.Unlock()
}

func (c *Controller) handleForceDisconnect() {
	c.transport.Close()

	c.mu.Lock()
	c.socketUp = false
	c.onlineUsers = nil
	c.mu.Unlock()

	c.notifyError("New session started from another window")
	if c.reload != nil {
		c.reload()
	}
}

// DisconnectSocket tears down the realtime connection and resets the
// online-users set: a disconnected client has no authority to assume anyone
// is online.
func (c *Controller) DisconnectSocket() {
	c.transport.Close()

	c.mu.Lock()
	c.socketUp = false
	c.onlineUsers = nil
	c.mu.Unlock()
}

// LoadUsers fetches the conversation sidebar.
func (c *Controller) LoadUsers(ctx context.Context) ([]wire.User, error) {
	users, err := c.api.ListContacts(ctx)
	if err != nil {
		c.notifyError(errMessage(err))
		return nil, err
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return users, nil
}

// SelectUser sets the current conversation partner and clears the feed until
// LoadMessages repopulates it.
func (c *Controller) SelectUser(user *wire.User) {
	c.mu.Lock()
	c.selected = user
	c.messages = nil
	c.mu.Unlock()
}

// LoadMessages fetches the history for the selected conversation.
func (c *Controller) LoadMessages(ctx context.Context) ([]wire.Message, error) {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == nil {
		return nil, errors.New("no conversation selected")
	}

	messages, err := c.api.ListMessages(ctx, selected.ID)
	if err != nil {
		c.notifyError(errMessage(err))
		return nil, err
	}

	c.mu.Lock()
	c.messages = messages
	c.mu.Unlock()
	return messages, nil
}

// SendMessage persists the message via REST and, only on success, appends the
// server-acknowledged record to the feed and pushes a newMessage notification
// toward the recipient. A persistence failure changes nothing locally and
// emits nothing.
func (c *Controller) SendMessage(ctx context.Context, req wire.SendMessageRequest) error {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == nil {
		return errors.New("no conversation selected")
	}

	msg, err := c.api.SendMessage(ctx, selected.ID, req)
	if err != nil {
		c.notifyError(errMessage(err))
		return err
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	// Step 2 of the send protocol. No retry when the recipient is offline:
	// the record is durable and reachable via history.
	if err := c.transport.Emit(wire.EventNewMessage, wire.NewMessagePayload{
		Message:    msg,
		ReceiverID: selected.ID,
	}); err != nil {
		logger.Tracef("newMessage push skipped: %v", err)
	}
	return nil
}

// SubscribeToMessages registers the push handler for the selected
// conversation. Idempotent: re-subscribing replaces the handler.
func (c *Controller) SubscribeToMessages() {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == nil {
		return
	}

	c.transport.On(wire.EventNewMessage, func(payload any) {
		var msg wire.Message
		if err := decodePayload(payload, &msg); err != nil {
			logger.Warnf("newMessage decode error: %v", err)
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// Pushes from anyone but the selected partner are dropped; they stay
		// reachable via history when that conversation is opened.
		if c.selected == nil || msg.SenderID != c.selected.ID {
			return
		}
		c.messages = append(c.messages, msg)
	})
}

// UnsubscribeFromMessages removes the push handler.
func (c *Controller) UnsubscribeFromMessages() {
	c.transport.Off(wire.EventNewMessage)
}

// AuthUser returns the authenticated user, or nil when signed out.
func (c *Controller) AuthUser() *wire.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authUser == nil {
		return nil
	}
	user := *c.authUser
	return &user
}

// SelectedUser returns the current conversation partner, or nil.
func (c *Controller) SelectedUser() *wire.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	user := *c.selected
	return &user
}

// OnlineUsers returns a copy of the online-users set.
func (c *Controller) OnlineUsers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.onlineUsers...)
}

// IsOnline reports whether a user id is in the online-users set.
func (c *Controller) IsOnline(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.onlineUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Users returns a copy of the sidebar users.
func (c *Controller) Users() []wire.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.User(nil), c.users...)
}

// Messages returns a copy of the message feed.
func (c *Controller) Messages() []wire.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Message(nil), c.messages...)
}
