package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatty-im/chatty/internal/wire"
)

type fakeTransport struct {
	mu           sync.Mutex
	handlers     map[string]func(payload any)
	emitted      []struct {
		event   string
		payload any
	}
	connectCalls int
	closeCalls   int
	connected    bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]func(payload any))}
}

func (f *fakeTransport) Connect(serverURL, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	f.connected = true
	return nil
}

func (f *fakeTransport) On(event string, handler func(payload any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = handler
}

func (f *fakeTransport) Off(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, event)
}

func (f *fakeTransport) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, struct {
		event   string
		payload any
	}{event, payload})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	f.connected = false
	return nil
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// fire delivers a server event to the registered handler, as the socket read
// loop would.
func (f *fakeTransport) fire(t *testing.T, event string, payload any) {
	t.Helper()
	f.mu.Lock()
	handler := f.handlers[event]
	f.mu.Unlock()
	require.NotNil(t, handler, "no handler registered for %s", event)
	handler(payload)
}

func (f *fakeTransport) emittedCount(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emitted {
		if e.event == event {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

// stubBackend is a minimal REST collaborator with switchable send failure.
type stubBackend struct {
	mu       sync.Mutex
	failSend bool
}

func (b *stubBackend) setFailSend(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failSend = fail
}

func (b *stubBackend) sendFails() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failSend
}

func newStubServer(t *testing.T, backend *stubBackend) *httptest.Server {
	t.Helper()
	me := wire.User{ID: "u1", FullName: "Alice", Email: "alice@example.com"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token123", Path: "/"})
		json.NewEncoder(w).Encode(me)
	})
	mux.HandleFunc("GET /auth/check", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(me)
	})
	mux.HandleFunc("GET /messages/users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]wire.User{{ID: "u2", FullName: "Bob"}})
	})
	mux.HandleFunc("POST /messages/send/{userId}", func(w http.ResponseWriter, r *http.Request) {
		if backend.sendFails() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(wire.ErrorResponse{Message: "Internal server error"})
			return
		}
		var req wire.SendMessageRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(wire.Message{
			ID:         "m1",
			SenderID:   me.ID,
			ReceiverID: r.PathValue("userId"),
			Text:       req.Text,
			CreatedAt:  1700000000000,
		})
	})
	mux.HandleFunc("GET /messages/{userId}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]wire.Message{})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestController(t *testing.T) (*Controller, *fakeTransport, *recordingNotifier, *stubBackend, *int) {
	t.Helper()
	backend := &stubBackend{}
	srv := newStubServer(t, backend)

	api, err := NewAPI(srv.URL)
	require.NoError(t, err)

	transport := newFakeTransport()
	notifier := &recordingNotifier{}
	reloads := 0
	ctrl := NewController(api, transport, notifier, func() { reloads++ })
	return ctrl, transport, notifier, backend, &reloads
}

func login(t *testing.T, ctrl *Controller) {
	t.Helper()
	require.NoError(t, ctrl.Login(context.Background(), wire.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
}

func selectBob(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctrl.SelectUser(&wire.User{ID: "u2", FullName: "Bob"})
	ctrl.SubscribeToMessages()
}

func TestLoginConnectsSocketOnce(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)

	login(t, ctrl)
	require.Equal(t, 1, transport.connectCalls)
	require.NotNil(t, ctrl.AuthUser())

	// Reconnect request while a connection exists is a no-op.
	ctrl.ConnectSocket("token123")
	require.Equal(t, 1, transport.connectCalls)
}

func TestOnlineUsersReplacedWholesale(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)
	login(t, ctrl)

	transport.fire(t, wire.EventOnlineUsers, []any{"u1", "u2", "u3"})
	require.ElementsMatch(t, []string{"u1", "u2", "u3"}, ctrl.OnlineUsers())

	transport.fire(t, wire.EventOnlineUsers, []any{"u1"})
	require.Equal(t, []string{"u1"}, ctrl.OnlineUsers())
	require.True(t, ctrl.IsOnline("u1"))
	require.False(t, ctrl.IsOnline("u2"))
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	ctrl, transport, notifier, backend, _ := newTestController(t)
	login(t, ctrl)
	selectBob(t, ctrl)

	backend.setFailSend(true)
	err := ctrl.SendMessage(context.Background(), wire.SendMessageRequest{Text: "hi"})
	require.Error(t, err)

	// Feed only ever reflects server-acknowledged state.
	require.Empty(t, ctrl.Messages())
	require.Equal(t, 0, transport.emittedCount(wire.EventNewMessage))
	require.Equal(t, 1, notifier.errorCount())
}

func TestSendMessageSuccessAppendsAndPushes(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)
	login(t, ctrl)
	selectBob(t, ctrl)

	require.NoError(t, ctrl.SendMessage(context.Background(), wire.SendMessageRequest{Text: "hi bob"}))

	messages := ctrl.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, "m1", messages[0].ID)
	require.Equal(t, "hi bob", messages[0].Text)

	require.Equal(t, 1, transport.emittedCount(wire.EventNewMessage))
	transport.mu.Lock()
	payload := transport.emitted[0].payload.(wire.NewMessagePayload)
	transport.mu.Unlock()
	require.Equal(t, "u2", payload.ReceiverID)
	require.Equal(t, "m1", payload.Message.ID)
}

func TestPushFromNonSelectedSenderDropped(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)
	login(t, ctrl)
	selectBob(t, ctrl)

	// Socket.IO delivers JSON objects as maps.
	transport.fire(t, wire.EventNewMessage, map[string]any{
		"id": "m9", "senderId": "u3", "receiverId": "u1", "text": "wrong chat",
	})
	require.Empty(t, ctrl.Messages())

	transport.fire(t, wire.EventNewMessage, map[string]any{
		"id": "m10", "senderId": "u2", "receiverId": "u1", "text": "right chat",
	})
	messages := ctrl.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, "m10", messages[0].ID)
}

func TestUnsubscribeStopsFeedAppends(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)
	login(t, ctrl)
	selectBob(t, ctrl)

	ctrl.UnsubscribeFromMessages()

	transport.mu.Lock()
	_, registered := transport.handlers[wire.EventNewMessage]
	transport.mu.Unlock()
	require.False(t, registered)
}

func TestForceDisconnectResetsState(t *testing.T) {
	ctrl, transport, notifier, _, reloads := newTestController(t)
	login(t, ctrl)
	transport.fire(t, wire.EventOnlineUsers, []any{"u1", "u2"})

	transport.fire(t, wire.EventForceDisconnect, nil)

	require.Equal(t, 1, transport.closeCalls)
	require.Empty(t, ctrl.OnlineUsers())
	require.Equal(t, 1, *reloads)
	require.Equal(t, 1, notifier.errorCount())

	// The controller may reconnect after the forced teardown.
	ctrl.ConnectSocket("token123")
	require.Equal(t, 2, transport.connectCalls)
}

func TestDisconnectSocketClearsOnlineUsers(t *testing.T) {
	ctrl, transport, _, _, _ := newTestController(t)
	login(t, ctrl)
	transport.fire(t, wire.EventOnlineUsers, []any{"u1", "u2"})

	ctrl.DisconnectSocket()

	require.Empty(t, ctrl.OnlineUsers())
	require.False(t, transport.Connected())
}

func TestLoadUsers(t *testing.T) {
	ctrl, _, _, _, _ := newTestController(t)
	login(t, ctrl)

	users, err := ctrl.LoadUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "u2", users[0].ID)
}
