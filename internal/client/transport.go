package client

import (
	"fmt"
	"sync"

	socket "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/wire"
)

// Transport is the controller's view of the realtime connection. Handler
// registration is idempotent: registering the same event twice replaces the
// handler. Implemented by the Socket.IO transport and by fakes in tests.
type Transport interface {
	// Connect opens the connection, attaching the session token to the
	// handshake. Establishment is asynchronous; transport-level failures are
	// delivered via the "connect_error" handler.
	Connect(serverURL, token string) error
	// On registers the handler for an event, replacing any previous one.
	On(event string, handler func(payload any))
	// Off removes the handler for an event.
	Off(event string)
	// Emit sends an event to the server.
	Emit(event string, payload any) error
	// Close tears down the connection. Safe to call when not connected.
	Close() error
	// Connected reports whether a live connection exists.
	Connected() bool
}

// transportEvents are the server events the Socket.IO transport listens for.
var transportEvents = []string{
	"connect",
	"connect_error",
	"disconnect",
	wire.EventOnlineUsers,
	wire.EventForceDisconnect,
	wire.EventNewMessage,
}

// SocketTransport is the Socket.IO implementation of Transport.
type SocketTransport struct {
	mu        sync.RWMutex
	socket    *socket.Socket
	handlers  map[string]func(payload any)
	connected bool
}

// NewSocketTransport creates an unconnected Socket.IO transport.
func NewSocketTransport() *SocketTransport {
	return &SocketTransport{
		handlers: make(map[string]func(payload any)),
	}
}

// Connect establishes the Socket.IO connection with the handshake auth
// payload `{auth: {token}}`.
func (t *SocketTransport) Connect(serverURL, token string) error {
	t.mu.Lock()
	if t.socket != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	opts := socket.DefaultOptions()
	opts.SetPath("/socket.io")
	opts.SetTransports(types.NewSet(socket.Polling, socket.WebSocket))
	opts.SetAuth(map[string]interface{}{"token": token})

	sock, err := socket.Connect(serverURL, opts)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	t.mu.Lock()
	t.socket = sock
	t.mu.Unlock()

	for _, event := range transportEvents {
		ev := event
		sock.On(types.EventName(ev), func(args ...any) {
			logger.Tracef("Socket.IO event: %s", ev)

			switch ev {
			case "connect":
				t.mu.Lock()
				t.connected = true
				t.mu.Unlock()
			case "disconnect":
				t.mu.Lock()
				t.connected = false
				t.mu.Unlock()
			}

			var payload any
			if len(args) > 0 {
				payload = args[0]
			}

			t.mu.RLock()
			handler := t.handlers[ev]
			t.mu.RUnlock()

			// Dispatched in event-arrival order on the socket's read loop;
			// handlers must not block.
			if handler != nil {
				handler(payload)
			}
		})
	}

	return nil
}

func (t *SocketTransport) On(event string, handler func(payload any)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = handler
}

func (t *SocketTransport) Off(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, event)
}

func (t *SocketTransport) Emit(event string, payload any) error {
	t.mu.RLock()
	sock := t.socket
	t.mu.RUnlock()

	if sock == nil {
		return fmt.Errorf("not connected")
	}
	sock.Emit(event, payload)
	return nil
}

func (t *SocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.socket != nil {
		t.socket.Disconnect()
		t.socket = nil
	}
	t.connected = false
	return nil
}

func (t *SocketTransport) Connected() bool {
	t.mu.RLock()
	sock := t.socket
	connected := t.connected
	t.mu.RUnlock()

	if connected {
		return true
	}
	if sock != nil && sock.Connected() {
		t.mu.Lock()
		t.connected = true
		t.mu.Unlock()
		return true
	}
	return false
}
