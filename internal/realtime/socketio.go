package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/presence"
	"github.com/chatty-im/chatty/internal/wire"
)

const (
	// pingInterval defines how frequently the server pings clients to detect
	// stale sockets. Together with pingTimeout it bounds how long a vanished
	// client stays in the presence map after an abrupt exit.
	pingInterval = 5 * time.Second
	pingTimeout  = 15 * time.Second

	socketIOPath = "/socket.io"
)

// SocketIOServer wraps the Socket.IO server and wires admitted connections
// into the presence registry.
type SocketIOServer struct {
	verifier TokenVerifier
	registry *presence.Registry
	server   *socket.Server
}

// NewSocketIOServer creates the realtime server. clientURL is the allowed
// CORS origin for the browser client.
func NewSocketIOServer(verifier TokenVerifier, registry *presence.Registry, clientURL string) *SocketIOServer {
	opts := socket.DefaultServerOptions()
	opts.SetCors(&sockettypes.Cors{
		Origin:      clientURL,
		Credentials: true,
	})
	opts.SetPingInterval(pingInterval)
	opts.SetPingTimeout(pingTimeout)
	opts.SetPath(socketIOPath)

	s := &SocketIOServer{
		verifier: verifier,
		registry: registry,
		server:   socket.NewServer(nil, opts),
	}

	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client)
	})

	return s
}

func (s *SocketIOServer) handleConnection(client *socket.Socket) {
	socketID := string(client.Id())
	logger.Infof("Socket.IO connection attempt (socket %s)", socketID)

	// Admission: the handshake token is verified exactly once. Failures are
	// terminal for the attempt and never touch the presence map.
	userID, err := AuthenticateHandshake(client.Handshake().Auth, s.verifier)
	if err != nil {
		logger.Warnf("Socket.IO handshake rejected (socket %s): %v", socketID, err)
		message := "Invalid authentication token"
		if errors.Is(err, ErrAuthMissing) {
			message = "Authentication token not provided"
		}
		client.Emit("error", map[string]string{"message": message})
		client.Disconnect(true)
		return
	}

	conn := &socketConn{socket: client, userID: userID}
	s.registry.Register(conn)
	logger.Infof("User connected: %s (socket %s)", userID, socketID)

	client.On(wire.EventNewMessage, func(data ...any) {
		if len(data) == 0 {
			return
		}
		var payload wire.NewMessagePayload
		if err := decodeAny(data[0], &payload); err != nil {
			logger.Warnf("newMessage decode error from user %s: %v", userID, err)
			return
		}
		RelayMessage(s.registry, payload)
	})

	client.On("disconnect", func(data ...any) {
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}
		logger.Infof("User disconnected: %s (socket %s, reason: %s)", userID, socketID, reason)
		s.registry.Deregister(userID, socketID)
	})
}

// HandleSocketIO creates a Gin handler serving the Socket.IO endpoint.
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusOK)
			return
		}
		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)
		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server.
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}
