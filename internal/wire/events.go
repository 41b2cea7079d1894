package wire

// Socket.IO event names shared by the server registry and the client
// controller. Both sides must agree on these strings, so they live here.
const (
	// EventOnlineUsers carries the full online-users set. The registry emits it
	// to every connected client on each registration/deregistration; the payload
	// is always the complete set, never a diff.
	EventOnlineUsers = "getOnlineUsers"

	// EventForceDisconnect instructs a superseded connection to tear itself
	// down. No payload.
	EventForceDisconnect = "forceDisconnect"

	// EventNewMessage is bidirectional: clients emit a NewMessagePayload after
	// persisting a message; the server forwards the embedded Message verbatim
	// to the receiver's connection.
	EventNewMessage = "newMessage"
)

// SocketAuthPayload is the Socket.IO handshake auth object.
type SocketAuthPayload struct {
	// Token is the signed session credential issued by the REST auth flow.
	Token string `json:"token"`
}

// NewMessagePayload is the client -> server "newMessage" event body.
type NewMessagePayload struct {
	// Message is the REST-persisted record, forwarded by-reference; the server
	// never re-persists it.
	Message Message `json:"message"`
	// ReceiverID selects the target connection via the presence point-query.
	ReceiverID string `json:"receiverId"`
}
