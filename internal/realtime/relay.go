package realtime

import (
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/presence"
	"github.com/chatty-im/chatty/internal/wire"
)

// Resolver is the presence point-query contract used to decide whether a push
// can be delivered immediately.
type Resolver interface {
	Lookup(userID string) (presence.Conn, bool)
}

// RelayMessage forwards a REST-persisted message to the receiver's live
// connection, verbatim. When the receiver is offline the push is dropped
// silently: the record remains durably available via the history endpoint.
// Reports whether a push was delivered.
func RelayMessage(resolver Resolver, payload wire.NewMessagePayload) bool {
	if payload.ReceiverID == "" {
		return false
	}

	conn, ok := resolver.Lookup(payload.ReceiverID)
	if !ok {
		logger.Tracef("Receiver %s offline, push dropped (message %s)", payload.ReceiverID, payload.Message.ID)
		return false
	}

	conn.Emit(wire.EventNewMessage, payload.Message)
	return true
}
