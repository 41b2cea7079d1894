package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatty-im/chatty/internal/presence"
	"github.com/chatty-im/chatty/internal/wire"
)

type recordingConn struct {
	id     string
	userID string

	mu     sync.Mutex
	events []struct {
		event   string
		payload any
	}
}

func (c *recordingConn) ID() string     { return c.id }
func (c *recordingConn) UserID() string { return c.userID }

func (c *recordingConn) Emit(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, struct {
		event   string
		payload any
	}{event, payload})
}

type fakeResolver struct {
	conns map[string]presence.Conn
}

func (f fakeResolver) Lookup(userID string) (presence.Conn, bool) {
	conn, ok := f.conns[userID]
	return conn, ok
}

func TestRelayMessage_DeliversToLiveReceiver(t *testing.T) {
	receiver := &recordingConn{id: "s2", userID: "u2"}
	resolver := fakeResolver{conns: map[string]presence.Conn{"u2": receiver}}

	msg := wire.Message{ID: "m1", SenderID: "u1", ReceiverID: "u2", Text: "hi"}
	delivered := RelayMessage(resolver, wire.NewMessagePayload{Message: msg, ReceiverID: "u2"})

	require.True(t, delivered)
	require.Len(t, receiver.events, 1)
	require.Equal(t, wire.EventNewMessage, receiver.events[0].event)
	// Forwarded verbatim, not rebuilt.
	require.Equal(t, msg, receiver.events[0].payload)
}

func TestRelayMessage_DropsWhenReceiverOffline(t *testing.T) {
	resolver := fakeResolver{conns: map[string]presence.Conn{}}

	delivered := RelayMessage(resolver, wire.NewMessagePayload{
		Message:    wire.Message{ID: "m1", SenderID: "u1", ReceiverID: "u2"},
		ReceiverID: "u2",
	})

	require.False(t, delivered)
}

func TestRelayMessage_IgnoresEmptyReceiver(t *testing.T) {
	receiver := &recordingConn{id: "s2", userID: "u2"}
	resolver := fakeResolver{conns: map[string]presence.Conn{"": receiver}}

	delivered := RelayMessage(resolver, wire.NewMessagePayload{
		Message: wire.Message{ID: "m1"},
	})

	require.False(t, delivered)
	require.Empty(t, receiver.events)
}
