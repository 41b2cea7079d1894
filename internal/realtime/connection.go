package realtime

import (
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

// socketConn adapts a Socket.IO socket to the presence.Conn interface. The
// authenticated user id is attached at admission and never re-verified.
type socketConn struct {
	socket *socket.Socket
	userID string
}

func (c *socketConn) ID() string {
	return string(c.socket.Id())
}

func (c *socketConn) UserID() string {
	return c.userID
}

func (c *socketConn) Emit(event string, payload any) {
	if payload == nil {
		c.socket.Emit(event)
		return
	}
	c.socket.Emit(event, payload)
}
