package presence

import (
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/wire"
)

// Conn is the registry's view of a live realtime connection. It intentionally
// excludes transport-specific types so tests can use fakes and the registry
// never depends on the Socket.IO layer.
type Conn interface {
	// ID returns the opaque connection identifier.
	ID() string
	// UserID returns the identity the connection authenticated as.
	UserID() string
	// Emit pushes an event to the connection. Fire-and-forget: the registry
	// never waits for acknowledgment.
	Emit(event string, payload any)
}

// Registry owns the identity -> connection map. All mutation happens on a
// single event-processing goroutine fed by a command channel, so there is at
// most one map operation in flight at any time and no locks are needed.
//
// The map holds no authority beyond "has a currently open connection": it is
// rebuilt from scratch on every process restart.
type Registry struct {
	cmds chan command
	quit chan struct{}
}

type command interface {
	apply(s *state)
}

type state struct {
	// conns maps user id -> current connection. At most one entry per user.
	conns map[string]Conn
}

// NewRegistry creates a registry and starts its event loop.
func NewRegistry() *Registry {
	r := &Registry{
		cmds: make(chan command),
		quit: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Registry) loop() {
	s := &state{conns: make(map[string]Conn)}
	for {
		select {
		case cmd := <-r.cmds:
			cmd.apply(s)
		case <-r.quit:
			return
		}
	}
}

func (r *Registry) do(cmd command) {
	select {
	case r.cmds <- cmd:
	case <-r.quit:
	}
}

// Close stops the event loop. Pending commands are dropped.
func (r *Registry) Close() {
	close(r.quit)
}

type registerCmd struct {
	conn Conn
}

func (c registerCmd) apply(s *state) {
	userID := c.conn.UserID()

	if prev, ok := s.conns[userID]; ok && prev.ID() != c.conn.ID() {
		// Single active session: tell the superseded connection to close
		// itself. The map is updated optimistically without waiting.
		logger.Infof("Superseding connection for user %s (old socket %s, new socket %s)",
			userID, prev.ID(), c.conn.ID())
		prev.Emit(wire.EventForceDisconnect, nil)
	}

	s.conns[userID] = c.conn
	logger.Debugf("User registered: %s (socket %s)", userID, c.conn.ID())
	s.broadcastOnlineUsers()
}

type deregisterCmd struct {
	userID string
	connID string
}

func (c deregisterCmd) apply(s *state) {
	cur, ok := s.conns[c.userID]
	if !ok || cur.ID() != c.connID {
		// A newer connection already overwrote the entry before this close
		// event fired. Leave it alone.
		logger.Tracef("Stale deregister for user %s (socket %s) ignored", c.userID, c.connID)
		return
	}

	delete(s.conns, c.userID)
	logger.Debugf("User deregistered: %s (socket %s)", c.userID, c.connID)
	s.broadcastOnlineUsers()
}

type lookupCmd struct {
	userID string
	reply  chan Conn
}

func (c lookupCmd) apply(s *state) {
	c.reply <- s.conns[c.userID]
}

type snapshotCmd struct {
	reply chan []string
}

func (c snapshotCmd) apply(s *state) {
	c.reply <- s.onlineUsers()
}

func (s *state) onlineUsers() []string {
	users := make([]string, 0, len(s.conns))
	for userID := range s.conns {
		users = append(users, userID)
	}
	return users
}

// broadcastOnlineUsers pushes the full online-users set to every registered
// connection. Always the complete set, never a diff: clients replace their
// local copy wholesale.
func (s *state) broadcastOnlineUsers() {
	users := s.onlineUsers()
	for _, conn := range s.conns {
		conn.Emit(wire.EventOnlineUsers, users)
	}
}

// Register admits a connection into the presence map. A prior connection for
// the same identity receives exactly one forceDisconnect and is overwritten.
func (r *Registry) Register(conn Conn) {
	r.do(registerCmd{conn: conn})
}

// Deregister removes the entry for userID only if it still points at connID,
// then broadcasts the updated set. Guards against the overwrite-on-reconnect
// vs close-on-disconnect race.
func (r *Registry) Deregister(userID, connID string) {
	r.do(deregisterCmd{userID: userID, connID: connID})
}

// Lookup is the point-query used by message routing: the current connection
// for userID, or false when the user has no live connection. No side effects.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	reply := make(chan Conn, 1)
	r.do(lookupCmd{userID: userID, reply: reply})
	select {
	case conn := <-reply:
		return conn, conn != nil
	case <-r.quit:
		return nil, false
	}
}

// Snapshot returns the current online-users set.
func (r *Registry) Snapshot() []string {
	reply := make(chan []string, 1)
	r.do(snapshotCmd{reply: reply})
	select {
	case users := <-reply:
		return users
	case <-r.quit:
		return nil
	}
}
