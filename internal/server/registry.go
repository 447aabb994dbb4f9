package server

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// Connection is one registered participant. Role flags are owned by the
// Registry and only read or written under its lock.
type Connection struct {
	ID       uuid.UUID
	Username string

	conn  transport.Conn
	out   chan []byte
	host  bool
	admin bool
	muted bool
	gone  bool
}

// RoleFlags is a point-in-time snapshot of a connection's roles.
type RoleFlags struct {
	IsHost  bool
	IsAdmin bool
	IsMuted bool
}

// Registry is the authoritative map from username to connection and the
// single source of truth for moderation state. One mutex serializes every
// mutation, so two commands racing for the same target cannot lose a toggle,
// and broadcast never observes a connection mid-removal.
type Registry struct {
	mu              sync.Mutex
	max             int
	byName          map[string]*Connection
	hostAssigned    bool
	registeredTotal int
	logger          zerolog.Logger
}

// NewRegistry creates a registry capped at max connections.
func NewRegistry(max int, logger zerolog.Logger) *Registry {
	if max <= 0 {
		max = protocol.MaxConnections
	}
	return &Registry{
		max:    max,
		byName: make(map[string]*Connection),
		logger: logger,
	}
}

// Register adds a participant. The first registration in the registry's
// lifetime becomes host; that flag is never granted again, even after the
// host leaves.
func (r *Registry) Register(username string, conn transport.Conn) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.byName) >= r.max {
		return nil, ErrCapacity
	}
	if _, exists := r.byName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	c := &Connection{
		ID:       uuid.New(),
		Username: username,
		conn:     conn,
		out:      make(chan []byte, 16),
		host:     !r.hostAssigned,
	}
	r.hostAssigned = true
	r.registeredTotal++
	r.byName[username] = c

	connectedClients.Set(float64(len(r.byName)))
	r.logger.Info().Str("username", username).Bool("host", c.host).Msg("user registered")
	return c, nil
}

// Remove deletes a connection and closes its outbound queue so the writer
// drains pending frames and then closes the socket. Safe to call twice.
func (r *Registry) Remove(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == nil || c.gone {
		return
	}
	c.gone = true
	delete(r.byName, c.Username)
	close(c.out)

	connectedClients.Set(float64(len(r.byName)))
	r.logger.Info().Str("username", c.Username).Msg("user removed")
}

// Count returns the number of currently registered connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// TotalRegistered returns how many registrations ever succeeded. The join
// window checks this rather than the live count so that an early leaver
// still proves somebody joined.
func (r *Registry) TotalRegistered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registeredTotal
}

// Flags returns a snapshot of a user's role flags.
func (r *Registry) Flags(username string) (RoleFlags, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byName[username]
	if !ok {
		return RoleFlags{}, false
	}
	return RoleFlags{IsHost: c.host, IsAdmin: c.admin, IsMuted: c.muted}, true
}

// IsMuted reports whether the connection is currently muted.
func (r *Registry) IsMuted(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.muted
}

// Status returns the wire status of the connection's current roles.
func (r *Registry) Status(c *Connection) protocol.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case c.host:
		return protocol.StatusHost
	case c.admin:
		return protocol.StatusAdmin
	default:
		return protocol.StatusRegularUser
	}
}

// Broadcast queues a frame to every registered connection except the sender.
// Delivery is best-effort: a participant whose queue is full misses the
// frame rather than stalling the room.
func (r *Registry) Broadcast(frame []byte, except *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byName {
		if c != except {
			r.sendLocked(c, frame)
		}
	}
}

// SendTo queues a frame for one user. Returns false if the user is gone.
func (r *Registry) SendTo(username string, frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byName[username]
	if !ok {
		return false
	}
	return r.sendLocked(c, frame)
}

func (r *Registry) sendLocked(c *Connection, frame []byte) bool {
	if c.gone {
		return false
	}
	select {
	case c.out <- frame:
		return true
	default:
		r.logger.Warn().Str("username", c.Username).Msg("outbound queue full, dropping frame")
		return false
	}
}

// Apply validates and executes a moderation action. Authority rule: the host
// may moderate anyone; an admin may moderate regular users only; everyone
// else may moderate nobody. MUTE and ADMIN toggle the target's flag; KICK
// changes no flag, removal is the caller's side of the bargain once the kick
// frame is queued. Returns the target connection on success.
func (r *Registry) Apply(issuer *Connection, targetName string, action protocol.Action) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.byName[targetName]
	if !ok {
		return nil, ErrUnknownUser
	}
	if !r.mayModerateLocked(issuer, target) {
		return nil, ErrUnauthorized
	}

	switch action {
	case protocol.ActionMute:
		target.muted = !target.muted
	case protocol.ActionAdmin:
		target.admin = !target.admin
	case protocol.ActionKick:
	}

	r.logger.Info().
		Str("issuer", issuer.Username).
		Str("target", targetName).
		Str("action", action.Token()).
		Msg("moderation applied")
	return target, nil
}

func (r *Registry) mayModerateLocked(issuer, target *Connection) bool {
	if issuer.host {
		return true
	}
	if issuer.admin && !target.admin && !target.host {
		return true
	}
	return false
}

// CloseAll removes every connection, draining and closing each socket.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.byName))
	for _, c := range r.byName {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		r.Remove(c)
	}
}
