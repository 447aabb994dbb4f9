// Package server implements the chat room server: it accepts connections,
// registers usernames, relays chat frames and enforces the moderation and
// capacity policy.
package server

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// serverSenderName labels frames the server itself authors, such as
// moderation rejection notices.
const serverSenderName = "Server"

// Config carries the connection policy. The shipped binary runs the
// reference constants; tests shrink them.
type Config struct {
	Host            string
	Port            int
	MaxConnections  int
	MinParticipants int
	JoinWindow      time.Duration
}

// DefaultConfig returns the reference system's fixed policy.
func DefaultConfig() Config {
	return Config{
		Port:            protocol.DefaultPort,
		MaxConnections:  protocol.MaxConnections,
		MinParticipants: protocol.MinParticipants,
		JoinWindow:      protocol.JoinWindow,
	}
}

// Server is a single-room chat server.
type Server struct {
	cfg      Config
	logger   zerolog.Logger
	reg      *Registry
	listener net.Listener
	quit     chan struct{}
	errs     chan error
	timer    *time.Timer
	wg       sync.WaitGroup
	stopOnce sync.Once

	// accepted tracks raw sockets from accept until their handler exits, so
	// Stop can unblock connections still mid-handshake.
	acceptedMu sync.Mutex
	accepted   map[net.Conn]struct{}
}

// New creates a server; Start must be called before it accepts anyone.
func New(cfg Config, logger zerolog.Logger) *Server {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = protocol.MaxConnections
	}
	if cfg.MinParticipants <= 0 {
		cfg.MinParticipants = protocol.MinParticipants
	}
	if cfg.JoinWindow <= 0 {
		cfg.JoinWindow = protocol.JoinWindow
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		reg:      NewRegistry(cfg.MaxConnections, logger),
		quit:     make(chan struct{}),
		errs:     make(chan error, 1),
		accepted: make(map[net.Conn]struct{}),
	}
}

// Start binds the listening socket and begins accepting connections in the
// background. The join window starts counting from here: if too few
// participants register in time, ErrJoinTimeout arrives on Err and the
// server shuts down.
func (s *Server) Start() error {
	if err := s.checkHostAddress(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}
	s.listener = listener

	s.timer = time.AfterFunc(s.cfg.JoinWindow, s.joinWindowExpired)

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("chat server started")
	return nil
}

// checkHostAddress verifies that a non-wildcard, non-loopback host really
// belongs to a local interface, so a mistyped address fails at bind time.
func (s *Server) checkHostAddress() error {
	host := s.cfg.Host
	switch host {
	case "", "0.0.0.0", "::", "localhost", "127.0.0.1", "::1":
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: %q is not a valid address", ErrBind, host)
	}
	if ip.IsLoopback() {
		return nil
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}
	for _, a := range addrs {
		if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a local interface address", ErrBind, host)
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Err delivers the fatal room error, currently only the join timeout.
func (s *Server) Err() <-chan error {
	return s.errs
}

// ClientCount returns the number of registered participants.
func (s *Server) ClientCount() int {
	return s.reg.Count()
}

// Flags exposes a user's role snapshot, mainly for tests and diagnostics.
func (s *Server) Flags(username string) (RoleFlags, bool) {
	return s.reg.Flags(username)
}

// Stop closes the listener and every connection, then waits for the
// handlers to drain.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.timer != nil {
			s.timer.Stop()
		}
		if s.listener != nil {
			s.listener.Close()
		}
		s.reg.CloseAll()
		s.acceptedMu.Lock()
		for conn := range s.accepted {
			conn.Close()
		}
		s.acceptedMu.Unlock()
	})
	s.wg.Wait()
	s.logger.Info().Msg("chat server stopped")
}

func (s *Server) joinWindowExpired() {
	if s.reg.TotalRegistered() >= s.cfg.MinParticipants {
		return
	}
	s.logger.Warn().
		Int("required", s.cfg.MinParticipants).
		Int("registered", s.reg.TotalRegistered()).
		Msg("join window expired")
	select {
	case s.errs <- ErrJoinTimeout:
	default:
	}
	s.Stop()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.quit:
					return
				default:
					s.logger.Warn().Err(err).Msg("failed to accept connection")
					continue
				}
			}
			s.wg.Add(1)
			go s.handleConn(conn)
		}
	}
}

// handleConn runs a connection from transport detection to removal. The
// first frame must be the raw username; anything malformed drops the socket
// with no diagnostic sent back.
func (s *Server) handleConn(netConn net.Conn) {
	defer s.wg.Done()

	s.acceptedMu.Lock()
	s.accepted[netConn] = struct{}{}
	s.acceptedMu.Unlock()
	defer func() {
		s.acceptedMu.Lock()
		delete(s.accepted, netConn)
		s.acceptedMu.Unlock()
	}()

	conn, err := acceptTransport(netConn)
	if err != nil {
		s.logger.Debug().Err(err).Msg("dropping undetectable connection")
		netConn.Close()
		return
	}

	username, ok := s.readUsername(conn)
	if !ok {
		registrationsTotal.WithLabelValues("invalid").Inc()
		conn.Close()
		return
	}

	record, err := s.reg.Register(username, conn)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("registration rejected")
		registrationsTotal.WithLabelValues("rejected").Inc()
		conn.Close()
		return
	}
	registrationsTotal.WithLabelValues("accepted").Inc()

	s.wg.Add(1)
	go s.writeLoop(record)

	s.readLoop(record)
}

func (s *Server) readUsername(conn transport.Conn) (string, bool) {
	frame, err := conn.ReadFrame()
	if err != nil {
		return "", false
	}
	if len(frame) == 0 || len(frame) > protocol.MaxUsernameSize || !utf8.Valid(frame) {
		return "", false
	}
	return string(frame), true
}

// writeLoop drains the connection's outbound queue. When the queue closes,
// pending frames are already flushed, so closing the socket here gives the
// kick path its flush-then-close semantics for free.
func (s *Server) writeLoop(c *Connection) {
	defer s.wg.Done()
	for frame := range c.out {
		if err := c.conn.WriteFrame(frame); err != nil {
			s.logger.Debug().Err(err).Str("username", c.Username).Msg("write failed")
			break
		}
	}
	c.conn.Close()
}

// readLoop relays chat frames and dispatches moderation requests until the
// connection signals disconnect or fails. Errors here belong to this
// connection alone.
func (s *Server) readLoop(c *Connection) {
	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			s.logger.Debug().Err(err).Str("username", c.Username).Msg("connection closed")
			s.reg.Remove(c)
			return
		}

		var msg protocol.Message
		if err := msg.Decode(frame); err != nil {
			s.logger.Debug().Err(err).Str("username", c.Username).Msg("undecodable frame skipped")
			continue
		}

		if target, action, ok := protocol.ParseModerationRequest(msg.Content); ok {
			s.handleModeration(c, target, action)
			continue
		}

		if s.reg.IsMuted(c) {
			continue
		}
		s.reg.Broadcast(frame, c)
		relayedFramesTotal.Inc()
	}
}

// handleModeration applies one moderation request. Success sends a status
// frame to the target only; rejection sends a plain notice back to the
// issuer only. Nothing is ever broadcast.
func (s *Server) handleModeration(issuer *Connection, targetName string, action protocol.Action) {
	target, err := s.reg.Apply(issuer, targetName, action)
	if err != nil {
		moderationCommandsTotal.WithLabelValues(action.Token(), "rejected").Inc()
		s.sendNotice(issuer, fmt.Sprintf("%s request for %q rejected: %v", action.Token(), targetName, err))
		return
	}
	moderationCommandsTotal.WithLabelValues(action.Token(), "applied").Inc()

	statusFrame, err := s.encodeServerMessage(protocol.StatusCommand(action))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode status command")
		return
	}
	s.reg.SendTo(target.Username, statusFrame)

	if action == protocol.ActionKick {
		s.reg.Remove(target)
	}
}

func (s *Server) sendNotice(c *Connection, text string) {
	frame, err := s.encodeServerMessage(text)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode notice")
		return
	}
	s.reg.SendTo(c.Username, frame)
}

func (s *Server) encodeServerMessage(content string) ([]byte, error) {
	msg := protocol.Message{
		Content:    content,
		SenderName: serverSenderName,
		Timestamp:  protocol.TimestampNow(),
	}
	return msg.Encode()
}
