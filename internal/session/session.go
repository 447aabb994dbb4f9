// Package session orchestrates one chat room membership for a UI layer: it
// decides between hosting and joining, owns the client (and server, when
// hosting) and folds the client's events into observable state.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/client"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/server"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// Option customizes a session.
type Option func(*Session)

// WithServerConfig overrides the hosted server's policy. Tests use it to
// shrink ports and windows; the default is the reference policy.
func WithServerConfig(cfg server.Config) Option {
	return func(s *Session) {
		s.srvCfg = cfg
	}
}

// Session is one open chat room. The callbacks, when set, fire on the
// session's pump goroutine; a UI layer must redispatch to its own context.
// Set them before Start.
type Session struct {
	username string
	address  string
	logger   zerolog.Logger
	srvCfg   server.Config

	// OnMessage, when non-nil, is invoked for every chat message received.
	OnMessage func(protocol.Message)

	// OnStatus, when non-nil, is invoked for every status change.
	OnStatus func(client.UserStatus)

	srv *server.Server
	cli *client.Client

	mu     sync.Mutex
	msgs   []protocol.Message
	status client.UserStatus

	errs     chan error
	done     chan struct{}
	doneOnce sync.Once
}

// New prepares a session for the given user. An address equal to the
// protocol.HostAddressSentinel means "host a room"; anything else joins the
// room at that address.
func New(username, address string, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		username: username,
		address:  address,
		logger:   logger,
		srvCfg:   server.DefaultConfig(),
		errs:     make(chan error, 4),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start stands the room up. Hosting starts a loopback server first, then
// connects the client to it; joining connects straight to the given
// address. Connect errors propagate synchronously to the caller.
func (s *Session) Start() error {
	addr := s.address
	if addr == protocol.HostAddressSentinel {
		srv := server.New(s.srvCfg, s.logger)
		if err := srv.Start(); err != nil {
			return err
		}
		s.srv = srv
		addr = srv.Addr()
		go s.watchServer(srv)
	}

	cli := client.New(addr, s.username, s.logger)
	if s.srv != nil {
		cli.SetHosting()
	}
	if err := cli.Connect(); err != nil {
		if s.srv != nil {
			s.srv.Stop()
		}
		return err
	}
	s.cli = cli

	if s.srv != nil {
		if err := s.awaitOwnRegistration(); err != nil {
			cli.Disconnect()
			s.srv.Stop()
			return err
		}
	}

	go s.pump()
	return nil
}

// awaitOwnRegistration blocks until the hosted server has processed this
// client's username frame. Host authority goes to the first registrant, so
// guests must not be invited before this settles.
func (s *Session) awaitOwnRegistration() error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.srv.Flags(s.username); ok {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("%w: hosted server never registered %q", client.ErrConnection, s.username)
}

// watchServer forwards the hosted server's fatal error, such as the join
// window expiring, and ends the session on it.
func (s *Session) watchServer(srv *server.Server) {
	select {
	case err := <-srv.Err():
		select {
		case s.errs <- err:
		default:
		}
		s.finish()
	case <-s.done:
	}
}

// pump folds client events into session state until disconnect.
func (s *Session) pump() {
	for {
		select {
		case msg := <-s.cli.Messages():
			s.mu.Lock()
			s.msgs = append(s.msgs, msg)
			s.mu.Unlock()
			if s.OnMessage != nil {
				s.OnMessage(msg)
			}
		case st := <-s.cli.StatusUpdates():
			s.mu.Lock()
			s.status = st
			s.mu.Unlock()
			if s.OnStatus != nil {
				s.OnStatus(st)
			}
			if !st.IsConnected {
				s.finish()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// ServerAddr returns the hosted server's listen address, or empty when this
// session joined someone else's room.
func (s *Session) ServerAddr() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.Addr()
}

// SendMessage submits chat text; errors surface synchronously for display.
func (s *Session) SendMessage(text string) error {
	return s.cli.SendMessage(text)
}

// Mute requests a mute toggle against target.
func (s *Session) Mute(target string) error {
	return s.cli.RequestMute(target)
}

// Admin requests an admin toggle against target.
func (s *Session) Admin(target string) error {
	return s.cli.RequestAdmin(target)
}

// Kick requests a kick against target.
func (s *Session) Kick(target string) error {
	return s.cli.RequestKick(target)
}

// Messages returns a copy of the messages received so far, in order.
func (s *Session) Messages() []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Status returns the latest status snapshot.
func (s *Session) Status() client.UserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Errors delivers asynchronous failures, such as the hosted server's join
// timeout.
func (s *Session) Errors() <-chan error {
	return s.errs
}

// Done is closed once the session has ended for any reason.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close leaves the room: disconnects the client and, when hosting, stops
// the server.
func (s *Session) Close() {
	if s.cli != nil {
		s.cli.Disconnect()
	}
	if s.srv != nil {
		s.srv.Stop()
	}
	s.finish()
}
