// Package client implements the chat client: one connection to one chat
// server, a background receive loop that splits incoming frames into chat
// messages and status changes, and synchronous sends.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/gobwas/ws"
	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	tcptransport "github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport/tcp"
	wstransport "github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport/ws"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

var (
	// ErrAddressFormat reports a server address that cannot be parsed.
	ErrAddressFormat = errors.New("server address is not valid")

	// ErrConnection reports a connection that could not be established.
	ErrConnection = errors.New("could not reach chat server")

	// ErrNotConnected reports an operation without a live connection.
	ErrNotConnected = errors.New("not connected to a chat server")

	// ErrEmptyMessage reports an attempt to send zero-length chat content.
	ErrEmptyMessage = errors.New("message content is empty")
)

// Client talks to one chat server.
//
// Threading contract: Messages and StatusUpdates are fed from the receive
// loop's goroutine. A consumer that needs its own execution context (a UI
// main loop, say) must redispatch; the client never calls into foreign code.
type Client struct {
	address  string
	username string
	hosting  bool
	logger   zerolog.Logger

	mu     sync.RWMutex
	conn   transport.Conn
	status UserStatus

	messages chan protocol.Message
	statusCh chan UserStatus
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a client for the given server address. Nothing happens until
// Connect.
func New(address, username string, logger zerolog.Logger) *Client {
	return &Client{
		address:  address,
		username: username,
		logger:   logger,
		status:   UserStatus{Username: username},
		messages: make(chan protocol.Message, 16),
		statusCh: make(chan UserStatus, 16),
		done:     make(chan struct{}),
	}
}

// SetHosting marks this client as the room's host side. The hosting caller
// sets it before Connect; the flag only seeds the local status snapshot,
// the server grants actual host authority to the first registrant.
func (c *Client) SetHosting() {
	c.mu.Lock()
	c.hosting = true
	c.status.IsHost = true
	c.mu.Unlock()
}

// Connect opens the connection, sends the username frame and starts the
// receive loop. A ws:// or wss:// address selects the WebSocket transport,
// anything else is host:port TCP.
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}

	if err := conn.WriteFrame([]byte(c.username)); err != nil {
		conn.Close()
		return fmt.Errorf("%w: username handshake failed: %v", ErrConnection, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.status.IsConnected = true
	st := c.status
	c.mu.Unlock()

	c.emitStatus(st)

	c.wg.Add(1)
	go c.receiveLoop(conn)
	return nil
}

func (c *Client) dial() (transport.Conn, error) {
	if strings.HasPrefix(c.address, "ws://") || strings.HasPrefix(c.address, "wss://") {
		conn, br, _, err := ws.Dial(context.Background(), c.address)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		if br != nil {
			return wstransport.NewClientConn(transport.BufferedConn{Conn: conn, Reader: br}), nil
		}
		return wstransport.NewClientConn(conn), nil
	}

	if _, _, err := net.SplitHostPort(c.address); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrAddressFormat, c.address)
	}
	conn, err := net.Dial("tcp", c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return tcptransport.NewConn(conn), nil
}

// IsConnected reports whether a live connection exists.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Status returns the current status snapshot.
func (c *Client) Status() UserStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Messages delivers chat messages decoded by the receive loop.
func (c *Client) Messages() <-chan protocol.Message {
	return c.messages
}

// StatusUpdates delivers a snapshot after every local status change.
func (c *Client) StatusUpdates() <-chan UserStatus {
	return c.statusCh
}

// SendMessage submits chat text. Zero-length content is refused: an empty
// frame is the protocol's disconnect signal and only Disconnect sends it.
func (c *Client) SendMessage(text string) error {
	if len(text) == 0 {
		return ErrEmptyMessage
	}
	return c.sendContent(text)
}

// RequestMute asks the server to toggle the target's mute flag.
func (c *Client) RequestMute(target string) error {
	return c.sendContent(protocol.ModerationRequest(target, protocol.ActionMute))
}

// RequestAdmin asks the server to toggle the target's admin flag.
func (c *Client) RequestAdmin(target string) error {
	return c.sendContent(protocol.ModerationRequest(target, protocol.ActionAdmin))
}

// RequestKick asks the server to kick the target.
func (c *Client) RequestKick(target string) error {
	return c.sendContent(protocol.ModerationRequest(target, protocol.ActionKick))
}

func (c *Client) sendContent(content string) error {
	c.mu.RLock()
	conn := c.conn
	st := c.status
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	msg := protocol.Message{
		Content:      content,
		SenderName:   c.username,
		Timestamp:    protocol.TimestampNow(),
		SenderStatus: wireStatus(st),
	}
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := conn.WriteFrame(data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Disconnect sends the empty disconnect frame best-effort and tears the
// connection down. Failures are swallowed: the peer may already be gone.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteFrame(nil)
	}
	c.doneOnce.Do(func() { close(c.done) })
	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
	c.teardown()
}

// receiveLoop reads frames until the server disconnects or a read or decode
// error occurs. Errors here mean a closed peer, not an actionable fault, so
// they terminate the loop silently; they are logged at debug level only.
func (c *Client) receiveLoop(conn transport.Conn) {
	defer c.wg.Done()
	defer c.teardown()

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			c.logger.Debug().Err(err).Msg("receive loop ended")
			return
		}

		var msg protocol.Message
		if err := msg.Decode(frame); err != nil {
			c.logger.Debug().Err(err).Msg("undecodable frame, closing")
			return
		}

		if action, ok := protocol.ParseStatusCommand(msg.Content); ok {
			c.emitStatus(c.applyCommand(action))
			if action == protocol.ActionKick {
				return
			}
			continue
		}

		if msg.SenderName == c.username {
			msg.Alignment = protocol.AlignRight
		} else {
			msg.Alignment = protocol.AlignLeft
		}

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}

// applyCommand toggles the local status for a server-issued command and
// returns the fresh snapshot.
func (c *Client) applyCommand(action protocol.Action) UserStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch action {
	case protocol.ActionMute:
		c.status.IsMuted = !c.status.IsMuted
	case protocol.ActionAdmin:
		c.status.IsAdmin = !c.status.IsAdmin
	case protocol.ActionKick:
		c.status.IsConnected = false
	}
	return c.status
}

// teardown closes the socket and publishes the disconnected snapshot once.
func (c *Client) teardown() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	wasConnected := c.status.IsConnected
	c.status.IsConnected = false
	st := c.status
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		c.emitStatus(st)
	}
}

// emitStatus delivers a snapshot without ever blocking the receive loop; a
// consumer that has fallen sixteen updates behind loses the oldest ones.
func (c *Client) emitStatus(st UserStatus) {
	select {
	case c.statusCh <- st:
	default:
		c.logger.Debug().Msg("status channel full, dropping update")
	}
}

func wireStatus(st UserStatus) protocol.Status {
	switch {
	case st.IsHost:
		return protocol.StatusHost
	case st.IsAdmin:
		return protocol.StatusAdmin
	default:
		return protocol.StatusRegularUser
	}
}
