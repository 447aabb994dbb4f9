// Package ws provides the WebSocket transport for the chat protocol using
// gobwas/ws. Frames travel as binary messages.
package ws

import (
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// Conn adapts an upgraded WebSocket connection to transport.Conn. The role
// decides masking: per RFC 6455 client frames are masked, server frames are
// not, and gobwas exposes that through separate helper pairs.
type Conn struct {
	conn   net.Conn
	server bool
}

// NewServerConn wraps the server side of an upgraded connection.
func NewServerConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, server: true}
}

// NewClientConn wraps the client side of an upgraded connection.
func NewClientConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// ReadFrame implements transport.Conn. An empty binary message is the
// disconnect signal and surfaces as io.EOF.
func (c *Conn) ReadFrame() ([]byte, error) {
	var data []byte
	var err error
	if c.server {
		data, err = wsutil.ReadClientBinary(c.conn)
	} else {
		data, err = wsutil.ReadServerBinary(c.conn)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, io.EOF
	}
	if len(data) > protocol.MaxFrameSize {
		return nil, transport.ErrFrameTooLarge
	}
	return data, nil
}

// WriteFrame implements transport.Conn. Empty data sends an empty binary
// message, the WebSocket form of the disconnect frame.
func (c *Conn) WriteFrame(data []byte) error {
	if len(data) > protocol.MaxFrameSize {
		return transport.ErrFrameTooLarge
	}
	if c.server {
		return wsutil.WriteServerBinary(c.conn, data)
	}
	return wsutil.WriteClientBinary(c.conn, data)
}

// Close implements transport.Conn. A close frame is sent best-effort first.
func (c *Conn) Close() error {
	if c.server {
		_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, nil)
	} else {
		_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, nil)
	}
	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
