// Package tcp provides the TCP transport for the chat protocol.
package tcp

import (
	"io"
	"net"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// Conn adapts net.Conn to transport.Conn. One socket read is one frame,
// matching the reference wire contract (no length prefix).
type Conn struct {
	conn   net.Conn
	reader io.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: conn}
}

// NewConnWithReader wraps a net.Conn whose initial bytes were already
// buffered during protocol detection.
func NewConnWithReader(conn net.Conn, reader io.Reader) *Conn {
	return &Conn{conn: conn, reader: reader}
}

// ReadFrame implements transport.Conn.
func (c *Conn) ReadFrame() ([]byte, error) {
	buf := make([]byte, protocol.MaxFrameSize)
	for {
		n, err := c.reader.Read(buf)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return buf[:n], nil
		}
	}
}

// WriteFrame implements transport.Conn. Empty data half-closes the write
// side so the peer reads EOF, the TCP form of the disconnect frame.
func (c *Conn) WriteFrame(data []byte) error {
	if len(data) == 0 {
		if cw, ok := c.conn.(interface{ CloseWrite() error }); ok {
			return cw.CloseWrite()
		}
		return nil
	}
	if len(data) > protocol.MaxFrameSize {
		return transport.ErrFrameTooLarge
	}
	_, err := c.conn.Write(data)
	return err
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
