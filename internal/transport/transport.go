// Package transport abstracts the frame-oriented connections the chat core
// runs over, so the server and client stay agnostic of TCP vs WebSocket.
package transport

import (
	"errors"
	"io"
	"net"
)

// ErrFrameTooLarge is returned when a write exceeds the protocol frame size.
// Oversized content is the transport's problem, not the codec's.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// Conn is a bidirectional frame-oriented connection.
//
// One ReadFrame corresponds to one transport read. A zero-length frame is the
// disconnect signal in either direction: ReadFrame surfaces it as io.EOF, and
// WriteFrame with empty data sends it (half-close on TCP, an empty binary
// message on WebSocket).
type Conn interface {
	// ReadFrame reads the next frame. Returns io.EOF once the peer has
	// signalled disconnect.
	ReadFrame() ([]byte, error)

	// WriteFrame sends one frame. Empty data sends the disconnect signal.
	WriteFrame(data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

// BufferedConn is a net.Conn whose reads go through a reader that may hold
// bytes consumed early, such as during protocol detection or a WebSocket
// handshake.
type BufferedConn struct {
	net.Conn
	Reader io.Reader
}

// Read reads from the buffered reader instead of the raw connection.
func (b BufferedConn) Read(p []byte) (int, error) {
	return b.Reader.Read(p)
}
