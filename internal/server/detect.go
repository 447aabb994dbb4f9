package server

import (
	"bufio"
	"bytes"
	"fmt"
	"net"

	"github.com/gobwas/ws"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport"
	tcptransport "github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport/tcp"
	wstransport "github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport/ws"
)

// httpVerbs are the request-line prefixes that mark a WebSocket upgrade
// attempt. Raw chat clients start with binary frame data instead.
var httpVerbs = [][]byte{
	[]byte("GET "),
	[]byte("POST"),
	[]byte("PUT "),
	[]byte("HEAD"),
	[]byte("OPTI"),
	[]byte("PATC"),
	[]byte("DELE"),
	[]byte("CONN"),
}

// acceptTransport peeks at the first bytes of a fresh connection and wraps
// it in the matching transport: an HTTP request line means a WebSocket
// client, anything else is a raw TCP chat client.
func acceptTransport(conn net.Conn) (transport.Conn, error) {
	reader := bufio.NewReader(conn)
	peek, err := reader.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to peek connection: %w", err)
	}

	if isHTTPRequest(peek) {
		bc := transport.BufferedConn{Conn: conn, Reader: reader}
		if _, err := ws.Upgrade(bc); err != nil {
			return nil, fmt.Errorf("websocket upgrade failed: %w", err)
		}
		return wstransport.NewServerConn(bc), nil
	}
	return tcptransport.NewConnWithReader(conn, reader), nil
}

func isHTTPRequest(peek []byte) bool {
	for _, verb := range httpVerbs {
		if bytes.HasPrefix(peek, verb) {
			return true
		}
	}
	return false
}
