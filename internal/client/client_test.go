package client_test

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/client"
	tcptransport "github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/transport/tcp"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

// fakeServer accepts one connection, consumes the username frame and hands
// the connection to the test.
type fakeServer struct {
	ln       net.Listener
	username chan string
	conns    chan *tcptransport.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	fs := &fakeServer{
		ln:       ln,
		username: make(chan string, 1),
		conns:    make(chan *tcptransport.Conn, 1),
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		tc := tcptransport.NewConn(conn)
		frame, err := tc.ReadFrame()
		if err != nil {
			conn.Close()
			return
		}
		fs.username <- string(frame)
		fs.conns <- tc
	}()
	return fs
}

func (fs *fakeServer) addr() string { return fs.ln.Addr().String() }

func (fs *fakeServer) conn(t *testing.T) *tcptransport.Conn {
	t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected to the fake server")
		return nil
	}
}

func (fs *fakeServer) sendMessage(t *testing.T, tc *tcptransport.Conn, msg protocol.Message) {
	t.Helper()
	data, err := msg.Encode()
	if err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	if err := tc.WriteFrame(data); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
}

func awaitStatus(t *testing.T, c *client.Client, match func(client.UserStatus) bool, msg string) client.UserStatus {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-c.StatusUpdates():
			if match(st) {
				return st
			}
		case <-deadline:
			t.Fatal(msg)
			return client.UserStatus{}
		}
	}
}

func TestClient_ConnectSendsUsernameFirst(t *testing.T) {
	fs := newFakeServer(t)

	c := client.New(fs.addr(), "alice", zerolog.Nop())
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()

	select {
	case got := <-fs.username:
		if got != "alice" {
			t.Errorf("first frame = %q, want alice", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no username frame received")
	}

	st := awaitStatus(t, c, func(st client.UserStatus) bool { return st.IsConnected }, "no connected status")
	if st.IsHost {
		t.Error("joining client claims host status")
	}
}

func TestClient_HostingSeedsHostFlag(t *testing.T) {
	fs := newFakeServer(t)

	c := client.New(fs.addr(), "host", zerolog.Nop())
	c.SetHosting()
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()

	st := awaitStatus(t, c, func(st client.UserStatus) bool { return st.IsConnected }, "no connected status")
	if !st.IsHost {
		t.Error("hosting client does not claim host status")
	}
}

func TestClient_ConnectErrors(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr error
	}{
		{"unparseable address", "not an address", client.ErrAddressFormat},
		{"missing port", "127.0.0.1", client.ErrAddressFormat},
		{"unreachable endpoint", "127.0.0.1:1", client.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := client.New(tt.address, "alice", zerolog.Nop())
			if err := c.Connect(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Connect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_SendMessageValidation(t *testing.T) {
	c := client.New("127.0.0.1:6000", "alice", zerolog.Nop())

	if err := c.SendMessage(""); !errors.Is(err, client.ErrEmptyMessage) {
		t.Errorf("SendMessage(empty) error = %v, want ErrEmptyMessage", err)
	}
	if err := c.SendMessage("hi"); !errors.Is(err, client.ErrNotConnected) {
		t.Errorf("SendMessage() without connection error = %v, want ErrNotConnected", err)
	}
}

func TestClient_ReceiveLoopDemultiplexesFrames(t *testing.T) {
	fs := newFakeServer(t)

	c := client.New(fs.addr(), "alice", zerolog.Nop())
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()
	sc := fs.conn(t)

	// A foreign chat frame surfaces as a message aligned left.
	fs.sendMessage(t, sc, protocol.Message{Content: "hello", SenderName: "bob", Timestamp: "10:00:00"})
	select {
	case msg := <-c.Messages():
		if msg.SenderName != "bob" || msg.Content != "hello" {
			t.Errorf("message = (%q, %q), want (bob, hello)", msg.SenderName, msg.Content)
		}
		if msg.Alignment != protocol.AlignLeft {
			t.Errorf("foreign message alignment = %v, want AlignLeft", msg.Alignment)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chat frame was not surfaced")
	}

	// The client's own name comes back aligned right.
	fs.sendMessage(t, sc, protocol.Message{Content: "echo", SenderName: "alice", Timestamp: "10:00:01"})
	select {
	case msg := <-c.Messages():
		if msg.Alignment != protocol.AlignRight {
			t.Errorf("own message alignment = %v, want AlignRight", msg.Alignment)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second chat frame was not surfaced")
	}

	// A status command toggles local state and is never surfaced as chat.
	fs.sendMessage(t, sc, protocol.Message{
		Content:    protocol.StatusCommand(protocol.ActionMute),
		SenderName: "Server",
	})
	st := awaitStatus(t, c, func(st client.UserStatus) bool { return st.IsMuted }, "mute was not applied")
	if !st.IsConnected {
		t.Error("mute disconnected the client")
	}
	select {
	case msg := <-c.Messages():
		t.Errorf("status command surfaced as chat: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}

	// KICK flips to disconnected and closes the socket.
	fs.sendMessage(t, sc, protocol.Message{
		Content:    protocol.StatusCommand(protocol.ActionKick),
		SenderName: "Server",
	})
	awaitStatus(t, c, func(st client.UserStatus) bool { return !st.IsConnected }, "kick was not applied")

	deadline := time.Now().Add(2 * time.Second)
	for c.IsConnected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.IsConnected() {
		t.Error("kicked client kept its connection")
	}
}

func TestClient_DisconnectSignalsServer(t *testing.T) {
	fs := newFakeServer(t)

	c := client.New(fs.addr(), "alice", zerolog.Nop())
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	sc := fs.conn(t)

	c.Disconnect()

	if frame, err := sc.ReadFrame(); err == nil {
		t.Errorf("server read %q after Disconnect, want EOF or closed", frame)
	}
	if c.IsConnected() {
		t.Error("client still connected after Disconnect")
	}
	if err := c.SendMessage("hi"); !errors.Is(err, client.ErrNotConnected) {
		t.Errorf("SendMessage() after Disconnect error = %v, want ErrNotConnected", err)
	}
}

func TestClient_ServerClosureEndsLoopSilently(t *testing.T) {
	fs := newFakeServer(t)

	c := client.New(fs.addr(), "alice", zerolog.Nop())
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()
	sc := fs.conn(t)

	awaitStatus(t, c, func(st client.UserStatus) bool { return st.IsConnected }, "no connected status")

	sc.Close()

	st := awaitStatus(t, c, func(st client.UserStatus) bool { return !st.IsConnected }, "closure was not observed")
	if st.IsConnected {
		t.Error("client still believes it is connected")
	}
}
