package protocol

import "time"

// Connection policy constants. These mirror the reference chat room contract
// and are not runtime-configurable in the shipped binaries.
const (
	// DefaultPort is the port the chat server listens on.
	DefaultPort = 6000

	// MaxFrameSize bounds one serialized frame on the wire. Frames larger
	// than this are rejected by the transport, not the codec consumers.
	MaxFrameSize = 4112

	// MaxUsernameSize bounds the raw username frame sent right after connect.
	MaxUsernameSize = 512

	// MaxConnections is the number of simultaneously registered users a
	// server accepts; further connections are closed without a reply.
	MaxConnections = 20

	// Backlog is the reference system's queued-connection backlog. The Go
	// runtime does not expose the listen backlog, so this documents the wire
	// contract only.
	Backlog = 10

	// JoinWindow is how long a freshly started server waits to gather
	// MinParticipants registrations before giving up on the room.
	JoinWindow = 3 * time.Minute

	// MinParticipants is the smallest number of registered users that keeps
	// a room alive past the join window.
	MinParticipants = 2
)

// HostAddressSentinel is the address value meaning "no remote server, act as
// host". Supplied by the UI layer when a user opens a room of their own.
const HostAddressSentinel = "None"

// TimestampNow renders the wall clock the way message timestamps are shown.
func TimestampNow() string {
	return time.Now().Format("15:04:05")
}
