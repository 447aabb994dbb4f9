package client

// UserStatus is the client's locally cached belief about its own role in
// the room. It is a value type: every status update delivers a fresh
// snapshot, never a shared mutable object, so the receive loop and its
// consumers cannot race on the flags.
type UserStatus struct {
	Username    string
	IsHost      bool
	IsAdmin     bool
	IsMuted     bool
	IsConnected bool
}
