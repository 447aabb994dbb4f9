package server

import "errors"

var (
	// ErrBind wraps failures to claim the listening socket, including a host
	// address that is not local to this machine.
	ErrBind = errors.New("could not bind chat server socket")

	// ErrJoinTimeout reports that too few participants joined the room
	// within the join window.
	ErrJoinTimeout = errors.New("not enough participants joined in time")

	// ErrCapacity reports a registration attempt beyond the connection cap.
	ErrCapacity = errors.New("server is at maximum connections")

	// ErrDuplicateUsername reports a registration reusing a live username.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrUnknownUser reports a moderation request naming nobody in the room.
	ErrUnknownUser = errors.New("no such user in this room")

	// ErrUnauthorized reports a moderation request the issuer may not make.
	// It is surfaced to the issuer as a rejection notice, never as a crash.
	ErrUnauthorized = errors.New("insufficient authority")
)
