// Package protocol defines the wire format exchanged between chat clients
// and the chat server: the message frame codec, the moderation command
// encoding and the fixed protocol constants.
package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Alignment tells the rendering side which edge a message belongs to. It is
// cosmetic and finalized by each receiver relative to its local user; the
// value carried on the wire is advisory only.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// String returns the string representation of Alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "LEFT"
	case AlignRight:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// Status is the role a sender holds in the room at send time.
type Status int

const (
	StatusRegularUser Status = iota
	StatusHost
	StatusAdmin
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusRegularUser:
		return "USER"
	case StatusHost:
		return "HOST"
	case StatusAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Wire field numbers. Stable; never renumber.
const (
	fieldContent      protowire.Number = 1
	fieldSenderName   protowire.Number = 2
	fieldTimestamp    protowire.Number = 3
	fieldAlignment    protowire.Number = 4
	fieldSenderStatus protowire.Number = 5
)

// Message is one chat frame. Constructed by the sender at submit time,
// immutable once serialized, decoded fresh on the receiving end per frame.
type Message struct {
	Content      string
	SenderName   string
	Timestamp    string
	Alignment    Alignment
	SenderStatus Status
}

// Encode serializes the message in protobuf wire format. It fails if the
// result would not fit in one frame.
func (m *Message) Encode() ([]byte, error) {
	b := make([]byte, 0, len(m.Content)+len(m.SenderName)+len(m.Timestamp)+16)
	b = protowire.AppendTag(b, fieldContent, protowire.BytesType)
	b = protowire.AppendString(b, m.Content)
	b = protowire.AppendTag(b, fieldSenderName, protowire.BytesType)
	b = protowire.AppendString(b, m.SenderName)
	b = protowire.AppendTag(b, fieldTimestamp, protowire.BytesType)
	b = protowire.AppendString(b, m.Timestamp)
	b = protowire.AppendTag(b, fieldAlignment, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Alignment))
	b = protowire.AppendTag(b, fieldSenderStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.SenderStatus))

	if len(b) > MaxFrameSize {
		return nil, fmt.Errorf("message of %d bytes exceeds frame size %d", len(b), MaxFrameSize)
	}
	return b, nil
}

// Decode parses a protobuf wire-format frame into the message. Unknown
// fields are skipped so older peers stay readable.
func (m *Message) Decode(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("failed to decode message: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldContent && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("failed to decode content: %w", protowire.ParseError(n))
			}
			m.Content = v
			data = data[n:]
		case num == fieldSenderName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("failed to decode sender name: %w", protowire.ParseError(n))
			}
			m.SenderName = v
			data = data[n:]
		case num == fieldTimestamp && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("failed to decode timestamp: %w", protowire.ParseError(n))
			}
			m.Timestamp = v
			data = data[n:]
		case num == fieldAlignment && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("failed to decode alignment: %w", protowire.ParseError(n))
			}
			m.Alignment = alignmentFromWire(v)
			data = data[n:]
		case num == fieldSenderStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("failed to decode sender status: %w", protowire.ParseError(n))
			}
			m.SenderStatus = statusFromWire(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("failed to skip field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// alignmentFromWire maps a wire varint to Alignment. Unknown values degrade
// to AlignLeft rather than erroring, the safest rendering choice.
func alignmentFromWire(v uint64) Alignment {
	if v == uint64(AlignRight) {
		return AlignRight
	}
	return AlignLeft
}

// statusFromWire maps a wire varint to Status. Unknown values degrade to
// StatusRegularUser, the least privileged role.
func statusFromWire(v uint64) Status {
	switch v {
	case uint64(StatusHost):
		return StatusHost
	case uint64(StatusAdmin):
		return StatusAdmin
	default:
		return StatusRegularUser
	}
}
