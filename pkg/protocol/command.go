package protocol

import "strings"

// Moderation commands travel on the same channel as chat content, encoded as
// specially patterned content strings. Two forms exist:
//
//	issuer -> server: "<target>|<ACTION>"        e.g. "Bob|MUTE"
//	server -> target: "<INFO>|<ACTION>|<INFO>"   e.g. "<INFO>|MUTE|<INFO>"
//
// Both forms are parsed into the Action variant here so that no other package
// pattern-matches raw strings.

// infoMarker brackets a server-issued status command.
const infoMarker = "<INFO>"

// Action is a moderation instruction carried by a command frame.
type Action int

const (
	ActionAdmin Action = iota
	ActionMute
	ActionKick
)

// Token returns the wire token for the action.
func (a Action) Token() string {
	switch a {
	case ActionAdmin:
		return "ADMIN"
	case ActionMute:
		return "MUTE"
	case ActionKick:
		return "KICK"
	default:
		return "UNKNOWN"
	}
}

// parseAction maps a wire token back to an Action.
func parseAction(token string) (Action, bool) {
	switch token {
	case "ADMIN":
		return ActionAdmin, true
	case "MUTE":
		return ActionMute, true
	case "KICK":
		return ActionKick, true
	default:
		return 0, false
	}
}

// StatusCommand renders the server->target form of the action.
func StatusCommand(a Action) string {
	return infoMarker + "|" + a.Token() + "|" + infoMarker
}

// ParseStatusCommand reports whether content is a server-issued status
// command and which action it carries.
func ParseStatusCommand(content string) (Action, bool) {
	parts := strings.Split(content, "|")
	if len(parts) != 3 || parts[0] != infoMarker || parts[2] != infoMarker {
		return 0, false
	}
	return parseAction(parts[1])
}

// ModerationRequest renders the issuer->server form naming a target user.
func ModerationRequest(target string, a Action) string {
	return target + "|" + a.Token()
}

// ParseModerationRequest reports whether content is an issuer request and, if
// so, the target username and action. Content with any other shape, including
// the three-part status command form, does not match.
func ParseModerationRequest(content string) (target string, a Action, ok bool) {
	parts := strings.Split(content, "|")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, false
	}
	a, ok = parseAction(parts[1])
	if !ok {
		return "", 0, false
	}
	return parts[0], a, true
}
