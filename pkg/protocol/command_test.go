package protocol_test

import (
	"testing"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

func TestStatusCommand(t *testing.T) {
	tests := []struct {
		action protocol.Action
		want   string
	}{
		{protocol.ActionAdmin, "<INFO>|ADMIN|<INFO>"},
		{protocol.ActionMute, "<INFO>|MUTE|<INFO>"},
		{protocol.ActionKick, "<INFO>|KICK|<INFO>"},
	}

	for _, tt := range tests {
		t.Run(tt.action.Token(), func(t *testing.T) {
			got := protocol.StatusCommand(tt.action)
			if got != tt.want {
				t.Errorf("StatusCommand(%v) = %q, want %q", tt.action, got, tt.want)
			}

			action, ok := protocol.ParseStatusCommand(got)
			if !ok {
				t.Fatalf("ParseStatusCommand(%q) did not match", got)
			}
			if action != tt.action {
				t.Errorf("ParseStatusCommand(%q) = %v, want %v", got, action, tt.action)
			}
		})
	}
}

func TestParseStatusCommand_NonCommands(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain chat", "hello there"},
		{"chat with pipes", "a|b|c"},
		{"moderation request form", "Bob|MUTE"},
		{"missing trailing marker", "<INFO>|MUTE"},
		{"wrong markers", "<inf>|MUTE|<inf>"},
		{"unknown action", "<INFO>|BAN|<INFO>"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := protocol.ParseStatusCommand(tt.content); ok {
				t.Errorf("ParseStatusCommand(%q) matched, want no match", tt.content)
			}
		})
	}
}

func TestParseModerationRequest(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantTarget string
		wantAction protocol.Action
		wantOK     bool
	}{
		{"mute request", "Bob|MUTE", "Bob", protocol.ActionMute, true},
		{"admin request", "alice|ADMIN", "alice", protocol.ActionAdmin, true},
		{"kick request", "Bob|KICK", "Bob", protocol.ActionKick, true},
		{"plain chat", "hello", "", 0, false},
		{"empty target", "|MUTE", "", 0, false},
		{"unknown action", "Bob|BAN", "", 0, false},
		{"status command form", "<INFO>|MUTE|<INFO>", "", 0, false},
		{"lowercase action", "Bob|mute", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, action, ok := protocol.ParseModerationRequest(tt.content)
			if ok != tt.wantOK {
				t.Fatalf("ParseModerationRequest(%q) ok = %v, want %v", tt.content, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if target != tt.wantTarget || action != tt.wantAction {
				t.Errorf("ParseModerationRequest(%q) = (%q, %v), want (%q, %v)",
					tt.content, target, action, tt.wantTarget, tt.wantAction)
			}
		})
	}
}

func TestModerationRequest_RoundTrip(t *testing.T) {
	content := protocol.ModerationRequest("Bob", protocol.ActionKick)
	target, action, ok := protocol.ParseModerationRequest(content)
	if !ok {
		t.Fatalf("ParseModerationRequest(%q) did not match", content)
	}
	if target != "Bob" || action != protocol.ActionKick {
		t.Errorf("round trip = (%q, %v), want (Bob, KICK)", target, action)
	}
}
