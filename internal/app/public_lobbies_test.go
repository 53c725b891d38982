package app

import (
	"testing"
	"time"

	"github.com/dkeye/voicelink/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPublicLobbyIDs(t *testing.T) {
	t.Parallel()
	x := NewPublicLobbyIndex()
	now := time.UnixMilli(0)
	sub := &domain.PublicLobbySubmission{Title: strPtr("a"), IsPublic: true}

	first := x.Publish("AAA", sub, now)
	second := x.Publish("BBB", sub, now)
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("ids=%d,%d, want 0,1", first.ID, second.ID)
	}

	again := x.Publish("AAA", &domain.PublicLobbySubmission{Title: strPtr("renamed"), IsPublic: true}, now)
	if again.ID != first.ID {
		t.Errorf("update changed id %d -> %d", first.ID, again.ID)
	}
	if code, entry, ok := x.Lookup(first.ID); !ok || code != "AAA" || entry.Title != "renamed" {
		t.Errorf("Lookup(%d)=%q,%+v,%t", first.ID, code, entry, ok)
	}

	id, ok := x.Unpublish("AAA")
	if !ok || id != first.ID {
		t.Fatalf("Unpublish=%d,%t, want %d,true", id, ok, first.ID)
	}
	if _, _, ok := x.Lookup(first.ID); ok {
		t.Errorf("unpublished id still resolves")
	}
	if _, ok := x.Unpublish("AAA"); ok {
		t.Errorf("second Unpublish reported success")
	}

	third := x.Publish("AAA", sub, now)
	if third.ID != 2 {
		t.Errorf("republished id=%d, want 2", third.ID)
	}

	list := x.List()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("List=%+v, want ids 1,2", list)
	}
}

func TestLobbyDirectoryCounts(t *testing.T) {
	t.Parallel()
	d := NewLobbyDirectory()

	l, created := d.Ensure("ROOM", false, 7)
	if !created || l.ConnectedCount != 1 || l.HostID != domain.NoHost {
		t.Fatalf("Ensure=%+v,%t", l, created)
	}
	if _, created := d.Ensure("ROOM", true, 8); created {
		t.Fatalf("Ensure recreated an existing lobby")
	}
	if !d.OnJoin("ROOM", true, 8) || l.HostID != 8 || l.ConnectedCount != 2 {
		t.Errorf("after host join: %+v", l)
	}
	d.OnLeave("ROOM")
	d.OnLeave("ROOM")
	if got := d.OnLeave("ROOM"); got != 0 {
		t.Errorf("count=%d, want floor at 0", got)
	}
	if _, ok := d.Delete("ROOM"); !ok || d.Len() != 0 {
		t.Errorf("Delete left %d lobbies", d.Len())
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		backpressure, spoof string
		want                SimplePolicy
		wantErr             bool
	}{
		{"", "", SimplePolicy{KickMember, AcceptIdentity}, false},
		{"drop", "reject", SimplePolicy{DropFrame, RejectIdentity}, false},
		{"kick", "disconnect", SimplePolicy{KickMember, DisconnectClient}, false},
		{"block", "", SimplePolicy{}, true},
		{"kick", "strict", SimplePolicy{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.backpressure, tt.spoof)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q,%q) err=%v, wantErr %t", tt.backpressure, tt.spoof, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePolicy(%q,%q)=%+v, want %+v", tt.backpressure, tt.spoof, got, tt.want)
		}
	}
}
