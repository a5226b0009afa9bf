package notify

import (
	"context"
	"testing"

	"parkingconsole/internal/session"
)

func TestFlashCollectsMessages(t *testing.T) {
	var f Flash
	f.Success("User created successfully")
	f.Error("")
	f.Error("Email already in use")
	f.Error("Failed to fetch users")

	msgs := f.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages (empty ones dropped), got %d", len(msgs))
	}
	if msgs[0].Kind != KindSuccess || msgs[0].Text != "User created successfully" {
		t.Errorf("unexpected first message: %+v", msgs[0])
	}
	if got := f.LastError(); got != "Failed to fetch users" {
		t.Errorf("expected last error, got %q", got)
	}
}

func TestFlashSurvivesRedirect(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryStorage())

	var first Flash
	first.Success("Logged out successfully")
	if err := first.Save(ctx, store, "sid"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	var second Flash
	second.Error("Login failed")
	if err := second.Save(ctx, store, "sid"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	msgs, err := Take(ctx, store, "sid")
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected both flashes to be kept, got %+v", msgs)
	}
	if msgs[1].Kind != KindError || msgs[1].Text != "Login failed" {
		t.Errorf("unexpected second message: %+v", msgs[1])
	}

	msgs, _ = Take(ctx, store, "sid")
	if len(msgs) != 0 {
		t.Fatalf("expected flash to be consumed, got %+v", msgs)
	}
}

func TestTakeIgnoresCorruptFlash(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryStorage())
	if err := store.SetValue(ctx, "sid", session.KeyFlash, "{not json"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}

	msgs, err := Take(ctx, store, "sid")
	if err != nil || msgs != nil {
		t.Fatalf("expected corrupt flash to be dropped, got %v, %v", msgs, err)
	}
}
