package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewWithoutURLIsNop(t *testing.T) {
	p, err := New("", "console.audit", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.(Nop); !ok {
		t.Fatalf("expected Nop publisher, got %T", p)
	}
	if err := p.Publish(context.Background(), Event{Action: "create"}); err != nil {
		t.Fatalf("Nop publish returned error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Nop close returned error: %v", err)
	}
}

func TestEventEncoding(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	e := Event{Actor: "admin@example.com", Action: "delete", Resource: "users", ID: "u-1", At: at}

	if got := e.RoutingKey(); got != "users.delete" {
		t.Errorf("expected routing key users.delete, got %q", got)
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"actor":"admin@example.com","action":"delete","resource":"users","id":"u-1","at":"2024-03-01T09:30:00Z"}`
	if string(data) != want {
		t.Errorf("unexpected encoding:\n got %s\nwant %s", data, want)
	}
}
