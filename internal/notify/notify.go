package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"parkingconsole/internal/session"
)

// Kind is the visual style of a message
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a single toast
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Notifier receives user-facing outcome messages
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Discard drops every message
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}

// Flash collects the messages of one request so they can be shown after a redirect
type Flash struct {
	mu       sync.Mutex
	messages []Message
}

func (f *Flash) Success(msg string) { f.add(KindSuccess, msg) }
func (f *Flash) Error(msg string)   { f.add(KindError, msg) }

func (f *Flash) add(kind Kind, msg string) {
	if msg == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, Message{Kind: kind, Text: msg})
}

// Messages returns a copy of the collected messages
func (f *Flash) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// LastError returns the most recent error text, or ""
func (f *Flash) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].Kind == KindError {
			return f.messages[i].Text
		}
	}
	return ""
}

// ValueStore is where flashes wait between a redirect and the next render
type ValueStore interface {
	SetValue(ctx context.Context, sid, key, value string) error
	TakeValue(ctx context.Context, sid, key string) (string, error)
}

// Save persists the collected messages, appending to any not yet shown
func (f *Flash) Save(ctx context.Context, store ValueStore, sid string) error {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return nil
	}

	pending, err := Take(ctx, store, sid)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(pending, msgs...))
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}
	if err := store.SetValue(ctx, sid, session.KeyFlash, string(data)); err != nil {
		return fmt.Errorf("failed to save flash: %w", err)
	}
	return nil
}

// Take returns and consumes the pending messages of sid
func Take(ctx context.Context, store ValueStore, sid string) ([]Message, error) {
	raw, err := store.TakeValue(ctx, sid, session.KeyFlash)
	if err != nil {
		return nil, fmt.Errorf("failed to load flash: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		// A corrupt flash is not worth failing a page for
		log.Printf("Discarding unreadable flash for session: %v", err)
		return nil, nil
	}
	return msgs, nil
}
