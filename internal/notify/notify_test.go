package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifier_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core).Sugar())

	err := n.Send(context.Background(), Message{To: "alex@example.com", Subject: "Code", Body: "123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("Notification dispatched").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["to"]; got != "alex@example.com" {
		t.Errorf("expected recipient field, got %v", got)
	}
}

func TestOutbox(t *testing.T) {
	ctx := context.Background()
	o := NewOutbox()

	_ = o.Send(ctx, Message{To: "a@example.com", Body: "first"})
	_ = o.Send(ctx, Message{To: "b@example.com", Body: "other"})
	_ = o.Send(ctx, Message{To: "a@example.com", Body: "second"})

	if len(o.Messages()) != 3 {
		t.Errorf("expected 3 messages, got %d", len(o.Messages()))
	}
	last, ok := o.Last("a@example.com")
	if !ok || last.Body != "second" {
		t.Errorf("expected latest message for a@example.com, got %+v", last)
	}
	if _, ok := o.Last("nobody@example.com"); ok {
		t.Error("expected no message for unknown recipient")
	}
}

func TestOutbox_FailWith(t *testing.T) {
	o := NewOutbox()
	boom := errors.New("smtp down")
	o.FailWith(boom)

	if err := o.Send(context.Background(), Message{To: "a@example.com"}); !errors.Is(err, boom) {
		t.Errorf("expected configured error, got %v", err)
	}
	if len(o.Messages()) != 0 {
		t.Error("failed sends must not be recorded")
	}
}
