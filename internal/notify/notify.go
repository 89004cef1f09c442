// Package notify delivers out-of-band messages such as two-factor and
// password-reset codes.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Message is a single outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends messages to users.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of delivering them.
// It stands in for a mail or SMS provider in development.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Send implements Notifier.
func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Infow("Notification dispatched",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Outbox records messages in memory. Tests read codes back from it.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Send implements Notifier. It fails with the error set by FailWith, if any.
func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

// FailWith makes subsequent sends return err. Pass nil to recover.
func (o *Outbox) FailWith(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}

// Messages returns a copy of every recorded message.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.sent))
	copy(out, o.sent)
	return out
}

// Last returns the most recent message sent to addr.
func (o *Outbox) Last(addr string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == addr {
			return o.sent[i], true
		}
	}
	return Message{}, false
}
