package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/slscljs/internal/logfields"
)

// publisher is the subset of *nats.Conn used for delivery.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes events on a core NATS subject.
type NATSNotifier struct {
	conn    publisher
	subject string
}

// NewNATSNotifier connects to url. The connection is attempted once; hooks
// should not wait on an unreachable bus.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("slscljs"),
		nats.Timeout(2*time.Second),
		nats.NoReconnect(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", "url", url, "subject", subjectOrDefault(subject))
	return newNATSNotifier(conn, subject), nil
}

func newNATSNotifier(conn publisher, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subjectOrDefault(subject)}
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return DefaultSubject
	}
	return subject
}

// Publish sends ev and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Publish(ctx context.Context, ev BuildEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.Debug("Published build event", logfields.InvocationID(ev.InvocationID), "subject", n.subject)
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
