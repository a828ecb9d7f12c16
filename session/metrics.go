package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"mashbot/protocol"
)

const instrumentationName = "mashbot/session"

type metrics struct {
	received     metric.Int64Counter
	decodeErrors metric.Int64Counter
	keysSent     metric.Int64Counter
	reconnects   metric.Int64Counter
	connErrors   metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	out.received, err = m.Int64Counter(
		"session.messages.received",
		metric.WithDescription("Decoded server messages by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating received counter: %w", err)
	}

	out.decodeErrors, err = m.Int64Counter(
		"session.decode.errors",
		metric.WithDescription("Inbound frames that failed to decode"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decode error counter: %w", err)
	}

	out.keysSent, err = m.Int64Counter(
		"session.keys.sent",
		metric.WithDescription("Key state changes accepted by at least one connection"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating keys counter: %w", err)
	}

	out.reconnects, err = m.Int64Counter(
		"session.reconnects",
		metric.WithDescription("Primary connection retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconnect counter: %w", err)
	}

	out.connErrors, err = m.Int64Counter(
		"session.connection.errors",
		metric.WithDescription("Transport faults by connection role"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating connection error counter: %w", err)
	}

	return &out, nil
}

func (m *metrics) messageReceived(ctx context.Context, kind protocol.ServerKind) {
	m.received.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
}

func (m *metrics) connError(ctx context.Context, role Role) {
	m.connErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role.String())))
}
