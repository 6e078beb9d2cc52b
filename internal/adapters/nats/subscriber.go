package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Subscriber consumes admin events from JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeUploadsFinished delivers every terminal upload snapshot to handler.
// Messages are redelivered up to three times when handler fails.
func (s *Subscriber) SubscribeUploadsFinished(ctx context.Context, handler func(ctx context.Context, snap domain.UploadSnapshot) error) error {
	sub, err := s.js.Subscribe(SubjectUploadFinished, func(msg *nats.Msg) {
		var snap domain.UploadSnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, snap); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("upload-auditor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
