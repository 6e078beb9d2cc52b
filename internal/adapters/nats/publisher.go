package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Subjects published by the admin backend. The WebSocket relay forwards everything under SubjectAll.
const (
	SubjectAll               = "echoadmin.>"
	SubjectUploadPhase       = "echoadmin.upload.phase"
	SubjectUploadFinished    = "echoadmin.upload.finished"
	SubjectBundleUploaded    = "echoadmin.bundle.uploaded"
	SubjectComplaintResolved = "echoadmin.complaint.resolved"
	SubjectEchoDeleted       = "echoadmin.echo.deleted"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "ECHOADMIN_UPLOADS",
			Subjects:  []string{"echoadmin.upload.>", "echoadmin.bundle.>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "ECHOADMIN_MODERATION",
			Subjects:  []string{"echoadmin.complaint.>", "echoadmin.echo.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishUploadPhase sends every transition; terminal phases also go to SubjectUploadFinished.
func (p *Publisher) PublishUploadPhase(ctx context.Context, snap domain.UploadSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(SubjectUploadPhase, data, nats.Context(ctx)); err != nil {
		return err
	}
	if snap.Phase.Terminal() {
		_, err = p.js.Publish(SubjectUploadFinished, data, nats.Context(ctx))
	}
	return err
}

func (p *Publisher) PublishBundleUploaded(ctx context.Context, snap domain.UploadSnapshot) error {
	data, err := json.Marshal(BundleUploadedEvent{
		SessionID: snap.ID,
		UploadID:  snap.UploadID,
		BundleID:  snap.Result.ID(),
		Name:      snap.Metadata.Name,
		Version:   snap.Metadata.Version,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectBundleUploaded, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishComplaintResolved(ctx context.Context, c *domain.Complaint) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectComplaintResolved, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishEchoDeleted(ctx context.Context, id string) error {
	data, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectEchoDeleted, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// BundleUploadedEvent is the payload of SubjectBundleUploaded.
type BundleUploadedEvent struct {
	SessionID string `json:"sessionId"`
	UploadID  string `json:"uploadId"`
	BundleID  string `json:"bundleId,omitempty"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}
