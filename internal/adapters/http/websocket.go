package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// wsMessage is sent from client to manage feeds and the live map viewport.
type wsMessage struct {
	Action  string  `json:"action"`  // "subscribe" | "unsubscribe" | "viewport"
	Channel string  `json:"channel"` // "all" | "uploads" | "bundles" | "complaints" | "echoes"
	Kind    string  `json:"kind"`    // viewport marker kind (default: complaints)
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// wsEvent wraps a relayed NATS message.
type wsEvent struct {
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

// wsMarkers is pushed whenever the viewport rect changes or a relevant record changes.
type wsMarkers struct {
	Type string `json:"type"`
	*usecases.MarkerProjection
}

var channelSubjects = map[string]string{
	"all":        "echoadmin.>",
	"uploads":    "echoadmin.upload.>",
	"bundles":    "echoadmin.bundle.>",
	"complaints": "echoadmin.complaint.>",
	"echoes":     "echoadmin.echo.>",
}

// WebSocketHandler returns a handler that relays admin events from NATS and,
// on request, keeps a projected marker layer in sync with the client's map size.
//
// Clients send {"action":"subscribe","channel":"uploads"} to narrow the feed and
// {"action":"viewport","kind":"echoes","width":800,"height":600} on every resize.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		session := &mapSession{deps: deps, ctx: ctx, write: writeJSON}
		defer session.close()

		subs := make(map[string]*nats.Subscription)
		subscribe := func(subject string) error {
			if deps.NATS == nil {
				return errRelayDisabled
			}
			s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(wsEvent{Type: "event", Subject: msg.Subject, Data: json.RawMessage(msg.Data)})
				session.onEvent(msg.Subject)
			})
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		// Everything by default
		if deps.NATS != nil {
			if err := subscribe(channelSubjects["all"]); err != nil {
				slog.Warn("ws default subscribe", "error", err)
			}
		}

		// Keep-alive ping
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "viewport":
				if err := session.resize(m.Kind, domain.Size{Width: m.Width, Height: m.Height}); err != nil {
					_ = writeJSON(map[string]string{"error": err.Error()})
				}

			case "subscribe", "unsubscribe":
				channel := m.Channel
				if channel == "" {
					channel = "all"
				}
				subject, ok := channelSubjects[channel]
				if !ok {
					_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
					continue
				}
				if m.Action == "subscribe" {
					if _, exists := subs[subject]; exists {
						_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
						continue
					}
					if err := subscribe(subject); err != nil {
						_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
						continue
					}
					_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})
					continue
				}
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}

type wsError string

func (e wsError) Error() string { return string(e) }

const (
	errRelayDisabled   = wsError("event relay is not configured")
	errMarkersDisabled = wsError("map markers are not configured")
)

// mapSession owns the live viewport of one connection.
type mapSession struct {
	deps  *Dependencies
	ctx   context.Context
	write func(v interface{}) error

	mu       sync.Mutex
	viewport *geo.Viewport
	kind     string
}

func (s *mapSession) resize(kind string, container domain.Size) error {
	if s.deps.Markers == nil {
		return errMarkersDisabled
	}
	if kind == "" {
		kind = usecases.KindComplaints
	}
	if kind != usecases.KindComplaints && kind != usecases.KindEchoes {
		return wsError("unknown marker kind: " + kind)
	}

	s.mu.Lock()
	s.kind = kind
	v := s.viewport
	if v == nil {
		v = geo.NewViewport()
		s.viewport = v
		v.Subscribe(func(rect domain.ContainerRect) { s.push(rect) })
		s.deps.Markers.Image().Bind(s.ctx, v)
	}
	s.mu.Unlock()

	// Every resize notifies, so a kind switch at the same size still refreshes.
	v.Resize(container)
	return nil
}

func (s *mapSession) currentKind() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

func (s *mapSession) push(rect domain.ContainerRect) {
	proj, err := s.deps.Markers.ProjectRect(s.ctx, s.currentKind(), rect)
	if err != nil {
		_ = s.write(map[string]string{"error": err.Error()})
		return
	}
	_ = s.write(wsMarkers{Type: "markers", MarkerProjection: proj})
}

// onEvent re-projects when a record behind the current marker layer changed.
func (s *mapSession) onEvent(subject string) {
	s.mu.Lock()
	v, kind := s.viewport, s.kind
	s.mu.Unlock()
	if v == nil {
		return
	}
	relevant := (kind == usecases.KindComplaints && strings.HasPrefix(subject, "echoadmin.complaint.")) ||
		(kind == usecases.KindEchoes && strings.HasPrefix(subject, "echoadmin.echo."))
	if !relevant {
		return
	}
	if rect, ok := v.Rect(); ok {
		s.push(rect)
	}
}

func (s *mapSession) close() {
	s.mu.Lock()
	v := s.viewport
	s.mu.Unlock()
	if v != nil {
		v.Close()
	}
}
