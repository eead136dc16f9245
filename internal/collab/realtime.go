package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
)

// Event kinds delivered by the realtime channel.
const (
	EventTagUpdated     = "tag_updated"
	EventTagDeleted     = "tag_deleted"
	EventDatabaseChange = "postgres_changes"
)

const heartbeatInterval = 30 * time.Second

// Event is a change announced by another installation or by the database.
type Event struct {
	Kind           string            `json:"-"`
	RoomIdentifier string            `json:"room_identifier"`
	TagName        string            `json:"tag_name,omitempty"`
	Tag            *models.CustomTag `json:"tag,omitempty"`
	User           User              `json:"user"`
}

// message is a frame of the channel protocol.
type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

type broadcast struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Realtime is a connection to the project channel.
type Realtime struct {
	endpoint  string
	topic     string
	projectID string
	logger    *zap.Logger
	heartbeat time.Duration

	writeMu sync.Mutex
	conn    *websocket.Conn
	ref     atomic.Uint64
}

// NewRealtime prepares a channel connection. Call Connect before use.
func NewRealtime(cfg config.CollabConfig, projectID string, logger *zap.Logger) (*Realtime, error) {
	u, err := url.Parse(cfg.RealtimeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime url: %w", err)
	}
	q := u.Query()
	if cfg.APIKey != "" {
		q.Set("apikey", cfg.APIKey)
	}
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()

	return &Realtime{
		endpoint:  u.String(),
		topic:     "realtime:project:" + projectID,
		projectID: projectID,
		logger:    logging.OrNop(logger),
		heartbeat: heartbeatInterval,
	}, nil
}

func (r *Realtime) nextRef() string {
	return strconv.FormatUint(r.ref.Add(1), 10)
}

func (r *Realtime) send(topic, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.conn == nil {
		return errors.New("realtime channel not connected")
	}
	return r.conn.WriteJSON(message{Topic: topic, Event: event, Payload: raw, Ref: r.nextRef()})
}

// Connect dials the channel and joins the project topic, subscribing to
// broadcasts and to row changes of the project's tags.
func (r *Realtime) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to dial realtime channel: %w", err)
	}

	r.writeMu.Lock()
	r.conn = conn
	r.writeMu.Unlock()

	join := map[string]any{
		"config": map[string]any{
			"broadcast": map[string]any{"self": false},
			"presence":  map[string]any{"key": ""},
			"postgres_changes": []map[string]string{{
				"event":  "*",
				"schema": "public",
				"table":  "collaborative_tags",
				"filter": "project_id=eq." + r.projectID,
			}},
		},
	}
	if err := r.send(r.topic, "phx_join", join); err != nil {
		_ = r.Close()
		return fmt.Errorf("failed to join channel: %w", err)
	}
	return nil
}

// Broadcast announces a tag change to the other members of the project.
func (r *Realtime) Broadcast(kind string, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.send(r.topic, "broadcast", broadcast{Type: "broadcast", Event: kind, Payload: raw})
}

// Listen delivers events to handle until ctx is cancelled or the connection
// fails. It returns nil on cancellation.
func (r *Realtime) Listen(ctx context.Context, handle func(Event)) error {
	r.writeMu.Lock()
	conn := r.conn
	r.writeMu.Unlock()
	if conn == nil {
		return errors.New("realtime channel not connected")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(r.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = r.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := r.send("phoenix", "heartbeat", map[string]any{}); err != nil {
					r.logger.Warn("realtime heartbeat failed", zap.Error(err))
				}
			}
		}
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("realtime channel closed: %w", err)
		}
		if ev, ok := r.decode(msg); ok {
			handle(ev)
		}
	}
}

func (r *Realtime) decode(msg message) (Event, bool) {
	switch msg.Event {
	case "broadcast":
		var b broadcast
		if err := json.Unmarshal(msg.Payload, &b); err != nil {
			r.logger.Debug("ignoring malformed broadcast", zap.Error(err))
			return Event{}, false
		}
		if b.Event != EventTagUpdated && b.Event != EventTagDeleted {
			return Event{}, false
		}
		var ev Event
		if err := json.Unmarshal(b.Payload, &ev); err != nil {
			r.logger.Debug("ignoring malformed broadcast payload", zap.Error(err))
			return Event{}, false
		}
		ev.Kind = b.Event
		return ev, true
	case EventDatabaseChange:
		return Event{Kind: EventDatabaseChange}, true
	case "phx_reply", "phx_error", "phx_close":
		r.logger.Debug("realtime control message", zap.String("event", msg.Event), zap.String("ref", msg.Ref))
	}
	return Event{}, false
}

// Close closes the connection. It is safe to call more than once.
func (r *Realtime) Close() error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}
