package supabase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Stream subscribes to the hosted realtime endpoint and reports row
// changes per table. The client uses it to invalidate entity caches when
// another collaborator writes out-of-band.
type Stream struct {
	url    string
	logger *slog.Logger
	dialer *websocket.Dialer

	mu       sync.Mutex
	handlers map[string][]func()
	cancel   context.CancelFunc
	nextRef  int
}

// NewStream creates a realtime stream for the given project configuration.
func NewStream(cfg Config, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	wsURL := strings.Replace(cfg.URL, "http", "ws", 1) +
		"/realtime/v1/websocket?vsn=1.0.0&apikey=" + cfg.AnonKey
	return &Stream{
		url:      wsURL,
		logger:   logger,
		dialer:   websocket.DefaultDialer,
		handlers: make(map[string][]func()),
	}
}

// OnTableChange registers fn to run whenever a row in table changes.
// All registrations must happen before Start.
func (s *Stream) OnTableChange(table string, fn func()) {
	s.mu.Lock()
	s.handlers[table] = append(s.handlers[table], fn)
	s.mu.Unlock()
}

// frame is the phoenix-channel message envelope used by the realtime
// protocol.
type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// Start launches the connection loop. It redials with a fixed backoff
// until the context is cancelled or Close is called.
func (s *Stream) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		for {
			if err := s.run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("realtime stream disconnected", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
}

// Close stops the connection loop.
func (s *Stream) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (s *Stream) run(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.mu.Lock()
	tables := make([]string, 0, len(s.handlers))
	for table := range s.handlers {
		tables = append(tables, table)
	}
	s.mu.Unlock()

	for _, table := range tables {
		join := frame{
			Topic:   "realtime:public:" + table,
			Event:   "phx_join",
			Payload: json.RawMessage(`{}`),
			Ref:     s.ref(),
		}
		if err := conn.WriteJSON(join); err != nil {
			return err
		}
	}

	// The server drops connections that miss heartbeats.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-heartbeat.C:
				beat := frame{
					Topic:   "phoenix",
					Event:   "heartbeat",
					Payload: json.RawMessage(`{}`),
					Ref:     s.ref(),
				}
				if err := conn.WriteJSON(beat); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		var msg frame
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Event {
		case "INSERT", "UPDATE", "DELETE":
			s.dispatch(strings.TrimPrefix(msg.Topic, "realtime:public:"))
		}
	}
}

func (s *Stream) dispatch(table string) {
	s.mu.Lock()
	fns := append([]func(){}, s.handlers[table]...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Stream) ref() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRef++
	return strconv.Itoa(s.nextRef)
}
