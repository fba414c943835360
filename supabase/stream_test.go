package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_DispatchesTableChanges(t *testing.T) {
	upgrader := websocket.Upgrader{}
	joined := make(chan frame, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.URL.Query().Get("apikey"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var join frame
		require.NoError(t, conn.ReadJSON(&join))
		joined <- join

		change := frame{
			Topic:   "realtime:public:properties",
			Event:   "UPDATE",
			Payload: json.RawMessage(`{"record": {"id": "prop-1"}}`),
		}
		require.NoError(t, conn.WriteJSON(change))

		// unrelated table: must not reach the properties handler
		other := frame{Topic: "realtime:public:reservations", Event: "INSERT", Payload: json.RawMessage(`{}`)}
		require.NoError(t, conn.WriteJSON(other))

		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := Config{URL: srv.URL, AnonKey: "anon-key", HTTPTimeout: 5 * time.Second}
	s := NewStream(cfg, nil)

	changed := make(chan struct{}, 4)
	s.OnTableChange("properties", func() { changed <- struct{}{} })

	s.Start(context.Background())
	defer s.Close()

	select {
	case join := <-joined:
		assert.Equal(t, "realtime:public:properties", join.Topic)
		assert.Equal(t, "phx_join", join.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("no channel join observed")
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("table change never dispatched")
	}

	// the reservations INSERT must not have queued a second dispatch
	select {
	case <-changed:
		t.Fatal("handler fired for an unrelated table")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStream_CloseStopsRedialLoop(t *testing.T) {
	cfg := Config{URL: "http://127.0.0.1:1", AnonKey: "anon-key", HTTPTimeout: time.Second}
	s := NewStream(cfg, nil)

	s.Start(context.Background())
	require.NoError(t, s.Close())
}
