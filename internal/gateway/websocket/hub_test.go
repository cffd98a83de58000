package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sms_campaign_server/internal/events"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	go hub.Start()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeObserver(hub, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gorilla.Conn) events.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame events.Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestHubBroadcastsToEveryObserver(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), events.ContactUpdated, map[string]any{"id": 1, "optedOut": true})

	for _, conn := range []*gorilla.Conn{a, b} {
		frame := readFrame(t, conn)
		assert.Equal(t, events.ContactUpdated, frame.Event)
		assert.JSONEq(t, `{"id":1,"optedOut":true}`, string(frame.Data))
	}
}

func TestHubUnregistersClosedObserver(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDropsSlowObserver(t *testing.T) {
	hub := NewHub()
	go hub.Start()
	defer hub.Close()

	// an observer nobody drains
	o := &Observer{ID: "slow", send: make(chan []byte), hub: hub}
	hub.Register <- o
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastRaw([]byte(`{"event":"new_message","data":{}}`))
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-o.send
	assert.False(t, open)
}

func TestPublishNeverBlocksWhenQueueFull(t *testing.T) {
	hub := NewHub() // loop not started
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.Transmit)+10; i++ {
			hub.Publish(context.Background(), events.NewMessage, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, hub.Transmit, cap(hub.Transmit))
}

func TestServeObserverReturnsAfterHubClosed(t *testing.T) {
	hub := NewHub() // loop not started
	for i := 0; i < cap(hub.Register); i++ {
		hub.Register <- &Observer{ID: "queued"}
	}
	hub.Close()

	served := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- ServeObserver(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	select {
	case err := <-served:
		assert.ErrorIs(t, err, ErrHubClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeObserver blocked on a closed hub")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseGoingAway))
}
