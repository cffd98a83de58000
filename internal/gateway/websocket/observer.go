package websocket

import (
	"errors"
	"net/http"
	"time"

	"sms_campaign_server/pkg/constants"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ErrHubClosed is returned by ServeObserver after the hub has shut down.
var ErrHubClosed = errors.New("live update hub closed")

// Browser dashboards are served from other origins.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Observer is one connected live-update client. It only receives.
type Observer struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// ServeObserver upgrades the request and registers the connection with hub.
func ServeObserver(hub *Hub, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	o := &Observer{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, constants.CHANNEL_SIZE),
		hub:  hub,
	}
	if !hub.register(o) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return ErrHubClosed
	}
	go o.writePump()
	go o.readPump()
	return nil
}

// readPump discards client frames and detects the close.
func (o *Observer) readPump() {
	defer func() {
		o.hub.unregister(o)
		_ = o.conn.Close()
	}()
	o.conn.SetReadLimit(maxMessageSize)
	_ = o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("observer read failed", zap.String("observerID", o.ID), zap.Error(err))
			}
			return
		}
	}
}

// writePump drains send until the hub closes it.
func (o *Observer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = o.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-o.send:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("observer write failed", zap.String("observerID", o.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
