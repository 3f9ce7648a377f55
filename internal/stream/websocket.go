// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

const (
	transportWebsocket = "websocket"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// the upgrade; the upgrader accepts what reaches it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient pairs a hub subscriber with its websocket connection.
type wsClient struct {
	hub  *Hub
	sub  *Subscriber
	conn *websocket.Conn

	heartbeat time.Duration
}

// WebsocketHandler upgrades the request and streams the same frames as
// the NDJSON transport, one JSON text message per event.
func WebsocketHandler(hub *Hub, cfg *config.StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &wsClient{
			hub:       hub,
			sub:       NewSubscriber(transportWebsocket, cfg.SendBuffer),
			conn:      conn,
			heartbeat: cfg.HeartbeatInterval,
		}
		hub.Register <- client.sub

		go client.writePump()
		go client.readPump()
	}
}

// readPump discards inbound messages and watches for close. Viewers
// never send application data; the read loop exists to run the pong
// handler and to notice disconnects.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.Unregister <- c.sub
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Msg("unexpected websocket close")
			}
			return
		}
	}
}

// writePump forwards hub events to the connection and keeps it alive
// with heartbeat frames and protocol pings.
func (c *wsClient) writePump() {
	heartbeat := time.NewTicker(c.heartbeat)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		heartbeat.Stop()
		ping.Stop()
		_ = c.conn.Close()
	}()

	if err := c.writeEvent(models.NewStreamEvent(models.EventConnected, nil)); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-c.sub.Events():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeEvent(event); err != nil {
				logging.Debug().Err(err).Msg("websocket write failed, closing stream")
				return
			}

		case <-heartbeat.C:
			if err := c.writeEvent(models.NewStreamEvent(models.EventHeartbeat, nil)); err != nil {
				return
			}

		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) writeEvent(event models.StreamEvent) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}
