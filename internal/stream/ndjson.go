// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package stream

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

const transportNDJSON = "ndjson"

// NDJSONHandler streams catalog change events as newline-delimited JSON
// over a chunked HTTP response. One JSON object per line; the first
// frame is `connected` and carries a padding field sized to push
// buffering proxies into flushing, then a `heartbeat` frame every
// heartbeat interval for as long as the connection is quiet.
func NDJSONHandler(hub *Hub, cfg *config.StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		sub := NewSubscriber(transportNDJSON, cfg.SendBuffer)
		hub.Register <- sub
		defer func() {
			hub.Unregister <- sub
		}()

		connected := models.NewStreamEvent(models.EventConnected, nil)
		if cfg.PaddingBytes > 0 {
			connected.Padding = strings.Repeat(" ", cfg.PaddingBytes)
		}
		if err := writeFrame(w, connected); err != nil {
			return
		}
		flusher.Flush()

		heartbeat := time.NewTicker(cfg.HeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return

			case event, ok := <-sub.Events():
				if !ok {
					// Dropped by the hub.
					return
				}
				if err := writeFrame(w, event); err != nil {
					logging.Debug().Err(err).Msg("ndjson write failed, closing stream")
					return
				}
				flusher.Flush()

			case <-heartbeat.C:
				if err := writeFrame(w, models.NewStreamEvent(models.EventHeartbeat, nil)); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// writeFrame encodes one event as a single NDJSON line.
func writeFrame(w http.ResponseWriter, event models.StreamEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}
