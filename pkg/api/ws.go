/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/carverauto/pulse/pkg/models"
)

const messageTypeHeartbeat = "heartbeat"

// wsConn adapts a gorilla connection to the presence.Conn capability.
// gorilla permits one concurrent writer, so writes serialize on a mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// handleWebSocket owns one heartbeat stream: it upgrades the connection,
// applies every well-formed heartbeat to the store and acks it, and marks
// the stream's devices unreachable when the connection goes away.
func (s *APIServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.checkWebSocketOrigin(r)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	sessionID := uuid.NewString()

	s.logger.Info().
		Str("session_id", sessionID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	s.readHeartbeats(conn, sessionID, r.RemoteAddr)
}

func (s *APIServer) readHeartbeats(conn *websocket.Conn, sessionID, remoteAddr string) {
	wc := &wsConn{conn: conn}

	// Client IDs ingested on this stream, so the disconnect can be routed
	// back to the owning devices.
	seen := make(map[string]struct{})

	defer func() {
		for clientID := range seen {
			s.presence.RemoveConnection(clientID)
		}

		_ = conn.Close()

		s.logger.Info().
			Str("session_id", sessionID).
			Int("client_ids", len(seen)).
			Msg("WebSocket connection closed")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn().
					Err(err).
					Str("session_id", sessionID).
					Msg("WebSocket read error")
			}

			return
		}

		var hb models.Heartbeat

		if err := json.Unmarshal(data, &hb); err != nil {
			// Malformed payloads are dropped; the connection stays open.
			s.logger.Warn().
				Err(err).
				Str("session_id", sessionID).
				Msg("Ignoring malformed WebSocket message")

			continue
		}

		if hb.Type != messageTypeHeartbeat {
			s.logger.Debug().
				Str("session_id", sessionID).
				Str("type", hb.Type).
				Msg("Ignoring unhandled message type")

			continue
		}

		if hb.IP == "" {
			hb.IP = remoteHost(remoteAddr)
		}

		if err := s.presence.ApplyHeartbeat(&hb, wc); err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", sessionID).
				Str("user_id", hb.UserID).
				Msg("Dropped invalid heartbeat")
		} else {
			seen[hb.ClientID] = struct{}{}

			s.logger.Debug().
				Str("session_id", sessionID).
				Str("user_id", hb.UserID).
				Str("client_id", hb.ClientID).
				Msg("Heartbeat applied")
		}

		// The ack confirms receipt of a parseable heartbeat, not that it
		// was accepted into the store.
		if err := s.sendAck(wc); err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", sessionID).
				Msg("Failed to send ack")

			return
		}
	}
}

func (*APIServer) sendAck(wc *wsConn) error {
	data, err := json.Marshal(models.Ack{
		Type:      "ack",
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	return wc.Send(data)
}

// checkWebSocketOrigin validates the WebSocket origin against the CORS
// configuration; connections without an Origin header are allowed.
func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.corsConfig.AllowedOrigins {
		if allowed == origin || allowed == "*" {
			return true
		}
	}

	s.logger.Warn().
		Str("origin", origin).
		Interface("allowed_origins", s.corsConfig.AllowedOrigins).
		Msg("WebSocket origin not allowed")

	return false
}

// remoteHost strips the port from an address like "10.0.0.1:52114".
func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
