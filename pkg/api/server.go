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

// Package api provides the HTTP and WebSocket server for pulse
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	pulsehttp "github.com/carverauto/pulse/pkg/http"
	"github.com/carverauto/pulse/pkg/logger"
	"github.com/carverauto/pulse/pkg/models"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// APIServer serves the dashboard, the query API and the WebSocket
// heartbeat endpoint.
type APIServer struct {
	router     *mux.Router
	presence   PresenceService
	corsConfig models.CORSConfig
	listenAddr string
	logger     logger.Logger
	httpServer *http.Server
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config *models.Config, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config.CORS,
		listenAddr: config.ListenAddr,
		logger:     log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithPresence wires the presence store into the API server
func WithPresence(p PresenceService) func(*APIServer) {
	return func(server *APIServer) {
		server.presence = p
	}
}

// setupRoutes configures the HTTP routes for the API server.
func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return pulsehttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.HandleFunc("/ws", s.handleWebSocket)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users", s.getUsers).Methods("GET")
	api.HandleFunc("/groups", s.getGroups).Methods("GET")
	api.HandleFunc("/healthz", s.getHealth).Methods("GET")

	s.setupStaticRoutes()
}

func (s *APIServer) getUsers(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group")

	var users []models.PresenceView
	if groupID != "" {
		users = s.presence.GroupUsers(groupID)
	} else {
		users = s.presence.DefaultUsers()
	}

	s.logger.Debug().
		Str("group", groupID).
		Int("count", len(users)).
		Msg("Presence query")

	writeJSON(w, s.logger, models.UsersResponse{
		Users:     users,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *APIServer) getGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, models.GroupsResponse{Groups: s.presence.Groups()})
}

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// Start implements the lifecycle.Service interface. It blocks until the
// server is shut down.
func (s *APIServer) Start(_ context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info().Str("listen_addr", s.listenAddr).Msg("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop implements the lifecycle.Service interface.
func (s *APIServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// Router exposes the handler for tests.
func (s *APIServer) Router() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, log logger.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
