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

// Package presence implements the in-memory presence and usage store.
//
// The store owns one record per user, each embedding a device map and the
// latest subscription snapshot. Heartbeat ingest, disconnect handling and
// the eviction sweep serialize on a store-wide write lock; queries take
// the read lock and compute their projection under it, so a reader sees
// either the pre- or post-mutation state of a record, never a torn one.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/carverauto/pulse/pkg/logger"
	"github.com/carverauto/pulse/pkg/models"
)

// Store is the single authoritative holder of presence state. State is
// volatile; nothing survives a restart.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*User
	groups map[string]map[string]struct{}
	conns  map[string]Conn

	activityWindow      time.Duration
	inactivityThreshold time.Duration

	clock  Clock
	logger logger.Logger
}

// NewStore creates a presence store. A nil clock falls back to wall time.
func NewStore(cfg StoreConfig, clock Clock, log logger.Logger) *Store {
	if clock == nil {
		clock = realClock{}
	}

	if cfg.ActivityWindow <= 0 {
		cfg.ActivityWindow = DefaultActivityWindow
	}

	if cfg.InactivityThreshold <= 0 {
		cfg.InactivityThreshold = DefaultInactivityThreshold
	}

	return &Store{
		users:               make(map[string]*User),
		groups:              make(map[string]map[string]struct{}),
		conns:               make(map[string]Conn),
		activityWindow:      cfg.ActivityWindow,
		inactivityThreshold: cfg.InactivityThreshold,
		clock:               clock,
		logger:              log,
	}
}

// ApplyHeartbeat validates and applies a heartbeat. A heartbeat without a
// user or connection identifier is rejected before any state changes.
//
// On success, atomically with respect to other mutations: the transport
// handle is recorded under the client ID, the user record is created if
// absent, the device record is upserted, the subscription snapshot is
// replaced wholesale (last-write-wins) and group membership is updated.
func (s *Store) ApplyHeartbeat(hb *models.Heartbeat, conn Conn) error {
	if hb.UserID == "" {
		return ErrMissingUserID
	}

	if hb.ClientID == "" {
		return ErrMissingClientID
	}

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if conn != nil {
		s.conns[hb.ClientID] = conn
	}

	user, ok := s.users[hb.UserID]
	if !ok {
		user = &User{
			UserID:  hb.UserID,
			Devices: make(map[string]*Device),
		}
		s.users[hb.UserID] = user

		s.logger.Info().
			Str("user_id", hb.UserID).
			Str("group_id", hb.GroupID).
			Msg("Tracking new user")
	}

	user.Devices[hb.ClientID] = &Device{
		ClientID:      hb.ClientID,
		MachineID:     hb.MachineID,
		IP:            hb.IP,
		LastHeartbeat: now,
		Connected:     true,
	}

	user.Subscription = Subscription{
		StartTime: hb.StartTime,
		EndTime:   hb.EndTime,
		Limit:     hb.Limit,
		Usage:     hb.Usage,
	}

	user.LastSeen = now
	user.GroupID = hb.GroupID

	// Group membership is append-only: a user that later changes group
	// keeps its old index entries. Queries resolve through the user map,
	// which always reflects the current group.
	if hb.GroupID != "" {
		members, ok := s.groups[hb.GroupID]
		if !ok {
			members = make(map[string]struct{})
			s.groups[hb.GroupID] = members
		}

		members[hb.UserID] = struct{}{}
	}

	return nil
}

// RemoveConnection marks the device owning the given client ID as
// unreachable. The device record and the connection-map entry stay until
// the sweep; a flapping connection is not instantly forgotten.
func (s *Store) RemoveConnection(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if device, ok := user.Devices[clientID]; ok {
			device.Connected = false

			s.logger.Debug().
				Str("user_id", user.UserID).
				Str("client_id", clientID).
				Msg("Marked device disconnected")

			break
		}
	}
}

// DefaultUsers returns the presence view of every ungrouped user.
func (s *Store) DefaultUsers() []models.PresenceView {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]models.PresenceView, 0, len(s.users))

	for _, user := range s.users {
		if user.GroupID != "" {
			continue
		}

		views = append(views, s.projectUser(user, now))
	}

	sortViews(views)

	return views
}

// GroupUsers returns the presence view of every user in the given group.
// An unknown group is an empty result, not an error.
func (s *Store) GroupUsers(groupID string) []models.PresenceView {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.groups[groupID]
	if !ok {
		return []models.PresenceView{}
	}

	views := make([]models.PresenceView, 0, len(members))

	for userID := range members {
		user, ok := s.users[userID]
		if !ok {
			// Index entries for users missing from the user map are
			// skipped. Unreachable under the current no-delete policy.
			continue
		}

		views = append(views, s.projectUser(user, now))
	}

	sortViews(views)

	return views
}

// Groups returns the known group identifiers.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]string, 0, len(s.groups))
	for id := range s.groups {
		groups = append(groups, id)
	}

	sort.Strings(groups)

	return groups
}

// EvictStale removes every device whose last heartbeat is older than the
// inactivity threshold, along with its connection-map entry. Devices at
// exactly the threshold are retained. User records are never removed here;
// presence history is kept deliberately. Returns the number of devices
// evicted.
func (s *Store) EvictStale() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0

	for _, user := range s.users {
		for clientID, device := range user.Devices {
			if now.Sub(device.LastHeartbeat) <= s.inactivityThreshold {
				continue
			}

			delete(user.Devices, clientID)
			delete(s.conns, clientID)
			evicted++

			s.logger.Debug().
				Str("user_id", user.UserID).
				Str("client_id", clientID).
				Time("last_heartbeat", device.LastHeartbeat).
				Msg("Evicted stale device")
		}
	}

	return evicted
}

// Counts returns the number of tracked users and live connection handles.
func (s *Store) Counts() (users, conns int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users), len(s.conns)
}

// sortViews keeps API responses stable across polls; map iteration order
// would otherwise make the dashboard cards jump around.
func sortViews(views []models.PresenceView) {
	sort.Slice(views, func(i, j int) bool {
		return views[i].UserID < views[j].UserID
	})
}
