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

package presence

import (
	"errors"
	"time"
)

var (
	// ErrMissingUserID indicates a heartbeat without a user identifier.
	ErrMissingUserID = errors.New("heartbeat missing user_id")
	// ErrMissingClientID indicates a heartbeat without a connection identifier.
	ErrMissingClientID = errors.New("heartbeat missing clientId")
)

const (
	// DefaultActivityWindow is how recent a device's heartbeat must be for
	// the device to count as online.
	DefaultActivityWindow = 60 * time.Second
	// DefaultInactivityThreshold is how stale a device's heartbeat must be
	// before the sweep evicts it.
	DefaultInactivityThreshold = 5 * time.Minute
	// DefaultSweepInterval is how often the sweeper runs an eviction pass.
	DefaultSweepInterval = 60 * time.Second
)

// Device is one transport session of a user, keyed by client ID. Two
// sessions on the same physical machine share a machine ID and are
// deduplicated at query time.
type Device struct {
	ClientID      string
	MachineID     string
	IP            string
	LastHeartbeat time.Time
	Connected     bool
}

// Subscription is the latest usage snapshot for a user. It is replaced
// wholesale on every heartbeat; there is no per-field merging.
type Subscription struct {
	StartTime int64 // epoch seconds
	EndTime   int64 // epoch seconds
	Limit     int64
	Usage     int64
}

// User is the per-user presence record. Once created it is never removed
// by the store itself; only its devices expire.
type User struct {
	UserID       string
	GroupID      string // empty means ungrouped
	Devices      map[string]*Device
	LastSeen     time.Time
	Subscription Subscription
}

// StoreConfig carries the tunables of the presence store.
type StoreConfig struct {
	ActivityWindow      time.Duration
	InactivityThreshold time.Duration
}
