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

package models

// Heartbeat is the inbound liveness and usage report sent by a client over
// the WebSocket transport. Field names mirror the client wire format.
type Heartbeat struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	GroupID   string `json:"group_id,omitempty"`
	ClientID  string `json:"clientId"`
	MachineID string `json:"machineId"`
	IP        string `json:"ip"`
	StartTime int64  `json:"start_time"` // epoch seconds
	EndTime   int64  `json:"end_time"`   // epoch seconds
	Limit     int64  `json:"premium_model_fast_request_limit"`
	Usage     int64  `json:"premium_model_fast_request_usage"`
}

// Ack is sent back on the same connection for every well-formed heartbeat.
type Ack struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// DeviceView is one connection's device record as exposed by the query API.
// LastHeartbeat is epoch millis to match the dashboard's Date.now() math.
type DeviceView struct {
	ClientID      string `json:"clientId"`
	MachineID     string `json:"machineId"`
	IP            string `json:"ip"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	Connected     bool   `json:"connected"`
}

// SubscriptionView carries the latest usage snapshot plus the fields
// derived at query time.
type SubscriptionView struct {
	StartTime int64   `json:"start_time"`
	EndTime   int64   `json:"end_time"`
	Limit     int64   `json:"limit"`
	Usage     int64   `json:"usage"`
	Progress  float64 `json:"progress"`
	IsActive  bool    `json:"isActive"`
}

// PresenceView is the per-user projection computed on every query.
type PresenceView struct {
	UserID       string           `json:"user_id"`
	GroupID      *string          `json:"group_id"`
	Online       bool             `json:"online"`
	DeviceCount  int              `json:"deviceCount"`
	Devices      []DeviceView     `json:"devices"`
	Subscription SubscriptionView `json:"subscription"`
	LastSeen     int64            `json:"lastSeen"` // epoch millis
}

// UsersResponse is the payload for GET /api/users.
type UsersResponse struct {
	Users     []PresenceView `json:"users"`
	Timestamp int64          `json:"timestamp"` // epoch millis
}

// GroupsResponse is the payload for GET /api/groups.
type GroupsResponse struct {
	Groups []string `json:"groups"`
}
