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
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/presence"
)

// PresenceService is what the transport layer needs from the presence
// store: heartbeat ingest, disconnect routing and the read-side queries.
type PresenceService interface {
	ApplyHeartbeat(hb *models.Heartbeat, conn presence.Conn) error
	RemoveConnection(clientID string)
	DefaultUsers() []models.PresenceView
	GroupUsers(groupID string) []models.PresenceView
	Groups() []string
}
