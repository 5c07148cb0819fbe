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
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

const maxProgress = 100.0

// projectUser computes the query-time presence view of a user. Must be
// called with at least the read lock held.
//
// A device counts as online when it is still connected and its last
// heartbeat falls within the activity window. The device count dedups
// online devices by machine ID; the devices list does not, so the
// dashboard can show every session.
func (s *Store) projectUser(user *User, now time.Time) models.PresenceView {
	online := make([]models.DeviceView, 0, len(user.Devices))
	machines := make(map[string]struct{})
	deviceCount := 0

	for _, device := range user.Devices {
		if !device.Connected || now.Sub(device.LastHeartbeat) >= s.activityWindow {
			continue
		}

		online = append(online, models.DeviceView{
			ClientID:      device.ClientID,
			MachineID:     device.MachineID,
			IP:            device.IP,
			LastHeartbeat: device.LastHeartbeat.UnixMilli(),
			Connected:     device.Connected,
		})

		if device.MachineID == "" {
			// No hardware identifier: not dedup-able, counts on its own.
			deviceCount++
			continue
		}

		if _, seen := machines[device.MachineID]; !seen {
			machines[device.MachineID] = struct{}{}
			deviceCount++
		}
	}

	var groupID *string
	if user.GroupID != "" {
		g := user.GroupID
		groupID = &g
	}

	return models.PresenceView{
		UserID:       user.UserID,
		GroupID:      groupID,
		Online:       len(online) > 0,
		DeviceCount:  deviceCount,
		Devices:      online,
		Subscription: projectSubscription(user.Subscription, now),
		LastSeen:     user.LastSeen.UnixMilli(),
	}
}

func projectSubscription(sub Subscription, now time.Time) models.SubscriptionView {
	progress := 0.0
	if sub.Limit > 0 {
		progress = float64(sub.Usage) / float64(sub.Limit) * 100

		if progress > maxProgress {
			progress = maxProgress
		}

		if progress < 0 {
			progress = 0
		}
	}

	nowSec := now.Unix()

	return models.SubscriptionView{
		StartTime: sub.StartTime,
		EndTime:   sub.EndTime,
		Limit:     sub.Limit,
		Usage:     sub.Usage,
		Progress:  progress,
		IsActive:  nowSec >= sub.StartTime && nowSec <= sub.EndTime,
	}
}
