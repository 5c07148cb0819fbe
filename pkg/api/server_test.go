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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/logger"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/presence"
)

type nopConn struct{}

func (nopConn) Send([]byte) error { return nil }
func (nopConn) Close() error      { return nil }

func newTestServer(t *testing.T) (*APIServer, *presence.Store) {
	t.Helper()

	log := logger.NewTestLogger()
	store := presence.NewStore(presence.StoreConfig{}, nil, log)

	cfg := &models.Config{
		ListenAddr: ":0",
		CORS:       models.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	return NewAPIServer(cfg, log, WithPresence(store)), store
}

func subscribedHeartbeat(userID, groupID, clientID string) *models.Heartbeat {
	now := time.Now()

	return &models.Heartbeat{
		Type:      "heartbeat",
		UserID:    userID,
		GroupID:   groupID,
		ClientID:  clientID,
		MachineID: "machine-" + clientID,
		IP:        "10.0.0.5",
		StartTime: now.Add(-24 * time.Hour).Unix(),
		EndTime:   now.Add(24 * time.Hour).Unix(),
		Limit:     1000,
		Usage:     250,
	}
}

func getJSON(t *testing.T, handler http.Handler, path string, dst interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if dst != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
	}

	return rec
}

func TestGetUsersEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	var resp models.UsersResponse

	rec := getJSON(t, server.Router(), "/api/users", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, resp.Users)
	assert.Positive(t, resp.Timestamp)
}

func TestGetUsersReturnsPresence(t *testing.T) {
	server, store := newTestServer(t)

	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-1", "", "client-1"), nopConn{}))

	var resp models.UsersResponse

	rec := getJSON(t, server.Router(), "/api/users", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Users, 1)

	user := resp.Users[0]
	assert.Equal(t, "user-1", user.UserID)
	assert.Nil(t, user.GroupID)
	assert.True(t, user.Online)
	assert.Equal(t, 1, user.DeviceCount)
	require.Len(t, user.Devices, 1)
	assert.Equal(t, "client-1", user.Devices[0].ClientID)
	assert.True(t, user.Subscription.IsActive)
	assert.InDelta(t, 25.0, user.Subscription.Progress, 0.001)
}

func TestGetUsersGroupScoped(t *testing.T) {
	server, store := newTestServer(t)

	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-a", "team-red", "client-a"), nopConn{}))
	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-b", "team-blue", "client-b"), nopConn{}))
	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-c", "", "client-c"), nopConn{}))

	var resp models.UsersResponse

	getJSON(t, server.Router(), "/api/users?group=team-red", &resp)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "user-a", resp.Users[0].UserID)
	require.NotNil(t, resp.Users[0].GroupID)
	assert.Equal(t, "team-red", *resp.Users[0].GroupID)

	// Without a group filter only ungrouped users are returned.
	getJSON(t, server.Router(), "/api/users", &resp)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "user-c", resp.Users[0].UserID)

	getJSON(t, server.Router(), "/api/users?group=does-not-exist", &resp)
	assert.Empty(t, resp.Users)
}

func TestGetGroups(t *testing.T) {
	server, store := newTestServer(t)

	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-a", "team-red", "client-a"), nopConn{}))
	require.NoError(t, store.ApplyHeartbeat(subscribedHeartbeat("user-b", "team-blue", "client-b"), nopConn{}))

	var resp models.GroupsResponse

	rec := getJSON(t, server.Router(), "/api/groups", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"team-blue", "team-red"}, resp.Groups)
}

func TestGetHealth(t *testing.T) {
	server, _ := newTestServer(t)

	var resp map[string]string

	rec := getJSON(t, server.Router(), "/api/healthz", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestAPIRejectsNonGETMethods(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticDashboardServed(t *testing.T) {
	server, _ := newTestServer(t)

	rec := getJSON(t, server.Router(), "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "usersGrid")
}
