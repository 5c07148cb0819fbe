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

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/pulse/pkg/logger"
	"github.com/carverauto/pulse/pkg/models"
)

func TestCommonMiddlewareCORS(t *testing.T) {
	tests := []struct {
		name           string
		cors           models.CORSConfig
		origin         string
		expectedHeader string
	}{
		{
			name:           "wildcard",
			cors:           models.CORSConfig{AllowedOrigins: []string{"*"}},
			origin:         "http://example.com",
			expectedHeader: "*",
		},
		{
			name:           "exact match echoed",
			cors:           models.CORSConfig{AllowedOrigins: []string{"http://example.com"}},
			origin:         "http://example.com",
			expectedHeader: "http://example.com",
		},
		{
			name:           "mismatch gets nothing",
			cors:           models.CORSConfig{AllowedOrigins: []string{"http://example.com"}},
			origin:         "http://evil.test",
			expectedHeader: "",
		},
		{
			name:           "wildcard with credentials echoes origin",
			cors:           models.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			origin:         "http://example.com",
			expectedHeader: "http://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CommonMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}), tt.cors, logger.NewTestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Origin", tt.origin)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.True(t, called)
			assert.Equal(t, tt.expectedHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCommonMiddlewarePreflight(t *testing.T) {
	handler := CommonMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}), models.CORSConfig{AllowedOrigins: []string{"*"}}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "http://example.com")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
