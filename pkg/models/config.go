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

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/carverauto/pulse/pkg/logger"
)

type Duration time.Duration

var errInvalidDuration = fmt.Errorf("invalid duration")

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// CORSConfig holds the cross-origin settings shared by the HTTP middleware
// and the WebSocket upgrader.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

const (
	defaultListenAddr          = ":8080"
	defaultActivityWindow      = Duration(60 * time.Second)
	defaultSweepInterval       = Duration(60 * time.Second)
	defaultInactivityThreshold = Duration(5 * time.Minute)
)

// Config represents the configuration for the pulse server.
type Config struct {
	ListenAddr          string         `json:"listen_addr"`
	ActivityWindow      Duration       `json:"activity_window"`
	SweepInterval       Duration       `json:"sweep_interval"`
	InactivityThreshold Duration       `json:"inactivity_threshold"`
	CORS                CORSConfig     `json:"cors"`
	Logging             *logger.Config `json:"logging,omitempty"`
}

// Validate implements config.Validator. It fills in defaults rather than
// rejecting partial configs so the server can run from an empty file.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	// PORT takes precedence over the config file when set.
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}

	if c.ActivityWindow <= 0 {
		c.ActivityWindow = defaultActivityWindow
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}

	if c.InactivityThreshold <= 0 {
		c.InactivityThreshold = defaultInactivityThreshold
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	return nil
}
