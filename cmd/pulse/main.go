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

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/carverauto/pulse/pkg/api"
	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/lifecycle"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/presence"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/pulse/pulse.json", "Path to pulse config file")
	flag.Parse()

	ctx := context.Background()

	var cfg models.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		// A missing config file is not fatal: run with defaults so the
		// server still comes up in ad-hoc deployments.
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if verr := cfg.Validate(); verr != nil {
			return verr
		}
	}

	appLogger, err := lifecycle.CreateComponentLogger("pulse", cfg.Logging)
	if err != nil {
		return err
	}

	appLogger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Dur("activity_window", time.Duration(cfg.ActivityWindow)).
		Dur("sweep_interval", time.Duration(cfg.SweepInterval)).
		Dur("inactivity_threshold", time.Duration(cfg.InactivityThreshold)).
		Msg("Starting pulse server")

	store := presence.NewStore(presence.StoreConfig{
		ActivityWindow:      time.Duration(cfg.ActivityWindow),
		InactivityThreshold: time.Duration(cfg.InactivityThreshold),
	}, nil, appLogger)

	sweeper := presence.NewSweeper(store, time.Duration(cfg.SweepInterval), nil, appLogger)

	apiServer := api.NewAPIServer(&cfg, appLogger, api.WithPresence(store))

	return lifecycle.Run(ctx, appLogger, apiServer, sweeper)
}
