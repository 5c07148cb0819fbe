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
	"context"
	"sync"
	"time"

	"github.com/carverauto/pulse/pkg/logger"
)

// Sweeper periodically evicts stale devices from the store. It runs
// unconditionally on a fixed interval, independent of query traffic, and
// is idempotent: sweeping twice without time passing changes nothing.
type Sweeper struct {
	store    *Store
	interval time.Duration
	clock    Clock
	logger   logger.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewSweeper creates a sweeper for the given store. A nil clock falls back
// to wall time.
func NewSweeper(store *Store, interval time.Duration, clock Clock, log logger.Logger) *Sweeper {
	if clock == nil {
		clock = realClock{}
	}

	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		store:    store,
		interval: interval,
		clock:    clock,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start implements the lifecycle.Service interface. It blocks until the
// context is canceled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Starting presence sweeper")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.Chan():
			s.sweep()
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (s *Sweeper) Stop(_ context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})

	return nil
}

func (s *Sweeper) sweep() {
	start := s.clock.Now()
	evicted := s.store.EvictStale()

	if evicted > 0 {
		users, conns := s.store.Counts()

		s.logger.Info().
			Int("evicted_devices", evicted).
			Int("tracked_users", users).
			Int("live_connections", conns).
			Dur("elapsed", s.clock.Now().Sub(start)).
			Msg("Presence sweep completed")
	}
}
