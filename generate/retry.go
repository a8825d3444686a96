// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package generate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/poiesic/repolens/ai"
)

// Retry defaults. Delays grow as base * 2^(attempt-1), capped, with
// uniform jitter added on top.
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
)

// Policy controls retry behavior for model calls. Transient failures
// are retried with exponential backoff; permanent failures stop
// immediately on the first attempt that produced them.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt. Each further
	// attempt doubles it, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration

	// Jitter maps a computed delay to the random extra added to it.
	// Nil means uniform in [0, delay/2).
	Jitter func(delay time.Duration) time.Duration

	// Classify decides whether an error is worth retrying. Nil means
	// ai.Classify.
	Classify func(err error) ai.FailureClass

	logger *slog.Logger
}

// DefaultPolicy returns a Policy with the standard backoff schedule.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		logger:      slog.Default().With("component", "retry"),
	}
}

// Do runs op, retrying transient failures per the policy. It returns
// nil on the first success, the original error as soon as it is
// classified permanent, or the last error once attempts are exhausted.
// Waits between attempts respect ctx cancellation.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = ai.Classify
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = uniformJitter
	}
	logger := p.logger
	if logger == nil {
		logger = slog.Default().With("component", "retry")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if classify(lastErr) == ai.ClassPermanent {
			logger.Error("permanent failure, not retrying",
				"attempt", attempt, "err", lastErr)
			return lastErr
		}

		if attempt == attempts {
			break
		}

		delay := p.backoff(attempt) + jitter(p.backoff(attempt))
		logger.Warn("transient failure, backing off",
			"attempt", attempt,
			"of", attempts,
			"delay", delay,
			"err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}

// backoff computes the capped exponential delay for a given attempt,
// where attempt is 1-based.
func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	ceiling := p.MaxDelay
	if ceiling <= 0 {
		ceiling = DefaultMaxDelay
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	if delay > ceiling {
		return ceiling
	}
	return delay
}

// uniformJitter returns a random duration in [0, delay/2).
func uniformJitter(delay time.Duration) time.Duration {
	half := int64(delay / 2)
	if half <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(half))
}
