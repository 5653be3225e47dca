/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fsconc

import (
	"math/rand"
	"time"
)

// Backoff produces a monotonically increasing, jittered delay sequence for
// reconnect attempts, capped at a maximum. A Switch resets it to its
// minimum every time it reaches READY, so a healthy connection that drops
// once doesn't inherit a long sleep from an earlier unrelated outage.
type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64

	current time.Duration
}

// NewBackoff creates a Backoff starting at min, doubling (by default) up
// to max.
func NewBackoff(min, max time.Duration) *Backoff {
	return &Backoff{Min: min, Max: max, Factor: 2.0}
}

// Next returns the next delay in the sequence, with up to 20% jitter, and
// advances the sequence.
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Min
	}
	delay := b.current

	factor := b.Factor
	if factor <= 1 {
		factor = 2.0
	}
	next := time.Duration(float64(b.current) * factor)
	if next > b.Max || next <= 0 {
		next = b.Max
	}
	b.current = next

	jitter := time.Duration(rand.Int63n(int64(delay)/5 + 1))
	return delay + jitter
}

// Reset restarts the sequence at Min.
func (b *Backoff) Reset() {
	b.current = 0
}
