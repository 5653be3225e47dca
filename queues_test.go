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

package finsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSetDispatchesToAllReaders(t *testing.T) {
	var q queueSet[int]
	ch1, cancel1 := q.add(4)
	defer cancel1()
	ch2, cancel2 := q.add(4)
	defer cancel2()

	q.dispatch(42)

	assert.Equal(t, 42, <-ch1)
	assert.Equal(t, 42, <-ch2)
}

func TestQueueSetDropsOnFullChannel(t *testing.T) {
	var q queueSet[int]
	ch, cancel := q.add(1)
	defer cancel()

	q.dispatch(1)
	q.dispatch(2) // dropped: ch already has a buffered value

	require.Len(t, ch, 1)
	assert.Equal(t, 1, <-ch)
}

func TestQueueSetCancelClosesChannel(t *testing.T) {
	var q queueSet[int]
	ch, cancel := q.add(1)
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// dispatch after cancel must not panic even though the channel is closed
	q.dispatch(1)
}
