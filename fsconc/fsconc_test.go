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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	q := NewQueue[int](2)
	q.Push(1)
	q.Push(2)
	q.Push(3) // drops 1

	assert.Equal(t, uint64(1), q.Dropped())

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueueCloseWakesPop(t *testing.T) {
	q := NewQueue[int](4)
	done := make(chan struct{})
	go func() {
		_, ok := q.Pop()
		assert.False(t, ok)
		close(done)
	}()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Close")
	}
}

func TestBackoffCapsAndResets(t *testing.T) {
	b := NewBackoff(10*time.Millisecond, 40*time.Millisecond)
	first := b.Next()
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)

	for i := 0; i < 10; i++ {
		b.Next()
	}
	assert.LessOrEqual(t, b.current, 40*time.Millisecond)

	b.Reset()
	assert.Equal(t, time.Duration(0), b.current)
}

func TestTaskGroupCancelsOnFailure(t *testing.T) {
	g := NewTaskGroup(context.Background())

	g.Go("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	g.Go("sibling", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := g.Wait()
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestTaskGroupBackgroundDoesNotCancel(t *testing.T) {
	g := NewTaskGroup(context.Background())

	g.GoBackground("bg", func(ctx context.Context) error {
		return errors.New("background failure")
	})

	require.NoError(t, g.Wait())
	assert.NoError(t, g.Context().Err())
}
