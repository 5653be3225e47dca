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

package fsevent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent string

const (
	eventUp   testEvent = "up"
	eventDown testEvent = "down"
)

func TestOnDeliversInOrder(t *testing.T) {
	e := New[testEvent]()
	var order []int

	e.On(eventUp, func(any) { order = append(order, 1) })
	e.On(eventUp, func(any) { order = append(order, 2) })
	e.Emit(eventUp, nil)
	e.Emit(eventUp, nil)

	assert.Equal(t, []int{1, 2, 1, 2}, order)
}

func TestOnceFiresOnlyOnce(t *testing.T) {
	e := New[testEvent]()
	count := 0
	e.Once(eventUp, func(any) { count++ })

	e.Emit(eventUp, nil)
	e.Emit(eventUp, nil)

	assert.Equal(t, 1, count)
}

func TestListenerPanicDoesNotStopDispatch(t *testing.T) {
	e := New[testEvent]()
	ran := false
	e.On(eventUp, func(any) { panic("boom") })
	e.On(eventUp, func(any) { ran = true })

	e.Emit(eventUp, nil)

	assert.True(t, ran)
}

func TestFutureResolvesOnce(t *testing.T) {
	e := New[testEvent]()
	fut := e.Future(eventDown)

	e.Emit(eventDown, "switch1")

	select {
	case payload := <-fut:
		assert.Equal(t, "switch1", payload)
	case <-time.After(time.Second):
		t.Fatal("future did not resolve")
	}

	_, ok := <-fut
	require.False(t, ok)
}

func TestOffRemovesListeners(t *testing.T) {
	e := New[testEvent]()
	called := false
	e.On(eventUp, func(any) { called = true })
	e.Off(eventUp)
	e.Emit(eventUp, nil)

	assert.False(t, called)
}
