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

// Package fsevent provides a small synchronous event emitter, the Go
// counterpart of the pyee.EventEmitter the original finsy package builds
// Switch's event stream on.
package fsevent

import (
	"sync"

	"github.com/golang/glog"
)

// Emitter dispatches events of key type K to registered listeners, each
// receiving a single payload value. Dispatch is synchronous and in
// registration order; a listener that panics is recovered and logged, and
// does not stop the remaining listeners
// from running, so one broken handler can't silently swallow events meant
// for others.
type Emitter[K comparable] struct {
	mu        sync.Mutex
	listeners map[K][]*listener
}

type listener struct {
	fn   func(any)
	once bool
}

// New creates an empty Emitter.
func New[K comparable]() *Emitter[K] {
	return &Emitter[K]{listeners: make(map[K][]*listener)}
}

// On registers fn to run every time event is emitted.
func (e *Emitter[K]) On(event K, fn func(any)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], &listener{fn: fn})
}

// Once registers fn to run at most once, the next time event is emitted.
func (e *Emitter[K]) Once(event K, fn func(any)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], &listener{fn: fn, once: true})
}

// Off removes every listener registered for event.
func (e *Emitter[K]) Off(event K) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

// Emit calls every listener registered for event, in registration order,
// passing payload. Listeners registered with Once are removed after
// running. A listener that panics is recovered and logged so the rest of
// the dispatch still completes.
func (e *Emitter[K]) Emit(event K, payload any) {
	e.mu.Lock()
	all := e.listeners[event]
	listeners := make([]*listener, len(all))
	copy(listeners, all)

	var remaining []*listener
	for _, l := range all {
		if !l.once {
			remaining = append(remaining, l)
		}
	}
	e.listeners[event] = remaining
	e.mu.Unlock()

	for _, l := range listeners {
		e.dispatch(l, payload)
	}
}

func (e *Emitter[K]) dispatch(l *listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("fsevent: listener panicked: %v", r)
		}
	}()
	l.fn(payload)
}

// Future returns a channel that receives the next occurrence of event,
// then closes. It is a one-shot wait, the Go equivalent of the Python
// emitter's event_future helper that Switch uses to await CHANNEL_READY.
func (e *Emitter[K]) Future(event K) <-chan any {
	ch := make(chan any, 1)
	e.Once(event, func(payload any) {
		ch <- payload
		close(ch)
	})
	return ch
}
