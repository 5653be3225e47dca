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
	"sync"

	"github.com/golang/glog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TaskGroup runs a set of goroutines scoped to one context, the way the
// teacher's P4RTClientStream.Stop() tears down its reader goroutine and the
// Python original's SwitchTasks tears down a switch's ready-handler tasks:
// any one task failing cancels the group's context so its siblings wind
// down too, while a Background task's failure does not cancel the group
// (Background tasks still stop when the group's context is cancelled).
type TaskGroup struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	wg  sync.WaitGroup
	err error
}

// NewTaskGroup derives a cancellable group context from parent.
func NewTaskGroup(parent context.Context) *TaskGroup {
	ctx, cancel := context.WithCancel(parent)
	return &TaskGroup{ctx: ctx, cancel: cancel}
}

// Context returns the group's context, cancelled once any primary task
// fails or Cancel is called.
func (g *TaskGroup) Context() context.Context {
	return g.ctx
}

// Go runs fn in a new goroutine. If fn returns a non-nil error (other than
// context.Canceled, or a gRPC Unavailable status, which are expected
// shutdown/connectivity noise), the group's context is cancelled so
// sibling tasks observe it and wind down.
func (g *TaskGroup) Go(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := fn(g.ctx)
		if err == nil || err == context.Canceled {
			return
		}
		if status.Code(err) == codes.Unavailable {
			if glog.V(1) {
				glog.Infof("fsconc: task %q ended: unavailable", name)
			}
			return
		}

		g.mu.Lock()
		if g.err == nil {
			g.err = err
		}
		g.mu.Unlock()

		glog.Errorf("fsconc: task %q failed: %v", name, err)
		g.cancel()
	}()
}

// GoBackground runs fn in a new goroutine whose failure does not cancel
// the group — the equivalent of the Python original's background=True
// tasks, which SwitchTasks.cancel_primary() leaves running.
func (g *TaskGroup) GoBackground(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := fn(g.ctx); err != nil && err != context.Canceled {
			glog.Warningf("fsconc: background task %q failed: %v", name, err)
		}
	}()
}

// Cancel stops every task in the group.
func (g *TaskGroup) Cancel() {
	g.cancel()
}

// Wait blocks until every spawned task has returned, then reports the
// first non-exempt error observed (nil if the group ended cleanly or was
// simply cancelled from outside).
func (g *TaskGroup) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
