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
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"
)

// Controller supervises a set of uniquely-named Switches, running
// each one's Run loop concurrently and restarting none of them on its own:
// a Switch's own Run loop already reconnects on failure, so Controller's
// only job is fan-out and lifetime bookkeeping.
type Controller struct {
	name string

	mu       sync.Mutex
	switches map[string]*Switch
	running  bool
}

// NewController builds a Controller over the given switches. Every switch
// must have a unique Name.
func NewController(name string, switches ...*Switch) (*Controller, error) {
	c := &Controller{name: name, switches: make(map[string]*Switch, len(switches))}
	for _, sw := range switches {
		if _, exists := c.switches[sw.Name]; exists {
			return nil, fmt.Errorf("finsy: switch named %q already exists", sw.Name)
		}
		c.switches[sw.Name] = sw
	}
	return c, nil
}

// Running reports whether the Controller is currently executing Run.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Len returns the number of switches the Controller currently manages.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.switches)
}

// Get retrieves a managed switch by name, or nil if not found.
func (c *Controller) Get(name string) *Switch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switches[name]
}

// All returns a snapshot of every switch the Controller currently manages.
func (c *Controller) All() []*Switch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Switch, 0, len(c.switches))
	for _, sw := range c.switches {
		out = append(out, sw)
	}
	return out
}

// Add starts managing switch. If the Controller is already running, its
// Run loop is started immediately.
func (c *Controller) Add(ctx context.Context, sw *Switch) error {
	c.mu.Lock()
	if _, exists := c.switches[sw.Name]; exists {
		c.mu.Unlock()
		return fmt.Errorf("finsy: switch named %q already exists", sw.Name)
	}
	c.switches[sw.Name] = sw
	running := c.running
	c.mu.Unlock()

	if running {
		c.startSwitch(ctx, sw)
	}
	return nil
}

// Remove stops managing switch and calls its Close, which tears down a
// connection started with Switch.Open. Remove does not cancel a Run loop
// the Controller started for switch; that loop keeps running until the
// context passed to the Controller is done.
func (c *Controller) Remove(sw *Switch) error {
	c.mu.Lock()
	existing, ok := c.switches[sw.Name]
	if !ok || existing != sw {
		c.mu.Unlock()
		return fmt.Errorf("finsy: switch named %q not found", sw.Name)
	}
	delete(c.switches, sw.Name)
	c.mu.Unlock()

	sw.Close()
	return nil
}

type controllerKey struct{}

// ControllerFromContext retrieves the Controller running the current
// Switch from ctx. It panics if ctx was not derived from a Controller's
// Run — the Go analogue of the Python original's contextvars-based
// current_controller(), which raises the same way outside a running
// Controller.
func ControllerFromContext(ctx context.Context) *Controller {
	c, ok := ctx.Value(controllerKey{}).(*Controller)
	if !ok {
		panic("finsy: ControllerFromContext called outside a running Controller")
	}
	return c
}

// Run starts every managed switch's Run loop and blocks until every one of
// those loops has returned, or until ctx is canceled, after which it waits
// for all of them to stop. Switches added while running are not waited for.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("finsy: controller %q is already running", c.name)
	}
	c.running = true
	switches := make([]*Switch, 0, len(c.switches))
	for _, sw := range c.switches {
		switches = append(switches, sw)
	}
	c.mu.Unlock()

	ctx = context.WithValue(ctx, controllerKey{}, c)

	var wg sync.WaitGroup
	for _, sw := range switches {
		wg.Add(1)
		go func(sw *Switch) {
			defer wg.Done()
			c.runSwitch(ctx, sw)
		}(sw)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		<-done
	case <-done:
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	return ctx.Err()
}

func (c *Controller) startSwitch(ctx context.Context, sw *Switch) {
	ctx = context.WithValue(ctx, controllerKey{}, c)
	go c.runSwitch(ctx, sw)
}

func (c *Controller) runSwitch(ctx context.Context, sw *Switch) {
	sw.emit(ControllerEnter, sw)
	defer sw.emit(ControllerLeave, sw)

	if err := sw.Run(ctx); err != nil && ctx.Err() == nil {
		glog.Errorf("finsy: controller %q: switch %q: %v", c.name, sw.Name, err)
	}
}
