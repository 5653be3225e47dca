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

	"github.com/byllyfish/finsy/gnmi"
	"github.com/byllyfish/finsy/gnmipath"
	"github.com/golang/glog"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
)

// OperStatus mirrors the gNMI interfaces/interface/state/oper-status leaf.
type OperStatus string

// The complete set of oper-status values gNMI reports.
const (
	OperStatusUnknown         OperStatus = "UNKNOWN"
	OperStatusUp              OperStatus = "UP"
	OperStatusDown            OperStatus = "DOWN"
	OperStatusTesting         OperStatus = "TESTING"
	OperStatusDormant         OperStatus = "DORMANT"
	OperStatusNotPresent      OperStatus = "NOT_PRESENT"
	OperStatusLowerLayerDown  OperStatus = "LOWER_LAYER_DOWN"
)

// Port is one interface on a switch, tracked by PortList.
type Port struct {
	ID         uint64
	Name       string
	OperStatus OperStatus
}

// Up reports whether the port is operationally up.
func (p Port) Up() bool { return p.OperStatus == OperStatusUp }

var (
	ifIndexPath     = gnmipath.MustParse("interfaces/interface[name=*]/state/ifindex")
	ifOperStatusPath = gnmipath.MustParse("interfaces/interface[name=*]/state/oper-status")
)

// PortList tracks every interface on a switch's gNMI target, kept current
// by a background ON_CHANGE subscription to oper-status.
type PortList struct {
	mu    sync.RWMutex
	ports map[string]*Port
	sub   *gnmi.Subscription
}

func newPortList() *PortList {
	return &PortList{ports: make(map[string]*Port)}
}

// Get returns the port named name, and whether it was found.
func (pl *PortList) Get(name string) (Port, bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	p, ok := pl.ports[name]
	if !ok {
		return Port{}, false
	}
	return *p, true
}

// All returns a snapshot of every tracked port.
func (pl *PortList) All() []Port {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	out := make([]Port, 0, len(pl.ports))
	for _, p := range pl.ports {
		out = append(out, *p)
	}
	return out
}

// Len returns the number of tracked ports.
func (pl *PortList) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.ports)
}

// subscribe discovers the current interface list, then opens an ON_CHANGE
// subscription to oper-status and blocks until the initial sync completes.
func (pl *PortList) subscribe(ctx context.Context, client *gnmi.Client) error {
	ports, err := pl.discover(ctx, client)
	if err != nil {
		return err
	}

	pl.mu.Lock()
	pl.ports = ports
	pl.mu.Unlock()

	sub := client.Subscribe(gnmipath.Root)
	for _, p := range ports {
		path, err := operStatusPath(p.Name)
		if err != nil {
			return err
		}
		sub.OnChange(path)
	}

	synced, err := sub.Synchronize(ctx)
	if err != nil {
		return err
	}
	for u := range synced {
		pl.applyUpdate(u, nil)
	}

	pl.mu.Lock()
	pl.sub = sub
	pl.mu.Unlock()
	return nil
}

// run drains change notifications until ctx is canceled or the
// subscription ends, emitting PortUp/PortDown on sw for each transition.
func (pl *PortList) run(ctx context.Context, sw *Switch) error {
	pl.mu.RLock()
	sub := pl.sub
	pl.mu.RUnlock()
	if sub == nil {
		return nil
	}

	updates, err := sub.Updates(ctx)
	if err != nil {
		return err
	}
	for u := range updates {
		pl.applyUpdate(u, sw)
	}
	return ctx.Err()
}

// close cancels the subscription and drops all tracked ports.
func (pl *PortList) close() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.sub != nil {
		pl.sub.Cancel()
		pl.sub = nil
	}
	pl.ports = make(map[string]*Port)
}

func (pl *PortList) discover(ctx context.Context, client *gnmi.Client) (map[string]*Port, error) {
	results, err := client.Get(ctx, []gnmipath.Path{ifIndexPath})
	if err != nil {
		return nil, newRpcError(err)
	}

	ports := make(map[string]*Port, len(results))
	for _, u := range results {
		name, ok := u.Path.KeyByName("name")
		if !ok {
			continue
		}
		ports[name] = &Port{
			ID:         uintValue(u.Value),
			Name:       name,
			OperStatus: OperStatusUnknown,
		}
	}
	return ports, nil
}

func (pl *PortList) applyUpdate(u gnmi.Update, sw *Switch) {
	name, ok := u.Path.KeyByName("name")
	if !ok {
		glog.Warningf("finsy: port update missing name key: %s", u.Path)
		return
	}

	switch u.Path.Last() {
	case "oper-status":
		pl.updateOperStatus(name, OperStatus(stringValue(u.Value)), sw)
	default:
		glog.Warningf("finsy: unexpected gNMI path in port subscription: %s", u.Path)
	}
}

func (pl *PortList) updateOperStatus(name string, status OperStatus, sw *Switch) {
	pl.mu.Lock()
	port, ok := pl.ports[name]
	if !ok {
		port = &Port{Name: name}
		pl.ports[name] = port
	}
	wasUp := port.Up()
	port.OperStatus = status
	isUp := port.Up()
	snapshot := *port
	pl.mu.Unlock()

	if sw == nil || wasUp == isUp {
		return
	}
	if isUp {
		sw.emit(PortUp, snapshot)
	} else {
		sw.emit(PortDown, snapshot)
	}
}

func operStatusPath(name string) (gnmipath.Path, error) {
	return ifOperStatusPath.SetKey(1, "name", name)
}

func stringValue(v *gnmipb.TypedValue) string {
	if v == nil {
		return ""
	}
	if sv, ok := v.GetValue().(*gnmipb.TypedValue_StringVal); ok {
		return sv.StringVal
	}
	return fmt.Sprintf("%v", v.GetValue())
}

func uintValue(v *gnmipb.TypedValue) uint64 {
	if v == nil {
		return 0
	}
	switch tv := v.GetValue().(type) {
	case *gnmipb.TypedValue_UintVal:
		return tv.UintVal
	case *gnmipb.TypedValue_IntVal:
		return uint64(tv.IntVal)
	default:
		return 0
	}
}
