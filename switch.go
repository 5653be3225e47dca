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

// Package finsy is a P4Runtime/gNMI control-plane client: it manages the
// connection lifecycle to one or many switches (arbitration, pipeline
// installation, gNMI port tracking) and offers typed helpers for reading
// and writing P4Runtime entities.
package finsy

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/byllyfish/finsy/fsconc"
	"github.com/byllyfish/finsy/fsevent"
	"github.com/byllyfish/finsy/gnmi"
	"github.com/byllyfish/finsy/p4entity"
	"github.com/byllyfish/finsy/p4rtclient"
	"github.com/byllyfish/finsy/p4schema"
	"github.com/golang/glog"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// ConnectionState is a Switch's coarse connection status, the public view
// of where its FSM currently sits.
type ConnectionState int

const (
	StateDown ConnectionState = iota
	StateConnecting
	StateConnected
	StateReady
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDown:
		return "down"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	minReconnectBackoff = 250 * time.Millisecond
	maxReconnectBackoff = 30 * time.Second
)

// Switch manages one P4Runtime connection (and, when the target supports
// it, an associated gNMI connection) to a network device. Run it directly
// with Run for a supervised connection that survives transient failures by
// reconnecting, or drive a single connection attempt with Open/Close.
type Switch struct {
	Name    string
	Address string
	Options SwitchOptions

	ee *fsevent.Emitter[SwitchEvent]

	stashMu sync.Mutex
	stash   map[string]any

	mu         sync.RWMutex
	state      ConnectionState
	schema     *p4schema.Schema
	apiVersion ApiVersion
	client     *p4rtclient.Client
	stream     *p4rtclient.Stream
	gnmiClient *gnmi.Client
	tasks      *fsconc.TaskGroup

	arb   *arbitrator
	ports *PortList

	backoff *fsconc.Backoff

	packets   queueSet[p4entity.PacketIn]
	digests   queueSet[p4entity.DigestList]
	idleTimes queueSet[p4entity.IdleTimeoutNotification]

	closeFn context.CancelFunc
	doneCh  chan struct{}
}

// NewSwitch builds a Switch bound to address, configured by opts. name must
// be unique within any Controller that manages this Switch.
func NewSwitch(name, address string, opts SwitchOptions) *Switch {
	return &Switch{
		Name:    name,
		Address: address,
		Options: opts,
		ee:      fsevent.New[SwitchEvent](),
		stash:   cloneStash(opts.Stash),
		state:   StateDown,
		schema:  p4schema.Empty,
		ports:   newPortList(),
		arb:     newArbitrator(opts.DeviceID, opts.InitialElectionID, opts.role()),
		backoff: fsconc.NewBackoff(minReconnectBackoff, maxReconnectBackoff),
	}
}

func cloneStash(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// On registers fn to run every time event fires on this Switch.
func (sw *Switch) On(event SwitchEvent, fn func(any)) { sw.ee.On(event, fn) }

// Once registers fn to run the next time event fires on this Switch.
func (sw *Switch) Once(event SwitchEvent, fn func(any)) { sw.ee.Once(event, fn) }

// Off removes every listener registered for event.
func (sw *Switch) Off(event SwitchEvent) { sw.ee.Off(event) }

func (sw *Switch) emit(event SwitchEvent, payload any) { sw.ee.Emit(event, payload) }

// Stash returns the value stored under key and whether it was present.
// Every Switch starts with a copy of its SwitchOptions' Stash.
func (sw *Switch) Stash(key string) (any, bool) {
	sw.stashMu.Lock()
	defer sw.stashMu.Unlock()
	v, ok := sw.stash[key]
	return v, ok
}

// SetStash sets a key in this Switch's stash.
func (sw *Switch) SetStash(key string, value any) {
	sw.stashMu.Lock()
	defer sw.stashMu.Unlock()
	sw.stash[key] = value
}

// State returns the Switch's current connection state.
func (sw *Switch) State() ConnectionState {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.state
}

func (sw *Switch) setState(s ConnectionState) {
	sw.mu.Lock()
	sw.state = s
	sw.mu.Unlock()
}

// Schema returns the Switch's currently loaded pipeline (p4schema.Empty
// before PIPELINE_CHECK completes).
func (sw *Switch) Schema() *p4schema.Schema {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.schema
}

func (sw *Switch) setSchema(s *p4schema.Schema) {
	sw.mu.Lock()
	sw.schema = s
	sw.mu.Unlock()
}

// ApiVersion returns the P4Runtime API version last reported by
// Capabilities, the zero ApiVersion if it hasn't been fetched yet.
func (sw *Switch) ApiVersion() ApiVersion {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.apiVersion
}

// IsPrimary reports whether this client currently holds primary status.
func (sw *Switch) IsPrimary() bool {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.arb.isPrimary
}

// ElectionID returns the election ID this client is currently bidding with.
func (sw *Switch) ElectionID() *p4v1.Uint128 {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.arb.electionID
}

// Ports returns the Switch's tracked interface list.
func (sw *Switch) Ports() *PortList { return sw.ports }

// CreateTask spawns fn as a background task scoped to the current
// connection attempt: it is cancelled when the channel goes down, but its
// failure does not tear down the rest of the connection. Intended for use
// from a ReadyHandler that needs to keep running after it returns.
func (sw *Switch) CreateTask(name string, fn func(ctx context.Context) error) {
	sw.mu.RLock()
	tasks := sw.tasks
	sw.mu.RUnlock()
	if tasks == nil {
		glog.Warningf("finsy: switch %q: CreateTask(%q) called with no active connection", sw.Name, name)
		return
	}
	tasks.GoBackground(name, fn)
}

func (sw *Switch) clientAndSchema() (*p4rtclient.Client, *p4schema.Schema) {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.client, sw.schema
}

func (sw *Switch) streamRef() *p4rtclient.Stream {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.stream
}

// Run drives the Switch's connection lifecycle until ctx is cancelled,
// reconnecting with jittered exponential backoff after every failure. A
// programming error (ConfigurationError, SchemaError, EncodingError,
// PipelineError) is returned immediately if Options.FailFast is set;
// otherwise it (and every transient connection error) is logged and
// followed by a reconnect attempt.
func (sw *Switch) Run(ctx context.Context) error {
	for {
		err := sw.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sw.setState(StateFailed)
		if err != nil {
			if sw.Options.FailFast && isProgrammingError(err) {
				return err
			}
			glog.Warningf("finsy: switch %q: %v", sw.Name, err)
		}

		delay := sw.backoff.Next()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Open makes a single connection attempt and returns once the Switch
// reaches READY, or the attempt fails. Call Close to tear the connection
// down. Unlike Run, Open does not reconnect on failure.
func (sw *Switch) Open(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	sw.closeFn = cancel
	sw.doneCh = make(chan struct{})

	ready := sw.ee.Future(ChannelReady)
	errCh := make(chan error, 1)
	go func() {
		defer close(sw.doneCh)
		errCh <- sw.runOnce(runCtx)
	}()

	select {
	case <-ready:
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		cancel()
		<-sw.doneCh
		return ctx.Err()
	}
}

// Close tears down a connection opened with Open and waits for it to finish.
func (sw *Switch) Close() {
	if sw.closeFn != nil {
		sw.closeFn()
	}
	if sw.doneCh != nil {
		<-sw.doneCh
	}
}

func isProgrammingError(err error) bool {
	switch err.(type) {
	case *ConfigurationError, *SchemaError, *EncodingError, *PipelineError:
		return true
	default:
		return false
	}
}

// runOnce performs one CONNECTING -> HANDSHAKING -> PIPELINE_CHECK -> READY
// cycle, then runs until the channel drops or ctx is cancelled.
func (sw *Switch) runOnce(ctx context.Context) error {
	sw.setState(StateConnecting)

	client, err := p4rtclient.Dial(ctx, sw.Address, p4rtclient.WithCredentials(sw.Options.Credentials))
	if err != nil {
		return newRpcError(err)
	}
	defer client.Close()

	stream, err := client.StreamChannel(ctx)
	if err != nil {
		return newRpcError(err)
	}
	defer stream.Close()

	sw.mu.Lock()
	sw.client = client
	sw.stream = stream
	sw.mu.Unlock()
	defer func() {
		sw.mu.Lock()
		sw.client = nil
		sw.stream = nil
		sw.mu.Unlock()
	}()

	sw.arb.reset()

	sw.setState(StateConnecting)
	if err := sw.arb.handshake(ctx, stream); err != nil {
		return err
	}

	sw.fetchCapabilities(ctx, client)

	tasks := fsconc.NewTaskGroup(ctx)
	sw.mu.Lock()
	sw.tasks = tasks
	sw.mu.Unlock()
	defer func() {
		tasks.Cancel()
		_ = tasks.Wait()
		sw.mu.Lock()
		sw.tasks = nil
		sw.mu.Unlock()
	}()

	sw.startGNMI(tasks.Context(), tasks)

	sw.setState(StateConnected)
	sw.emit(ChannelUp, sw)

	tasks.Go("ready", sw.becomeReady)

	recvErr := sw.receiveLoop(tasks.Context(), stream)

	sw.stopGNMI()
	sw.setState(StateDown)
	sw.emit(ChannelDown, sw)

	if recvErr != nil {
		return recvErr
	}
	return tasks.Wait()
}

// becomeReady runs PIPELINE_CHECK, then the ready handler, then announces
// READY. It runs as a task in the connection's TaskGroup; a pipeline-check
// or ready-handler failure is only logged, and takes the channel down only
// when Options.FailFast is set.
func (sw *Switch) becomeReady(ctx context.Context) error {
	if err := sw.checkPipeline(ctx); err != nil {
		if sw.Options.FailFast {
			return err
		}
		glog.Warningf("finsy: switch %q: pipeline check failed: %v", sw.Name, err)
		return nil
	}

	sw.setState(StateReady)
	sw.backoff.Reset()
	sw.emit(PipelineReady, sw)

	if sw.Options.ReadyHandler != nil {
		if err := sw.Options.ReadyHandler(ctx, sw); err != nil {
			glog.Warningf("finsy: switch %q: ready handler: %v", sw.Name, err)
			sw.emit(StreamErrorEvent, err)
			if sw.Options.FailFast {
				return err
			}
		}
	}

	if sw.IsPrimary() {
		sw.emit(BecamePrimary, sw)
	} else {
		sw.emit(BecameBackup, sw)
	}
	sw.emit(ChannelReady, sw)
	return nil
}

// checkPipeline implements the PIPELINE_CHECK transition: a primary with a
// configured pipeline installs it (skipping the push if the switch's
// cookie already matches, unless Options.ForceReload); a primary with no
// configured pipeline, or a backup with no local pipeline, reads whatever
// is installed; a backup with a local pipeline adopts it, warning on a
// cookie mismatch against what the switch reports.
func (sw *Switch) checkPipeline(ctx context.Context) error {
	client, _ := sw.clientAndSchema()
	if client == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}

	hasPipeline := sw.Options.hasPipeline()
	var local *p4schema.Schema
	if hasPipeline {
		var err error
		local, err = sw.loadSchema()
		if err != nil {
			return newConfigurationError("loading pipeline for %q: %w", sw.Name, err)
		}
	}

	getResp, err := client.GetForwardingPipelineConfig(ctx, &p4v1.GetForwardingPipelineConfigRequest{
		DeviceId:     sw.Options.DeviceID,
		ResponseType: p4v1.GetForwardingPipelineConfigRequest_COOKIE_ONLY,
	})
	notConfigured := err != nil && p4rtclient.IsNoPipelineConfigured(err)
	if err != nil && !notConfigured {
		return newRpcError(err)
	}
	var remoteCookie uint64
	if !notConfigured {
		remoteCookie = getResp.GetConfig().GetCookie().GetCookie()
	}

	if sw.IsPrimary() {
		if !hasPipeline {
			return sw.fetchPipeline(ctx, client)
		}
		if !notConfigured && !sw.Options.ForceReload && remoteCookie == local.Cookie() {
			sw.setSchema(local)
			return nil
		}

		action := p4v1.SetForwardingPipelineConfigRequest_RECONCILE_AND_COMMIT
		if sw.Options.ForceReload || notConfigured {
			action = p4v1.SetForwardingPipelineConfigRequest_VERIFY_AND_COMMIT
		}
		req := &p4v1.SetForwardingPipelineConfigRequest{
			DeviceId: sw.Options.DeviceID,
			Action:   action,
			Config:   local.PipelineConfig(),
		}
		sw.arb.completeRequest(req)
		if err := client.SetForwardingPipelineConfig(ctx, req); err != nil {
			return newPipelineError("installing pipeline on %q: %v", sw.Name, err)
		}
		glog.Infof("finsy: switch %q: pipeline installed: %s/%s", sw.Name, local.Name(), local.Arch())
		sw.setSchema(local)
		return nil
	}

	// Backup.
	if !hasPipeline {
		return sw.fetchPipeline(ctx, client)
	}
	sw.setSchema(local)
	if !notConfigured && remoteCookie != local.Cookie() {
		glog.Warningf("finsy: switch %q: backup pipeline cookie %#x does not match switch-reported %#x", sw.Name, local.Cookie(), remoteCookie)
	}
	return nil
}

func (sw *Switch) fetchPipeline(ctx context.Context, client *p4rtclient.Client) error {
	resp, err := client.GetForwardingPipelineConfig(ctx, &p4v1.GetForwardingPipelineConfigRequest{
		DeviceId:     sw.Options.DeviceID,
		ResponseType: p4v1.GetForwardingPipelineConfigRequest_P4INFO_AND_COOKIE,
	})
	if err != nil {
		if p4rtclient.IsNoPipelineConfigured(err) {
			return nil
		}
		return newRpcError(err)
	}
	if resp.GetConfig().GetP4Info() == nil {
		return nil
	}
	schema, err := p4schema.New(resp.GetConfig().GetP4Info(), resp.GetConfig().GetP4DeviceConfig())
	if err != nil {
		return newSchemaError(err)
	}
	sw.setSchema(schema)
	return nil
}

func (sw *Switch) loadSchema() (*p4schema.Schema, error) {
	o := sw.Options
	if len(o.P4InfoBytes) > 0 {
		info, err := p4schema.ParseP4Info(o.P4InfoBytes)
		if err != nil {
			return nil, err
		}
		return p4schema.New(info, o.P4BlobBytes)
	}
	return p4schema.LoadFile(o.P4InfoPath, o.P4BlobPath)
}

func (sw *Switch) fetchCapabilities(ctx context.Context, client *p4rtclient.Client) {
	resp, err := client.Capabilities(ctx, &p4v1.CapabilitiesRequest{})
	if err != nil {
		glog.Warningf("finsy: switch %q: Capabilities: %v", sw.Name, err)
		return
	}
	v, err := ParseApiVersion(resp.GetP4RuntimeApiVersion())
	if err != nil {
		glog.Warningf("finsy: switch %q: %v", sw.Name, err)
		return
	}
	sw.mu.Lock()
	sw.apiVersion = v
	sw.mu.Unlock()
}

func (sw *Switch) startGNMI(ctx context.Context, tasks *fsconc.TaskGroup) {
	client, err := gnmi.Dial(ctx, sw.Address, sw.Options.Credentials)
	if err != nil {
		glog.Warningf("finsy: switch %q: gnmi dial: %v", sw.Name, err)
		return
	}
	if err := sw.ports.subscribe(ctx, client); err != nil {
		glog.Warningf("finsy: switch %q: gnmi subscribe: %v", sw.Name, err)
		_ = client.Close()
		return
	}

	sw.mu.Lock()
	sw.gnmiClient = client
	sw.mu.Unlock()

	tasks.GoBackground("ports", func(ctx context.Context) error {
		return sw.ports.run(ctx, sw)
	})
}

func (sw *Switch) stopGNMI() {
	sw.ports.close()
	sw.mu.Lock()
	client := sw.gnmiClient
	sw.gnmiClient = nil
	sw.mu.Unlock()
	if client != nil {
		_ = client.Close()
	}
}

// receiveLoop drains the stream until it ends or ctx is cancelled,
// dispatching arbitration updates, packets, digests, idle timeouts, and
// stream errors as they arrive.
func (sw *Switch) receiveLoop(ctx context.Context, stream *p4rtclient.Stream) error {
	for {
		select {
		case resp, ok := <-stream.Recv():
			if !ok {
				return newStreamError(stream.Err())
			}
			if err := sw.handleStreamMessage(stream, resp); err != nil {
				return err
			}
		case <-stream.Done():
			return newStreamError(stream.Err())
		case <-ctx.Done():
			return nil
		}
	}
}

func (sw *Switch) handleStreamMessage(stream *p4rtclient.Stream, resp *p4v1.StreamMessageResponse) error {
	if arb := resp.GetArbitration(); arb != nil {
		update, err := sw.arb.update(stream, arb)
		if err != nil {
			return err
		}
		if update.becamePrimary {
			sw.emit(BecamePrimary, sw)
		} else if update.becameBackup {
			sw.emit(BecameBackup, sw)
		}
		return nil
	}

	schema := sw.Schema()
	decoded, err := p4entity.DecodeStream(resp, schema)
	if err != nil {
		glog.Warningf("finsy: switch %q: %v", sw.Name, err)
		return nil
	}

	switch v := decoded.(type) {
	case p4entity.PacketIn:
		sw.packets.dispatch(v)
	case p4entity.DigestList:
		sw.digests.dispatch(v)
	case p4entity.IdleTimeoutNotification:
		sw.idleTimes.dispatch(v)
	case *p4v1.StreamMessageResponse_Error:
		sw.emit(StreamErrorEvent, v)
	}
	return nil
}

// ReadPackets returns a channel of incoming packet-in messages. Call the
// returned cancel function to stop receiving and release the channel.
func (sw *Switch) ReadPackets(ctx context.Context) (<-chan p4entity.PacketIn, func()) {
	return sw.packets.add(defaultQueueSize)
}

// ReadDigests returns a channel of incoming digest lists.
func (sw *Switch) ReadDigests(ctx context.Context) (<-chan p4entity.DigestList, func()) {
	return sw.digests.add(defaultQueueSize)
}

// ReadIdleTimeouts returns a channel of incoming idle-timeout notifications.
func (sw *Switch) ReadIdleTimeouts(ctx context.Context) (<-chan p4entity.IdleTimeoutNotification, func()) {
	return sw.idleTimes.add(defaultQueueSize)
}

// SendPacketOut injects a data-plane packet.
func (sw *Switch) SendPacketOut(packet p4entity.PacketOut) error {
	stream := sw.streamRef()
	if stream == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}
	req, err := packet.EncodeUpdate(sw.Schema())
	if err != nil {
		return newEncodingError(err)
	}
	return stream.Send(req)
}

// AckDigestList acknowledges a received DigestList so the switch stops
// retransmitting it.
func (sw *Switch) AckDigestList(list p4entity.DigestList) error {
	stream := sw.streamRef()
	if stream == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}
	req, err := list.Ack().EncodeUpdate(sw.Schema())
	if err != nil {
		return newEncodingError(err)
	}
	return stream.Send(req)
}

// Write applies a batch of tagged entity updates (see p4entity.Insert/
// Modify/Delete) in one WriteRequest.
func (sw *Switch) Write(ctx context.Context, ops ...p4entity.Tagged) error {
	client, schema := sw.clientAndSchema()
	if client == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}
	updates, err := p4entity.EncodeUpdates(schema, ops)
	if err != nil {
		return newEncodingError(err)
	}

	req := &p4v1.WriteRequest{
		DeviceId:  sw.Options.DeviceID,
		Updates:   updates,
		Atomicity: p4v1.WriteRequest_CONTINUE_ON_ERROR,
	}
	sw.arb.completeRequest(req)
	if err := client.Write(ctx, req); err != nil {
		return newClientError(err)
	}
	return nil
}

// Insert writes entities with the INSERT operation.
func (sw *Switch) Insert(ctx context.Context, entities ...p4entity.Entity) error {
	return sw.Write(ctx, tagAll(p4entity.Insert, entities)...)
}

// Modify writes entities with the MODIFY operation.
func (sw *Switch) Modify(ctx context.Context, entities ...p4entity.Entity) error {
	return sw.Write(ctx, tagAll(p4entity.Modify, entities)...)
}

// Delete writes entities with the DELETE operation.
func (sw *Switch) Delete(ctx context.Context, entities ...p4entity.Entity) error {
	return sw.Write(ctx, tagAll(p4entity.Delete, entities)...)
}

func tagAll(tag func(p4entity.Entity) p4entity.Tagged, entities []p4entity.Entity) []p4entity.Tagged {
	out := make([]p4entity.Tagged, len(entities))
	for i, e := range entities {
		out[i] = tag(e)
	}
	return out
}

// Read issues a ReadRequest for the given wire entities and returns every
// decoded entity the switch reports.
func (sw *Switch) Read(ctx context.Context, entities ...*p4v1.Entity) ([]any, error) {
	client, schema := sw.clientAndSchema()
	if client == nil {
		return nil, newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}

	req := &p4v1.ReadRequest{DeviceId: sw.Options.DeviceID, Entities: entities}
	sw.arb.completeRequest(req)

	readStream, err := client.Read(ctx, req)
	if err != nil {
		return nil, newClientError(err)
	}

	var out []any
	for {
		resp, err := readStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, newClientError(err)
		}
		for _, e := range resp.GetEntities() {
			decoded, err := p4entity.DecodeEntity(e, schema)
			if err != nil {
				return out, newSchemaError(err)
			}
			out = append(out, decoded)
		}
	}
	return out, nil
}

// DeleteAll reads back every table entry, multicast group, and clone
// session currently programmed on the switch and deletes them all in a
// single Write, then resets every table's default action back to its
// P4Info default and deletes all digest configs. The latter two steps
// are not wildcard-readable, so they run independently of the first.
func (sw *Switch) DeleteAll(ctx context.Context) error {
	if err := sw.deleteAllWildcard(ctx); err != nil {
		return err
	}
	if err := sw.resetDefaultTableEntries(ctx); err != nil {
		return err
	}
	return sw.deleteAllDigests(ctx)
}

// deleteAllWildcard reads back every table entry, multicast group, and
// clone session currently programmed on the switch, and deletes them all
// in a single Write. It is a no-op if nothing is programmed.
func (sw *Switch) deleteAllWildcard(ctx context.Context) error {
	client, _ := sw.clientAndSchema()
	if client == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}

	req := &p4v1.ReadRequest{DeviceId: sw.Options.DeviceID, Entities: wildcardDeleteAllEntities()}
	sw.arb.completeRequest(req)

	readStream, err := client.Read(ctx, req)
	if err != nil {
		return newClientError(err)
	}

	var deletes []*p4v1.Update
	for {
		resp, err := readStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return newClientError(err)
		}
		for _, e := range resp.GetEntities() {
			deletes = append(deletes, &p4v1.Update{Type: p4v1.Update_DELETE, Entity: e})
		}
	}
	if len(deletes) == 0 {
		return nil
	}

	writeReq := &p4v1.WriteRequest{
		DeviceId:  sw.Options.DeviceID,
		Updates:   deletes,
		Atomicity: p4v1.WriteRequest_CONTINUE_ON_ERROR,
	}
	sw.arb.completeRequest(writeReq)
	if err := client.Write(ctx, writeReq); err != nil {
		if p4rtclient.IsNotFoundOnly(err) {
			return nil
		}
		return newClientError(err)
	}
	return nil
}

// resetDefaultTableEntries modifies every table's default action back to
// its P4Info default, skipping tables with a const default action or an
// action-profile implementation, neither of which a controller may set.
func (sw *Switch) resetDefaultTableEntries(ctx context.Context) error {
	_, schema := sw.clientAndSchema()
	if schema == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}

	entities := defaultTableEntries(schema)
	if len(entities) == 0 {
		return nil
	}
	return sw.Modify(ctx, entities...)
}

// defaultTableEntries lists the default-action reset for every table that
// a controller is allowed to modify: tables with a const default action
// or an action-profile implementation are skipped, since neither accepts
// a controller-set default action.
func defaultTableEntries(schema *p4schema.Schema) []p4entity.Entity {
	var entities []p4entity.Entity
	for _, table := range schema.Tables().All() {
		if table.ConstDefaultAction() != 0 || table.ActionProfile() != nil {
			continue
		}
		entities = append(entities, p4entity.TableEntry{Table: table.Alias(), IsDefaultAction: true})
	}
	return entities
}

// deleteAllDigests deletes every digest's config, tolerating digests that
// were never configured in the first place.
func (sw *Switch) deleteAllDigests(ctx context.Context) error {
	_, schema := sw.clientAndSchema()
	if schema == nil {
		return newStreamError(fmt.Errorf("switch %q has no active connection", sw.Name))
	}

	entities := allDigestEntries(schema)
	if len(entities) == 0 {
		return nil
	}
	if err := sw.Delete(ctx, entities...); err != nil {
		if p4rtclient.IsNotFoundOnly(err) {
			return nil
		}
		return err
	}
	return nil
}

// allDigestEntries lists every digest's config for deletion. P4Runtime
// has no wildcard read for DigestEntry, so DeleteAll must enumerate the
// schema's digests instead of reading back what's configured.
func allDigestEntries(schema *p4schema.Schema) []p4entity.Entity {
	var entities []p4entity.Entity
	for _, digest := range schema.Digests().All() {
		entities = append(entities, p4entity.DigestEntry{Digest: digest.Alias()})
	}
	return entities
}

// wildcardDeleteAllEntities builds the wildcard Entity messages DeleteAll
// reads back: every table entry (table_id 0 matches all tables), every
// multicast group, and every clone session.
func wildcardDeleteAllEntities() []*p4v1.Entity {
	return []*p4v1.Entity{
		{Entity: &p4v1.Entity_TableEntry{TableEntry: &p4v1.TableEntry{}}},
		{Entity: &p4v1.Entity_PacketReplicationEngineEntry{
			PacketReplicationEngineEntry: &p4v1.PacketReplicationEngineEntry{
				Type: &p4v1.PacketReplicationEngineEntry_MulticastGroupEntry{
					MulticastGroupEntry: &p4v1.MulticastGroupEntry{},
				},
			},
		}},
		{Entity: &p4v1.Entity_PacketReplicationEngineEntry{
			PacketReplicationEngineEntry: &p4v1.PacketReplicationEngineEntry{
				Type: &p4v1.PacketReplicationEngineEntry_CloneSessionEntry{
					CloneSessionEntry: &p4v1.CloneSessionEntry{},
				},
			},
		}},
	}
}
