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

	"github.com/byllyfish/finsy/fscreds"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/protobuf/types/known/anypb"
)

const defaultInitialElectionID = 10

// ReadyHandler is invoked each time a Switch's control channel reaches
// READY. It runs as the root of a task group scoped to that READY epoch:
// any additional work the handler needs to keep running after it returns
// should be spawned with Switch.CreateTask rather than blocking here.
type ReadyHandler func(ctx context.Context, sw *Switch) error

// SwitchOptions is a Switch's immutable configuration. Build one with
// NewSwitchOptions and a list of With... options; a SwitchOptions value may
// be shared by multiple Switches.
type SwitchOptions struct {
	// P4InfoPath/P4BlobPath name files to load the pipeline from; set
	// P4InfoBytes/P4BlobBytes instead to supply an in-memory pipeline.
	P4InfoPath  string
	P4InfoBytes []byte
	P4BlobPath  string
	P4BlobBytes []byte

	// ForceReload re-pushes the configured pipeline during PIPELINE_CHECK
	// even if the switch's reported cookie already matches.
	ForceReload bool

	DeviceID          uint64
	InitialElectionID *p4v1.Uint128

	Credentials fscreds.Bundle

	// RoleName and RoleConfig configure a P4Runtime role for arbitration;
	// the empty RoleName is the default, full-access role.
	RoleName   string
	RoleConfig *anypb.Any

	ReadyHandler ReadyHandler

	// FailFast propagates a programming error (SchemaError, EncodingError,
	// ConfigurationError) raised from the ready handler out of the Switch
	// (and, under a Controller, out of the Controller) instead of logging
	// it and reconnecting.
	FailFast bool

	// Stash holds arbitrary application data, copied onto every Switch
	// built from this SwitchOptions.
	Stash map[string]any
}

// SwitchOption configures a SwitchOptions value built by NewSwitchOptions.
type SwitchOption func(*SwitchOptions)

// NewSwitchOptions builds a SwitchOptions from the given options, starting
// from finsy's defaults (device_id=1, initial_election_id=10).
func NewSwitchOptions(opts ...SwitchOption) SwitchOptions {
	o := SwitchOptions{
		DeviceID:          1,
		InitialElectionID: &p4v1.Uint128{Low: defaultInitialElectionID},
		Stash:             make(map[string]any),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// With applies additional options to a copy of o, leaving o untouched —
// the Go equivalent of the teacher's dataclass `__call__` override pattern.
func (o SwitchOptions) With(opts ...SwitchOption) SwitchOptions {
	clone := o
	clone.Stash = make(map[string]any, len(o.Stash))
	for k, v := range o.Stash {
		clone.Stash[k] = v
	}
	for _, opt := range opts {
		opt(&clone)
	}
	return clone
}

// WithP4InfoFile configures the pipeline to load from files on disk.
// blobPath may be empty if the target doesn't require a compiled blob.
func WithP4InfoFile(p4infoPath, blobPath string) SwitchOption {
	return func(o *SwitchOptions) {
		o.P4InfoPath = p4infoPath
		o.P4BlobPath = blobPath
	}
}

// WithP4InfoBytes configures the pipeline from in-memory P4Info/blob bytes.
func WithP4InfoBytes(p4info, blob []byte) SwitchOption {
	return func(o *SwitchOptions) {
		o.P4InfoBytes = p4info
		o.P4BlobBytes = blob
	}
}

// WithForceReload makes PIPELINE_CHECK re-push the configured pipeline
// even when the switch's cookie already matches.
func WithForceReload(force bool) SwitchOption {
	return func(o *SwitchOptions) { o.ForceReload = force }
}

// WithDeviceID sets the P4Runtime device ID (default 1).
func WithDeviceID(id uint64) SwitchOption {
	return func(o *SwitchOptions) { o.DeviceID = id }
}

// WithInitialElectionID sets the starting election ID (default 10). Use
// WithInitialElectionID128 if the high 64 bits are significant.
func WithInitialElectionID(low uint64) SwitchOption {
	return func(o *SwitchOptions) { o.InitialElectionID = &p4v1.Uint128{Low: low} }
}

// WithInitialElectionID128 sets the starting election ID from a full
// 128-bit value.
func WithInitialElectionID128(high, low uint64) SwitchOption {
	return func(o *SwitchOptions) { o.InitialElectionID = &p4v1.Uint128{High: high, Low: low} }
}

// WithCredentials sets the TLS credentials bundle used to dial the switch's
// P4Runtime and gNMI services.
func WithCredentials(creds fscreds.Bundle) SwitchOption {
	return func(o *SwitchOptions) { o.Credentials = creds }
}

// WithRole configures the P4Runtime role used for arbitration. The empty
// name requests the default, full-access role.
func WithRole(name string, config *anypb.Any) SwitchOption {
	return func(o *SwitchOptions) {
		o.RoleName = name
		o.RoleConfig = config
	}
}

// WithReadyHandler sets the function run each time the switch reaches READY.
func WithReadyHandler(handler ReadyHandler) SwitchOption {
	return func(o *SwitchOptions) { o.ReadyHandler = handler }
}

// WithFailFast controls whether a programming error raised from the ready
// handler propagates out of the Switch instead of triggering a reconnect.
func WithFailFast(failFast bool) SwitchOption {
	return func(o *SwitchOptions) { o.FailFast = failFast }
}

// WithStash sets a key in the options' stash, copied onto every Switch
// built from this SwitchOptions.
func WithStash(key string, value any) SwitchOption {
	return func(o *SwitchOptions) {
		if o.Stash == nil {
			o.Stash = make(map[string]any)
		}
		o.Stash[key] = value
	}
}

func (o SwitchOptions) hasPipeline() bool {
	return o.P4InfoPath != "" || len(o.P4InfoBytes) > 0
}

func (o SwitchOptions) role() *p4v1.Role {
	if o.RoleName == "" && o.RoleConfig == nil {
		return nil
	}
	return &p4v1.Role{Name: o.RoleName, Config: o.RoleConfig}
}
