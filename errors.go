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

import "fmt"

// ConfigurationError wraps a bad SwitchOptions value,
// an unreadable P4Info file, or a p4info/p4blob mismatch detected at load.
type ConfigurationError struct{ Err error }

func (e *ConfigurationError) Error() string { return fmt.Sprintf("finsy: configuration: %v", e.Err) }
func (e *ConfigurationError) Unwrap() error { return e.Err }

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Err: fmt.Errorf(format, args...)}
}

// SchemaError wraps an unknown table/action/field/metadata name or id, a
// value out of range for its declared bitwidth, a missing required
// parameter, or a type mismatch against the loaded P4Info.
type SchemaError struct{ Err error }

func (e *SchemaError) Error() string { return fmt.Sprintf("finsy: schema: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

func newSchemaError(err error) *SchemaError { return &SchemaError{Err: err} }

// EncodingError wraps a failure translating between a typed entity and its
// wire form: an invalid don't-care mask, a malformed LPM prefix, or an
// invalid weighted-action composition.
type EncodingError struct{ Err error }

func (e *EncodingError) Error() string { return fmt.Sprintf("finsy: encoding: %v", e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }

func newEncodingError(err error) *EncodingError { return &EncodingError{Err: err} }

// RpcError wraps a failed unary P4Runtime or gNMI RPC, carrying the gRPC
// canonical status code and trailer details.
type RpcError struct{ Err error }

func (e *RpcError) Error() string { return fmt.Sprintf("finsy: rpc: %v", e.Err) }
func (e *RpcError) Unwrap() error { return e.Err }

func newRpcError(err error) *RpcError { return &RpcError{Err: err} }

// ClientError wraps a Write RPC whose per-update status list identifies
// which update(s) failed. See p4rtclient.IsNotFoundOnly/IsElectionIDUsed to
// classify the underlying failure.
type ClientError struct{ Err error }

func (e *ClientError) Error() string { return fmt.Sprintf("finsy: write: %v", e.Err) }
func (e *ClientError) Unwrap() error { return e.Err }

func newClientError(err error) *ClientError { return &ClientError{Err: err} }

// PipelineError reports that SetForwardingPipelineConfig failed
// verification during the switch's PIPELINE_CHECK transition.
type PipelineError struct{ Err error }

func (e *PipelineError) Error() string { return fmt.Sprintf("finsy: pipeline: %v", e.Err) }
func (e *PipelineError) Unwrap() error { return e.Err }

func newPipelineError(format string, args ...any) *PipelineError {
	return &PipelineError{Err: fmt.Errorf(format, args...)}
}

// StreamError reports a stream-level error response from the switch, or a
// transport disconnect while the switch was READY. It triggers supervisor
// recovery (a reconnect) unless the owning SwitchOptions set FailFast.
type StreamError struct{ Err error }

func (e *StreamError) Error() string { return fmt.Sprintf("finsy: stream: %v", e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

func newStreamError(err error) *StreamError { return &StreamError{Err: err} }

// Cancelled reports that a task was cancelled by its owning Switch or
// Controller. It is a benign terminator, not a failure to be surfaced to
// the user handler.
type Cancelled struct{ Err error }

func (e *Cancelled) Error() string { return fmt.Sprintf("finsy: cancelled: %v", e.Err) }
func (e *Cancelled) Unwrap() error { return e.Err }
