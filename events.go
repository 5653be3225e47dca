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

// SwitchEvent names one of the lifecycle events a Switch or Controller
// emits on its fsevent.Emitter. User code observes these with Switch.On or
// Controller.On rather than polling connection state.
type SwitchEvent int

const (
	// ChannelUp fires once the gRPC channel and StreamChannel are open.
	ChannelUp SwitchEvent = iota
	// ChannelReady fires once arbitration has completed (primary or backup).
	ChannelReady
	// ChannelDown fires when the StreamChannel closes, before reconnecting.
	ChannelDown
	// BecamePrimary fires when this client is granted primary status.
	BecamePrimary
	// BecameBackup fires when this client is demoted to (or starts as) backup.
	BecameBackup
	// PipelineReady fires once PIPELINE_CHECK completes successfully.
	PipelineReady
	// StreamErrorEvent fires on a stream-level error response from the switch.
	StreamErrorEvent
	// PortUp fires when a tracked interface's oper-status transitions to UP.
	PortUp
	// PortDown fires when a tracked interface's oper-status transitions away from UP.
	PortDown
	// ControllerEnter fires when a Controller starts supervising a Switch.
	ControllerEnter
	// ControllerLeave fires when a Controller stops supervising a Switch.
	ControllerLeave
)

func (e SwitchEvent) String() string {
	switch e {
	case ChannelUp:
		return "channel_up"
	case ChannelReady:
		return "channel_ready"
	case ChannelDown:
		return "channel_down"
	case BecamePrimary:
		return "became_primary"
	case BecameBackup:
		return "became_backup"
	case PipelineReady:
		return "pipeline_ready"
	case StreamErrorEvent:
		return "stream_error"
	case PortUp:
		return "port_up"
	case PortDown:
		return "port_down"
	case ControllerEnter:
		return "controller_enter"
	case ControllerLeave:
		return "controller_leave"
	default:
		return "unknown"
	}
}
