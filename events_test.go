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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwitchEventString(t *testing.T) {
	assert.Equal(t, "channel_up", ChannelUp.String())
	assert.Equal(t, "channel_ready", ChannelReady.String())
	assert.Equal(t, "stream_error", StreamErrorEvent.String())
	assert.Equal(t, "port_up", PortUp.String())
	assert.Equal(t, "unknown", SwitchEvent(999).String())
}
