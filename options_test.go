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

func TestNewSwitchOptionsDefaults(t *testing.T) {
	o := NewSwitchOptions()
	assert.Equal(t, uint64(1), o.DeviceID)
	assert.Equal(t, uint64(defaultInitialElectionID), o.InitialElectionID.GetLow())
	assert.False(t, o.hasPipeline())
	assert.Nil(t, o.role())
}

func TestSwitchOptionsWithDoesNotMutateOriginal(t *testing.T) {
	base := NewSwitchOptions(WithDeviceID(1))
	derived := base.With(WithDeviceID(2), WithStash("k", "v"))

	assert.Equal(t, uint64(1), base.DeviceID)
	assert.Equal(t, uint64(2), derived.DeviceID)

	_, baseHas := base.Stash["k"]
	assert.False(t, baseHas)
	v, derivedHas := derived.Stash["k"]
	assert.True(t, derivedHas)
	assert.Equal(t, "v", v)
}

func TestWithP4InfoFileSetsHasPipeline(t *testing.T) {
	o := NewSwitchOptions(WithP4InfoFile("p4info.txt", ""))
	assert.True(t, o.hasPipeline())
}

func TestWithRoleBuildsRole(t *testing.T) {
	o := NewSwitchOptions(WithRole("reader", nil))
	role := o.role()
	if assert.NotNil(t, role) {
		assert.Equal(t, "reader", role.GetName())
	}
}

func TestWithInitialElectionID128(t *testing.T) {
	o := NewSwitchOptions(WithInitialElectionID128(7, 42))
	assert.Equal(t, uint64(7), o.InitialElectionID.GetHigh())
	assert.Equal(t, uint64(42), o.InitialElectionID.GetLow())
}
