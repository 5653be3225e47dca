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

	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortUp(t *testing.T) {
	assert.True(t, Port{OperStatus: OperStatusUp}.Up())
	assert.False(t, Port{OperStatus: OperStatusDown}.Up())
	assert.False(t, Port{OperStatus: OperStatusUnknown}.Up())
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "", stringValue(nil))
	assert.Equal(t, "UP", stringValue(&gnmipb.TypedValue{Value: &gnmipb.TypedValue_StringVal{StringVal: "UP"}}))
}

func TestUintValue(t *testing.T) {
	assert.Equal(t, uint64(0), uintValue(nil))
	assert.Equal(t, uint64(7), uintValue(&gnmipb.TypedValue{Value: &gnmipb.TypedValue_UintVal{UintVal: 7}}))
	assert.Equal(t, uint64(7), uintValue(&gnmipb.TypedValue{Value: &gnmipb.TypedValue_IntVal{IntVal: 7}}))
}

func TestOperStatusPath(t *testing.T) {
	path, err := operStatusPath("eth0")
	require.NoError(t, err)
	name, ok := path.KeyByName("name")
	require.True(t, ok)
	assert.Equal(t, "eth0", name)
	assert.Equal(t, "oper-status", path.Last())
}

func TestPortListGetAndAll(t *testing.T) {
	pl := newPortList()
	pl.ports["eth0"] = &Port{Name: "eth0", OperStatus: OperStatusUp}

	p, ok := pl.Get("eth0")
	require.True(t, ok)
	assert.True(t, p.Up())

	_, ok = pl.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 1, pl.Len())
	assert.Len(t, pl.All(), 1)
}

func TestPortListUpdateOperStatusTransitionsWithoutSwitch(t *testing.T) {
	pl := newPortList()
	pl.updateOperStatus("eth0", OperStatusDown, nil)

	p, ok := pl.Get("eth0")
	require.True(t, ok)
	assert.False(t, p.Up())
}
