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

package p4testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleSchema(t *testing.T) {
	b := NewBuilder()
	b.Action("set_port", Param("port", 9))
	b.Table("forward", 1024, LPMMatch("hdr.ipv4.dst", 32)).Actions("set_port")
	b.Counter("hits", 1024)
	b.BitstringRegister("seen", 256, 16)
	b.Digest("events", 48)

	schema, err := b.Build()
	require.NoError(t, err)

	table, ok := schema.Tables().ByName("forward")
	require.True(t, ok)
	assert.Equal(t, int64(1024), table.Size())
	require.Len(t, table.ActionRefs(), 1)

	action, ok := schema.Actions().ByName("set_port")
	require.True(t, ok)
	assert.Equal(t, table.ActionRefs()[0].Action().ID(), action.ID())

	_, ok = schema.Counters().ByName("hits")
	assert.True(t, ok)

	reg, ok := schema.Registers().ByName("seen")
	require.True(t, ok)
	assert.Equal(t, int32(16), reg.TypeSpec().Bitwidth)

	_, ok = schema.Digests().ByName("events")
	assert.True(t, ok)
}

func TestUnknownActionAliasPanics(t *testing.T) {
	b := NewBuilder()
	b.Table("forward", 1024).Actions("missing")

	assert.Panics(t, func() {
		_, _ = b.Build()
	})
}
