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
	"errors"
	"testing"

	"github.com/byllyfish/finsy/p4entity"
	"github.com/byllyfish/finsy/p4schema"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "down", StateDown.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", ConnectionState(99).String())
}

func TestNewSwitchDefaults(t *testing.T) {
	sw := NewSwitch("sw1", "127.0.0.1:9559", NewSwitchOptions())

	assert.Equal(t, "sw1", sw.Name)
	assert.Equal(t, StateDown, sw.State())
	assert.False(t, sw.Schema().IsConfigured())
	assert.False(t, sw.IsPrimary())
	require.NotNil(t, sw.ElectionID())
}

func TestSwitchStash(t *testing.T) {
	sw := NewSwitch("sw1", "127.0.0.1:9559", NewSwitchOptions(WithStash("k", 1)))

	v, ok := sw.Stash("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	sw.SetStash("k2", "v2")
	v2, ok := sw.Stash("k2")
	require.True(t, ok)
	assert.Equal(t, "v2", v2)

	_, ok = sw.Stash("missing")
	assert.False(t, ok)
}

func TestSwitchStashIsolatedPerSwitch(t *testing.T) {
	opts := NewSwitchOptions(WithStash("k", "base"))
	sw1 := NewSwitch("sw1", "addr1", opts)
	sw2 := NewSwitch("sw2", "addr2", opts)

	sw1.SetStash("k", "sw1-value")

	v, _ := sw2.Stash("k")
	assert.Equal(t, "base", v)
}

func TestIsProgrammingError(t *testing.T) {
	assert.True(t, isProgrammingError(newConfigurationError("bad: %w", errors.New("x"))))
	assert.True(t, isProgrammingError(newSchemaError(errors.New("x"))))
	assert.True(t, isProgrammingError(newEncodingError(errors.New("x"))))
	assert.True(t, isProgrammingError(newPipelineError("bad: %w", errors.New("x"))))
	assert.False(t, isProgrammingError(newRpcError(errors.New("x"))))
	assert.False(t, isProgrammingError(newStreamError(errors.New("x"))))
}

func TestTagAll(t *testing.T) {
	entities := []p4entity.Entity{fakeEntity{}, fakeEntity{}}
	tagged := tagAll(p4entity.Insert, entities)

	require.Len(t, tagged, 2)
	for _, tag := range tagged {
		assert.Equal(t, p4v1.Update_INSERT, tag.Op)
	}
}

func TestWildcardDeleteAllEntities(t *testing.T) {
	entities := wildcardDeleteAllEntities()
	require.Len(t, entities, 3)

	_, isTable := entities[0].GetEntity().(*p4v1.Entity_TableEntry)
	assert.True(t, isTable)
}

type fakeEntity struct{}

func (fakeEntity) EncodeEntity(*p4schema.Schema) (*p4v1.Entity, error) { return nil, nil }

func deleteAllTestSchema(t *testing.T) *p4schema.Schema {
	t.Helper()
	info := &p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: 1, Name: "ingress.forward", Alias: "forward"},
			},
			{
				Preamble:            &p4configv1.Preamble{Id: 2, Name: "ingress.fixed", Alias: "fixed"},
				ConstDefaultActionId: 10,
			},
			{
				Preamble:         &p4configv1.Preamble{Id: 3, Name: "ingress.wcmp", Alias: "wcmp"},
				ImplementationId: 50,
			},
		},
		Actions: []*p4configv1.Action{
			{Preamble: &p4configv1.Preamble{Id: 10, Name: "ingress.drop", Alias: "drop"}},
		},
		ActionProfiles: []*p4configv1.ActionProfile{
			{Preamble: &p4configv1.Preamble{Id: 50, Name: "ingress.wcmp_selector", Alias: "wcmp_selector"}},
		},
		Digests: []*p4configv1.Digest{
			{Preamble: &p4configv1.Preamble{Id: 200, Name: "ingress.mac_learn_digest", Alias: "mac_learn_digest"}},
		},
	}
	s, err := p4schema.New(info, nil)
	require.NoError(t, err)
	return s
}

func TestDefaultTableEntriesSkipsConstAndIndirectTables(t *testing.T) {
	schema := deleteAllTestSchema(t)

	entities := defaultTableEntries(schema)
	require.Len(t, entities, 1)

	entry, ok := entities[0].(p4entity.TableEntry)
	require.True(t, ok)
	assert.Equal(t, "forward", entry.Table)
	assert.True(t, entry.IsDefaultAction)
	assert.Nil(t, entry.Action)
}

func TestAllDigestEntriesListsEverySchemaDigest(t *testing.T) {
	schema := deleteAllTestSchema(t)

	entities := allDigestEntries(schema)
	require.Len(t, entities, 1)

	entry, ok := entities[0].(p4entity.DigestEntry)
	require.True(t, ok)
	assert.Equal(t, "mac_learn_digest", entry.Digest)
}
