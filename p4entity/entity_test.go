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

package p4entity

import (
	"testing"

	"github.com/byllyfish/finsy/p4schema"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *p4schema.Schema {
	t.Helper()
	info := &p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: 1, Name: "ingress.forward", Alias: "forward"},
				MatchFields: []*p4configv1.MatchField{
					{Id: 1, Name: "hdr.ipv4.dst", Bitwidth: 32, MatchType: p4configv1.MatchField_LPM},
				},
				ActionRefs: []*p4configv1.ActionRef{{Id: 10}},
				Size:       1024,
			},
		},
		Actions: []*p4configv1.Action{
			{
				Preamble: &p4configv1.Preamble{Id: 10, Name: "ingress.set_port", Alias: "set_port"},
				Params:   []*p4configv1.Action_Param{{Id: 1, Name: "port", Bitwidth: 9}},
			},
		},
		Counters: []*p4configv1.Counter{
			{Preamble: &p4configv1.Preamble{Id: 100, Name: "ingress.hits", Alias: "hits"}, Size: 1024},
		},
		Registers: []*p4configv1.Register{
			{
				Preamble: &p4configv1.Preamble{Id: 200, Name: "ingress.seen", Alias: "seen"},
				Size:     256,
				TypeSpec: &p4configv1.P4DataTypeSpec{
					Type: &p4configv1.P4DataTypeSpec_Bitstring{
						Bitstring: &p4configv1.P4BitstringLikeTypeSpec{
							Type: &p4configv1.P4BitstringLikeTypeSpec_Bit{
								Bit: &p4configv1.P4BitTypeSpec{Bitwidth: 16},
							},
						},
					},
				},
			},
		},
	}
	s, err := p4schema.New(info, nil)
	require.NoError(t, err)
	return s
}

func TestTableEntryEncodeDecode(t *testing.T) {
	schema := testSchema(t)

	entry := TableEntry{
		Table:  "forward",
		Match:  TableMatch{"hdr.ipv4.dst": "10.0.0.0/24"},
		Action: Action("set_port", map[string]any{"port": 1}),
	}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)
	te := msg.GetTableEntry()
	require.NotNil(t, te)
	require.Equal(t, uint32(1), te.GetTableId())

	decoded, err := DecodeTableEntry(te, schema)
	require.NoError(t, err)
	require.Equal(t, "forward", decoded.Table)

	action, ok := decoded.Action.(TableAction)
	require.True(t, ok)
	require.Equal(t, "set_port", action.Name)
	require.EqualValues(t, uint64(1), action.Args["port"])
}

func TestTaggedEncodeUpdate(t *testing.T) {
	schema := testSchema(t)
	entry := TableEntry{Table: "forward", Match: TableMatch{"hdr.ipv4.dst": "10.0.0.0/24"}}

	update, err := Insert(entry).EncodeUpdate(schema)
	require.NoError(t, err)
	require.Equal(t, p4v1.Update_INSERT, update.GetType())
}

func TestModifyOnlyRejectsInsert(t *testing.T) {
	schema := testSchema(t)
	entry := CounterEntry{Counter: "hits"}

	_, err := Insert(entry).EncodeUpdate(schema)
	require.Error(t, err)

	_, err = Modify(entry).EncodeUpdate(schema)
	require.NoError(t, err)
}

func TestCounterEntryRoundTrip(t *testing.T) {
	schema := testSchema(t)
	entry := CounterEntry{Counter: "hits", Data: &CounterData{PacketCount: 5}}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)

	decoded, err := DecodeEntity(msg, schema)
	require.NoError(t, err)
	ce, ok := decoded.(CounterEntry)
	require.True(t, ok)
	require.Equal(t, "hits", ce.Counter)
	require.Equal(t, int64(5), ce.Data.PacketCount)
}

func TestRegisterEntryRoundTrip(t *testing.T) {
	schema := testSchema(t)
	idx := int64(3)
	entry := RegisterEntry{Register: "seen", Index: &idx, Data: 42}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)

	decoded, err := DecodeRegisterEntry(msg.GetRegisterEntry(), schema)
	require.NoError(t, err)
	require.Equal(t, "seen", decoded.Register)
	require.EqualValues(t, 42, decoded.Data)
	require.Equal(t, idx, *decoded.Index)
}

func TestMulticastGroupEntryRoundTrip(t *testing.T) {
	schema := testSchema(t)
	entry := MulticastGroupEntry{
		MulticastGroupID: 7,
		Replicas:         []Replica{{EgressPort: 1}, {EgressPort: 2, Instance: 1}},
	}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)

	decoded, err := DecodeEntity(msg, schema)
	require.NoError(t, err)
	mge, ok := decoded.(MulticastGroupEntry)
	require.True(t, ok)
	require.Equal(t, uint32(7), mge.MulticastGroupID)
	require.Len(t, mge.Replicas, 2)
}
