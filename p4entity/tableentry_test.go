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

func indirectSchema(t *testing.T) *p4schema.Schema {
	t.Helper()
	info := &p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: 1, Name: "ingress.wcmp", Alias: "wcmp"},
				MatchFields: []*p4configv1.MatchField{
					{Id: 1, Name: "hdr.ipv4.dst", Bitwidth: 32, MatchType: p4configv1.MatchField_LPM},
				},
				ActionRefs:       []*p4configv1.ActionRef{{Id: 10}},
				ImplementationId: 50,
				Size:             1024,
			},
		},
		Actions: []*p4configv1.Action{
			{
				Preamble: &p4configv1.Preamble{Id: 10, Name: "ingress.set_port", Alias: "set_port"},
				Params:   []*p4configv1.Action_Param{{Id: 1, Name: "port", Bitwidth: 9}},
			},
		},
		ActionProfiles: []*p4configv1.ActionProfile{
			{Preamble: &p4configv1.Preamble{Id: 50, Name: "ingress.wcmp_selector", Alias: "wcmp_selector"}},
		},
	}
	s, err := p4schema.New(info, nil)
	require.NoError(t, err)
	return s
}

func TestTableActionAutoPromotesOnIndirectTable(t *testing.T) {
	schema := indirectSchema(t)

	entry := TableEntry{
		Table:  "wcmp",
		Match:  TableMatch{"hdr.ipv4.dst": "10.0.0.0/24"},
		Action: Action("set_port", map[string]any{"port": 1}),
	}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)

	te := msg.GetTableEntry()
	require.NotNil(t, te)

	set, ok := te.GetAction().GetType().(*p4v1.TableAction_ActionProfileActionSet)
	require.True(t, ok, "expected promotion to ActionProfileActionSet, got %T", te.GetAction().GetType())
	require.Len(t, set.ActionProfileActionSet.GetActionProfileActions(), 1)

	promoted := set.ActionProfileActionSet.GetActionProfileActions()[0]
	require.Equal(t, int32(1), promoted.GetWeight())
	require.Empty(t, promoted.GetWatchPort())
	require.Equal(t, uint32(10), promoted.GetAction().GetActionId())
}

func TestIndirectActionUnaffectedByAutoPromotion(t *testing.T) {
	schema := indirectSchema(t)

	entry := TableEntry{
		Table:  "wcmp",
		Match:  TableMatch{"hdr.ipv4.dst": "10.0.0.0/24"},
		Action: IndirectAction{GroupID: 7},
	}

	msg, err := entry.EncodeEntity(schema)
	require.NoError(t, err)

	_, ok := msg.GetTableEntry().GetAction().GetType().(*p4v1.TableAction_ActionProfileGroupId)
	require.True(t, ok)
}
