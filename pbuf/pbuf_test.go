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

package pbuf

import (
	"strings"
	"testing"

	"github.com/byllyfish/finsy/p4schema"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/assert"
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
				ActionRefs: []*p4configv1.ActionRef{{Id: 1}},
			},
		},
		Actions: []*p4configv1.Action{
			{
				Preamble: &p4configv1.Preamble{Id: 1, Name: "ingress.set_port", Alias: "set_port"},
				Params: []*p4configv1.Action_Param{
					{Id: 1, Name: "port", Bitwidth: 9},
				},
			},
		},
	}
	schema, err := p4schema.New(info, nil)
	require.NoError(t, err)
	return schema
}

func TestToTextAndJSON(t *testing.T) {
	cfg := &p4v1.ForwardingPipelineConfig{
		Cookie: &p4v1.ForwardingPipelineConfig_Cookie{Cookie: 0xabcd},
	}
	text := ToText(cfg)
	assert.Contains(t, text, "cookie")

	j := ToJSON(cfg)
	assert.Contains(t, j, "cookie")
}

func TestFormatForwardingPipelineConfig(t *testing.T) {
	cfg := &p4v1.ForwardingPipelineConfig{
		Cookie: &p4v1.ForwardingPipelineConfig_Cookie{Cookie: 0xabcd},
	}
	assert.Equal(t, "p4cookie=0xabcd", Format(cfg))
}

func TestFormatGNMIPath(t *testing.T) {
	path := &gnmipb.Path{Elem: []*gnmipb.PathElem{
		{Name: "interfaces"},
		{Name: "interface", Key: map[string]string{"name": "eth0"}},
	}}
	assert.Equal(t, "/interfaces/interface[name=eth0]", Format(path))
}

func TestAnnotateWriteRequest(t *testing.T) {
	schema := testSchema(t)

	req := &p4v1.WriteRequest{
		Updates: []*p4v1.Update{
			{
				Type: p4v1.Update_INSERT,
				Entity: &p4v1.Entity{
					Entity: &p4v1.Entity_TableEntry{
						TableEntry: &p4v1.TableEntry{TableId: 1},
					},
				},
			},
		},
	}

	text := ToTextMultiline(req)
	annotated := annotate(text, schema)
	assert.True(t, strings.Contains(annotated, "table_id: 1  # ingress.forward"))
}

func TestFromTextRoundTrip(t *testing.T) {
	cfg := &p4v1.ForwardingPipelineConfig{
		Cookie: &p4v1.ForwardingPipelineConfig_Cookie{Cookie: 7},
	}
	text := ToText(cfg)

	parsed, err := FromText(text, func() *p4v1.ForwardingPipelineConfig {
		return &p4v1.ForwardingPipelineConfig{}
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), parsed.GetCookie().GetCookie())
}
