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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/byllyfish/finsy/gnmipath"
	"github.com/byllyfish/finsy/p4schema"
	"github.com/golang/glog"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/protobuf/proto"
)

// Format renders msg as single-line text, substituting a more readable
// rendering for the message types the P4Runtime/gNMI traffic log cares
// about most.
func Format(msg proto.Message) string {
	if s, ok := customFormat(msg, false); ok {
		return s
	}
	return ToText(msg)
}

// customFormat mirrors the teacher's per-message-type formatter: a small,
// growable set of special cases layered over the generic text renderer.
func customFormat(msg proto.Message, multiline bool) (string, bool) {
	switch m := msg.(type) {
	case *p4v1.ForwardingPipelineConfig:
		return fmt.Sprintf("p4cookie=0x%x", m.GetCookie().GetCookie()), true
	case *gnmipb.Path:
		return gnmipath.FromProto(m).String(), true
	case *gnmipb.Update:
		value := strings.TrimSpace(ToText(m.GetVal()))
		dups := ""
		if m.GetDuplicates() != 0 {
			dups = fmt.Sprintf(" (%d dups)", m.GetDuplicates())
		}
		return fmt.Sprintf("%s = %s%s", gnmipath.FromProto(m.GetPath()), value, dups), true
	case *p4v1.PacketIn:
		return packetFormat(m.GetPayload(), m.GetMetadata()), true
	case *p4v1.PacketOut:
		return packetFormat(m.GetPayload(), m.GetMetadata()), true
	case *gnmipb.GetResponse:
		if multiline {
			var lines []string
			for _, n := range m.GetNotification() {
				lines = append(lines, ToTextMultiline(n))
			}
			return strings.Join(lines, "\n"), true
		}
	case *gnmipb.SubscribeResponse:
		if u, ok := m.GetResponse().(*gnmipb.SubscribeResponse_Update); ok {
			return ToTextMultiline(u.Update), true
		}
	}
	return "", false
}

func packetFormat(payload []byte, metadata []*p4v1.PacketMetadata) string {
	var parts []string
	for _, md := range metadata {
		parts = append(parts, fmt.Sprintf("meta[%d]=%x", md.GetMetadataId(), md.GetValue()))
	}
	return fmt.Sprintf("%x %s", payload, strings.Join(parts, " "))
}

// LogMsg logs a sent/received RPC message the way the teacher's pbuf.log_msg
// does: "<state><type> (<n> bytes): <text>", indenting multi-line renderings.
// state is a human-readable connectivity state, or "" when the channel is
// in its normal/ready state. schema, if non-nil, is used to annotate
// numeric table/action/field IDs in a WriteRequest or ReadResponse.
func LogMsg(state string, msg proto.Message, schema *p4schema.Schema) {
	if !glog.V(2) {
		return
	}

	var text string
	switch m := msg.(type) {
	case *p4v1.WriteRequest, *p4v1.ReadResponse:
		text = ToTextMultiline(m)
		if schema != nil {
			text = annotate(text, schema)
		}
	case *gnmipb.GetResponse:
		if s, ok := customFormat(m, true); ok {
			text = s
		} else {
			text = ToTextMultiline(m)
		}
	default:
		if s, ok := customFormat(m, false); ok {
			text = s
		} else {
			text = ToText(m)
		}
	}

	statePrefix := ""
	if state != "" {
		statePrefix = state + " "
	}
	if strings.Contains(text, "\n") {
		text = "\n" + indent(strings.TrimRight(text, "\n"), "  ")
	}

	size := proto.Size(msg)
	glog.Infof("%s%T (%d bytes): %s", statePrefix, msg, size, text)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

var annotateRegex = regexp.MustCompile(`(?m)([a-z]+_id|value|mask): (\d+|"[^"]*")\n`)

// annotate adds a trailing "# name" comment after table_id/action_id/
// field_id/param_id/digest_id lines in prototext output, resolving numeric
// IDs through schema the way the teacher's _log_annotate does. value/mask
// lines are matched but left unchanged.
func annotate(text string, schema *p4schema.Schema) string {
	var tableID, actionID uint32

	return annotateRegex.ReplaceAllStringFunc(text, func(match string) string {
		groups := annotateRegex.FindStringSubmatch(match)
		key, value := groups[1], groups[2]

		name := ""
		switch key {
		case "table_id":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return match
			}
			tableID = uint32(id)
			if t, ok := schema.Tables().ByID(tableID); ok {
				name = t.Name()
			}
		case "action_id":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return match
			}
			actionID = uint32(id)
			if a, ok := schema.Actions().ByID(actionID); ok {
				name = a.Name()
			}
		case "digest_id":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return match
			}
			if d, ok := schema.Digests().ByID(uint32(id)); ok {
				name = d.Name()
			}
		case "field_id":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return match
			}
			if t, ok := schema.Tables().ByID(tableID); ok {
				if f, ok := t.MatchFields().ByID(uint32(id)); ok {
					name = f.Name()
				}
			}
		case "param_id":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return match
			}
			if a, ok := schema.Actions().ByID(actionID); ok {
				if p, ok := a.Params().ByID(uint32(id)); ok {
					name = p.Name()
				}
			}
		default:
			return match
		}

		if name == "" {
			return match
		}
		return fmt.Sprintf("%s: %s  # %s\n", key, value, name)
	})
}
