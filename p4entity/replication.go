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
	"github.com/byllyfish/finsy/p4schema"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// Replica is one (egress port, packet-replication instance) pair in a
// multicast group or clone session.
type Replica struct {
	EgressPort uint32
	Instance   uint32
}

func encodeReplicas(replicas []Replica) []*p4v1.Replica {
	if replicas == nil {
		return nil
	}
	out := make([]*p4v1.Replica, 0, len(replicas))
	for _, r := range replicas {
		out = append(out, &p4v1.Replica{EgressPort: r.EgressPort, Instance: r.Instance})
	}
	return out
}

func decodeReplicas(msgs []*p4v1.Replica) []Replica {
	if msgs == nil {
		return nil
	}
	out := make([]Replica, 0, len(msgs))
	for _, r := range msgs {
		out = append(out, Replica{EgressPort: r.GetEgressPort(), Instance: r.GetInstance()})
	}
	return out
}

// MulticastGroupEntry fans a packet out to a set of egress port replicas.
type MulticastGroupEntry struct {
	MulticastGroupID uint32
	Replicas         []Replica
}

func (e MulticastGroupEntry) EncodeEntity(_ *p4schema.Schema) (*p4v1.Entity, error) {
	entry := &p4v1.MulticastGroupEntry{
		MulticastGroupId: e.MulticastGroupID,
		Replicas:         encodeReplicas(e.Replicas),
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_PacketReplicationEngineEntry{
		PacketReplicationEngineEntry: &p4v1.PacketReplicationEngineEntry{
			Type: &p4v1.PacketReplicationEngineEntry_MulticastGroupEntry{MulticastGroupEntry: entry},
		},
	}}, nil
}

// DecodeMulticastGroupEntry decodes a wire MulticastGroupEntry.
func DecodeMulticastGroupEntry(msg *p4v1.MulticastGroupEntry) MulticastGroupEntry {
	return MulticastGroupEntry{
		MulticastGroupID: msg.GetMulticastGroupId(),
		Replicas:         decodeReplicas(msg.GetReplicas()),
	}
}

// CloneSessionEntry fans a packet out to a set of egress port replicas,
// plus the packet's original forwarding destination.
type CloneSessionEntry struct {
	SessionID         uint32
	ClassOfService    uint32
	PacketLengthBytes int32
	Replicas          []Replica
}

func (e CloneSessionEntry) EncodeEntity(_ *p4schema.Schema) (*p4v1.Entity, error) {
	entry := &p4v1.CloneSessionEntry{
		SessionId:         e.SessionID,
		ClassOfService:    e.ClassOfService,
		PacketLengthBytes: e.PacketLengthBytes,
		Replicas:          encodeReplicas(e.Replicas),
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_PacketReplicationEngineEntry{
		PacketReplicationEngineEntry: &p4v1.PacketReplicationEngineEntry{
			Type: &p4v1.PacketReplicationEngineEntry_CloneSessionEntry{CloneSessionEntry: entry},
		},
	}}, nil
}

// DecodeCloneSessionEntry decodes a wire CloneSessionEntry.
func DecodeCloneSessionEntry(msg *p4v1.CloneSessionEntry) CloneSessionEntry {
	return CloneSessionEntry{
		SessionID:         msg.GetSessionId(),
		ClassOfService:    msg.GetClassOfService(),
		PacketLengthBytes: msg.GetPacketLengthBytes(),
		Replicas:          decodeReplicas(msg.GetReplicas()),
	}
}
