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

// Package p4entity converts between P4Runtime wire entities
// (p4v1.Entity / p4v1.StreamMessage*) and typed Go values, the way
// application code constructs table entries, counters, and packet-in/out
// messages.
package p4entity

import (
	"fmt"

	"github.com/byllyfish/finsy/p4schema"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// Entity is implemented by every typed wrapper that can become a
// p4v1.Entity for a Write RPC.
type Entity interface {
	EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error)
}

// modifyOnly is implemented by entity kinds that P4Runtime only ever
// updates via MODIFY (counters, meters, registers, value sets): they have
// no independent lifecycle of their own, so INSERT/DELETE make no sense.
type modifyOnly interface {
	modifyOnly()
}

// Tagged pairs an Entity with the update operation (INSERT/MODIFY/DELETE)
// that should be applied to it, ready to become a p4v1.Update.
type Tagged struct {
	Op     p4v1.Update_Type
	Entity Entity
}

// Insert tags an entity for a P4Runtime INSERT update.
func Insert(e Entity) Tagged { return Tagged{Op: p4v1.Update_INSERT, Entity: e} }

// Modify tags an entity for a P4Runtime MODIFY update.
func Modify(e Entity) Tagged { return Tagged{Op: p4v1.Update_MODIFY, Entity: e} }

// Delete tags an entity for a P4Runtime DELETE update.
func Delete(e Entity) Tagged { return Tagged{Op: p4v1.Update_DELETE, Entity: e} }

// EncodeUpdate renders the tagged entity as a p4v1.Update for a WriteRequest.
func (t Tagged) EncodeUpdate(schema *p4schema.Schema) (*p4v1.Update, error) {
	if t.Op != p4v1.Update_MODIFY {
		if _, ok := t.Entity.(modifyOnly); ok {
			return nil, fmt.Errorf("p4entity: %T only supports Modify, not %s", t.Entity, t.Op)
		}
	}
	entity, err := t.Entity.EncodeEntity(schema)
	if err != nil {
		return nil, err
	}
	return &p4v1.Update{Type: t.Op, Entity: entity}, nil
}

// EncodeUpdates renders a batch of tagged entities into WriteRequest updates.
func EncodeUpdates(schema *p4schema.Schema, tagged []Tagged) ([]*p4v1.Update, error) {
	updates := make([]*p4v1.Update, 0, len(tagged))
	for _, t := range tagged {
		u, err := t.EncodeUpdate(schema)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// DecodeEntity decodes a p4v1.Entity returned from a Read RPC into one of
// the typed wrappers in this package.
func DecodeEntity(msg *p4v1.Entity, schema *p4schema.Schema) (any, error) {
	switch v := msg.GetEntity().(type) {
	case *p4v1.Entity_TableEntry:
		return DecodeTableEntry(v.TableEntry, schema)
	case *p4v1.Entity_CounterEntry:
		return DecodeCounterEntry(v.CounterEntry, schema), nil
	case *p4v1.Entity_DirectCounterEntry:
		return DecodeDirectCounterEntry(v.DirectCounterEntry, schema)
	case *p4v1.Entity_MeterEntry:
		return DecodeMeterEntry(v.MeterEntry, schema), nil
	case *p4v1.Entity_DirectMeterEntry:
		return DecodeDirectMeterEntry(v.DirectMeterEntry, schema)
	case *p4v1.Entity_RegisterEntry:
		return DecodeRegisterEntry(v.RegisterEntry, schema)
	case *p4v1.Entity_DigestEntry:
		return DecodeDigestEntry(v.DigestEntry, schema), nil
	case *p4v1.Entity_ValueSetEntry:
		return DecodeValueSetEntry(v.ValueSetEntry, schema)
	case *p4v1.Entity_ActionProfileMember:
		return DecodeActionProfileMember(v.ActionProfileMember, schema)
	case *p4v1.Entity_ActionProfileGroup:
		return DecodeActionProfileGroup(v.ActionProfileGroup, schema)
	case *p4v1.Entity_PacketReplicationEngineEntry:
		return decodeReplicationEntry(v.PacketReplicationEngineEntry), nil
	case *p4v1.Entity_ExternEntry:
		return v.ExternEntry, nil
	default:
		return nil, fmt.Errorf("p4entity: unknown entity type %T", msg.GetEntity())
	}
}

func decodeReplicationEntry(msg *p4v1.PacketReplicationEngineEntry) any {
	switch v := msg.GetType().(type) {
	case *p4v1.PacketReplicationEngineEntry_MulticastGroupEntry:
		return DecodeMulticastGroupEntry(v.MulticastGroupEntry)
	case *p4v1.PacketReplicationEngineEntry_CloneSessionEntry:
		return DecodeCloneSessionEntry(v.CloneSessionEntry)
	default:
		return nil
	}
}

// DecodeStream decodes a StreamMessageResponse's payload into one of the
// typed wrappers in this package (PacketIn, DigestList, IdleTimeoutNotification,
// or the raw MasterArbitrationUpdate/StreamError).
func DecodeStream(msg *p4v1.StreamMessageResponse, schema *p4schema.Schema) (any, error) {
	switch v := msg.GetUpdate().(type) {
	case *p4v1.StreamMessageResponse_Arbitration:
		return v.Arbitration, nil
	case *p4v1.StreamMessageResponse_Packet:
		return DecodePacketIn(v.Packet, schema)
	case *p4v1.StreamMessageResponse_Digest:
		return DecodeDigestList(v.Digest, schema), nil
	case *p4v1.StreamMessageResponse_IdleTimeoutNotification:
		return DecodeIdleTimeoutNotification(v.IdleTimeoutNotification, schema)
	case *p4v1.StreamMessageResponse_Error:
		return v.Error, nil
	default:
		return nil, fmt.Errorf("p4entity: unknown stream message type %T", msg.GetUpdate())
	}
}
