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
	"fmt"

	"github.com/byllyfish/finsy/p4schema"
	"github.com/byllyfish/finsy/p4values"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// ValueSetMember is one entry of a value set: a set of named field values a
// parser `select` statement can match against. Use the empty key "" for an
// unnamed, single-field value set.
type ValueSetMember map[string]any

func (m ValueSetMember) encode(valueSet *p4schema.ValueSet) ([]*p4v1.FieldMatch, error) {
	result := make([]*p4v1.FieldMatch, 0, len(m))
	for _, field := range valueSet.Match() {
		key := field.GetName()
		value, ok := m[key]
		if !ok {
			continue
		}
		bitwidth := int(field.GetBitwidth())
		data, err := p4values.EncodeExact(value, bitwidth)
		if err != nil {
			return nil, fmt.Errorf("p4entity: value set %q field %q: %w", valueSet.Name(), key, err)
		}
		result = append(result, &p4v1.FieldMatch{
			FieldId:        field.GetId(),
			FieldMatchType: &p4v1.FieldMatch_Exact_{Exact: &p4v1.FieldMatch_Exact{Value: data}},
		})
	}
	return result, nil
}

func decodeValueSetMember(msgs []*p4v1.FieldMatch, valueSet *p4schema.ValueSet) (ValueSetMember, error) {
	byID := make(map[uint32]*p4configv1.MatchField, len(valueSet.Match()))
	for _, f := range valueSet.Match() {
		byID[f.GetId()] = f
	}
	result := make(ValueSetMember, len(msgs))
	for _, fm := range msgs {
		field, ok := byID[fm.GetFieldId()]
		if !ok {
			continue
		}
		value, err := decodeFieldMatch(fm, int(field.GetBitwidth()))
		if err != nil {
			return nil, err
		}
		result[field.GetName()] = value
	}
	return result, nil
}

// ValueSetEntry installs the members of a value set, replacing any that
// were previously installed.
type ValueSetEntry struct {
	ValueSet string
	Members  []ValueSetMember
}

func (ValueSetEntry) modifyOnly() {}

func (e ValueSetEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	valueSet, err := schema.ValueSets().Get(e.ValueSet)
	if err != nil {
		return nil, err
	}
	members := make([]*p4v1.ValueSetMember, 0, len(e.Members))
	for _, m := range e.Members {
		matches, err := m.encode(valueSet)
		if err != nil {
			return nil, err
		}
		members = append(members, &p4v1.ValueSetMember{Match: matches})
	}
	entry := &p4v1.ValueSetEntry{ValueSetId: valueSet.ID(), Members: members}
	return &p4v1.Entity{Entity: &p4v1.Entity_ValueSetEntry{ValueSetEntry: entry}}, nil
}

// DecodeValueSetEntry decodes a wire ValueSetEntry.
func DecodeValueSetEntry(msg *p4v1.ValueSetEntry, schema *p4schema.Schema) (ValueSetEntry, error) {
	valueSet, err := schema.ValueSets().Get(msg.GetValueSetId())
	if err != nil {
		return ValueSetEntry{}, err
	}
	members := make([]ValueSetMember, 0, len(msg.GetMembers()))
	for _, m := range msg.GetMembers() {
		member, err := decodeValueSetMember(m.GetMatch(), valueSet)
		if err != nil {
			return ValueSetEntry{}, err
		}
		members = append(members, member)
	}
	return ValueSetEntry{ValueSet: valueSet.Alias(), Members: members}, nil
}
