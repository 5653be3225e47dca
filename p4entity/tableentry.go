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
	"time"

	"github.com/byllyfish/finsy/p4schema"
	"github.com/byllyfish/finsy/p4values"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// TableMatch is a table entry's match key, keyed by match-field name.
// Values follow p4values' EncodeExact/EncodeLPM/EncodeTernary/EncodeRange
// conventions, e.g. "10.0.0.0/24" for an LPM field.
type TableMatch map[string]any

// Encode renders the match map as field matches, in the table's declared
// field order, omitting don't-care (wildcard) fields.
func (m TableMatch) Encode(table *p4schema.Table) ([]*p4v1.FieldMatch, error) {
	var matches []*p4v1.FieldMatch
	for _, field := range table.MatchFields().All() {
		value, ok := m[field.Name()]
		if !ok {
			continue
		}
		fm, err := encodeFieldMatch(field, value)
		if err != nil {
			return nil, fmt.Errorf("p4entity: field %q: %w", field.Name(), err)
		}
		if fm != nil {
			matches = append(matches, fm)
		}
	}
	return matches, nil
}

func encodeFieldMatch(field *p4schema.MatchField, value any) (*p4v1.FieldMatch, error) {
	bitwidth := int(field.Bitwidth())
	switch field.MatchKind() {
	case p4configv1.MatchField_EXACT:
		data, err := p4values.EncodeExact(value, bitwidth)
		if err != nil {
			return nil, err
		}
		return &p4v1.FieldMatch{
			FieldId:        field.ID(),
			FieldMatchType: &p4v1.FieldMatch_Exact_{Exact: &p4v1.FieldMatch_Exact{Value: data}},
		}, nil
	case p4configv1.MatchField_LPM:
		data, prefix, err := p4values.EncodeLPM(value, bitwidth)
		if err != nil {
			return nil, err
		}
		if prefix == 0 {
			return nil, nil // don't-care
		}
		return &p4v1.FieldMatch{
			FieldId:        field.ID(),
			FieldMatchType: &p4v1.FieldMatch_Lpm{Lpm: &p4v1.FieldMatch_LPM{Value: data, PrefixLen: int32(prefix)}},
		}, nil
	case p4configv1.MatchField_TERNARY:
		data, mask, err := p4values.EncodeTernary(value, bitwidth)
		if err != nil {
			return nil, err
		}
		if isAllZero(mask) {
			return nil, nil // don't-care
		}
		return &p4v1.FieldMatch{
			FieldId:        field.ID(),
			FieldMatchType: &p4v1.FieldMatch_Ternary_{Ternary: &p4v1.FieldMatch_Ternary{Value: data, Mask: mask}},
		}, nil
	case p4configv1.MatchField_RANGE:
		low, high, err := p4values.EncodeRange(value, bitwidth)
		if err != nil {
			return nil, err
		}
		return &p4v1.FieldMatch{
			FieldId:        field.ID(),
			FieldMatchType: &p4v1.FieldMatch_Range_{Range: &p4v1.FieldMatch_Range{Low: low, High: high}},
		}, nil
	case p4configv1.MatchField_OPTIONAL:
		data, err := p4values.EncodeExact(value, bitwidth)
		if err != nil {
			return nil, err
		}
		return &p4v1.FieldMatch{
			FieldId:        field.ID(),
			FieldMatchType: &p4v1.FieldMatch_Optional_{Optional: &p4v1.FieldMatch_Optional{Value: data}},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported match type %v", field.MatchKind())
	}
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// DecodeTableMatch decodes wire-format field matches back into a TableMatch.
func DecodeTableMatch(msgs []*p4v1.FieldMatch, table *p4schema.Table) (TableMatch, error) {
	result := make(TableMatch, len(msgs))
	for _, fm := range msgs {
		field, err := table.MatchFields().Get(fm.GetFieldId())
		if err != nil {
			return nil, err
		}
		bitwidth := int(field.Bitwidth())
		value, err := decodeFieldMatch(fm, bitwidth)
		if err != nil {
			return nil, err
		}
		result[field.Name()] = value
	}
	return result, nil
}

func decodeFieldMatch(fm *p4v1.FieldMatch, bitwidth int) (any, error) {
	switch v := fm.GetFieldMatchType().(type) {
	case *p4v1.FieldMatch_Exact_:
		return p4values.DecodeExact(v.Exact.GetValue(), bitwidth, p4values.DecodeDefault)
	case *p4v1.FieldMatch_Lpm:
		return p4values.DecodeLPM(v.Lpm.GetValue(), int(v.Lpm.GetPrefixLen()), bitwidth, p4values.DecodeDefault)
	case *p4v1.FieldMatch_Ternary_:
		return p4values.DecodeTernary(v.Ternary.GetValue(), v.Ternary.GetMask(), bitwidth, p4values.DecodeDefault)
	case *p4v1.FieldMatch_Range_:
		return p4values.DecodeRange(v.Range.GetLow(), v.Range.GetHigh(), bitwidth, p4values.DecodeDefault)
	case *p4v1.FieldMatch_Optional_:
		return p4values.DecodeExact(v.Optional.GetValue(), bitwidth, p4values.DecodeDefault)
	default:
		return nil, fmt.Errorf("p4entity: unknown field match type %T", fm.GetFieldMatchType())
	}
}

// TableAction names a direct action and its parameter values, by name.
type TableAction struct {
	Name string
	Args map[string]any
}

// Action builds a direct TableAction.
func Action(name string, args map[string]any) TableAction {
	return TableAction{Name: name, Args: args}
}

func (a TableAction) encodeAction(actions *p4schema.EntityMap[*p4schema.Action]) (*p4v1.Action, error) {
	action, err := actions.Get(a.Name)
	if err != nil {
		return nil, err
	}
	params := make([]*p4v1.Action_Param, 0, len(a.Args))
	for _, p := range action.Params().All() {
		value, ok := a.Args[p.Name()]
		if !ok {
			return nil, fmt.Errorf("p4entity: action %q missing parameter %q", a.Name, p.Name())
		}
		data, err := p4values.EncodeExact(value, int(p.Bitwidth()))
		if err != nil {
			return nil, fmt.Errorf("p4entity: action %q parameter %q: %w", a.Name, p.Name(), err)
		}
		params = append(params, &p4v1.Action_Param{ParamId: p.ID(), Value: data})
	}
	return &p4v1.Action{ActionId: action.ID(), Params: params}, nil
}

func (a TableAction) encodeTableAction(table *p4schema.Table) (*p4v1.TableAction, error) {
	if table.ActionProfile() != nil {
		// An indirect table only accepts IndirectAction on the wire; a
		// plain action is promoted to a one-shot weighted action of
		// weight 1 with no watch port.
		return IndirectAction{OneShot: []WeightedAction{{Action: a, Weight: 1}}}.encodeTableAction(table)
	}
	act, err := a.encodeAction(table.ActionsByRef())
	if err != nil {
		return nil, err
	}
	return &p4v1.TableAction{Type: &p4v1.TableAction_Action{Action: act}}, nil
}

// DecodeTableAction decodes a wire TableAction, yielding a TableAction for
// a direct action, or an IndirectAction for a member/group reference or a
// one-shot weighted action set.
func DecodeTableAction(msg *p4v1.TableAction, table *p4schema.Table) (any, error) {
	switch v := msg.GetType().(type) {
	case *p4v1.TableAction_Action:
		return decodeAction(v.Action, table.ActionsByRef())
	case *p4v1.TableAction_ActionProfileMemberId:
		return IndirectAction{MemberID: v.ActionProfileMemberId}, nil
	case *p4v1.TableAction_ActionProfileGroupId:
		return IndirectAction{GroupID: v.ActionProfileGroupId}, nil
	case *p4v1.TableAction_ActionProfileActionSet:
		return decodeActionSet(v.ActionProfileActionSet, table)
	default:
		return nil, fmt.Errorf("p4entity: unknown table action type %T", msg.GetType())
	}
}

func decodeAction(msg *p4v1.Action, actions *p4schema.EntityMap[*p4schema.Action]) (TableAction, error) {
	action, err := actions.Get(msg.GetActionId())
	if err != nil {
		return TableAction{}, err
	}
	args := make(map[string]any, len(msg.GetParams()))
	for _, pm := range msg.GetParams() {
		p, err := action.Params().Get(pm.GetParamId())
		if err != nil {
			return TableAction{}, err
		}
		value, err := p4values.DecodeExact(pm.GetValue(), int(p.Bitwidth()), p4values.DecodeDefault)
		if err != nil {
			return TableAction{}, err
		}
		args[p.Name()] = value
	}
	return TableAction{Name: action.Alias(), Args: args}, nil
}

// WeightedAction is one member of a one-shot action-profile action set
// installed directly on a table entry, bypassing an explicit member/group.
type WeightedAction struct {
	Action    TableAction
	Weight    int32
	WatchPort []byte
}

// IndirectAction references a table's action-profile/selector indirection:
// either an existing member/group ID, or an inline one-shot action set.
type IndirectAction struct {
	MemberID uint32
	GroupID  uint32
	OneShot  []WeightedAction
}

func (a IndirectAction) encodeTableAction(table *p4schema.Table) (*p4v1.TableAction, error) {
	switch {
	case len(a.OneShot) > 0:
		set, err := a.encodeActionSet(table)
		if err != nil {
			return nil, err
		}
		return &p4v1.TableAction{Type: &p4v1.TableAction_ActionProfileActionSet{ActionProfileActionSet: set}}, nil
	case a.GroupID != 0:
		return &p4v1.TableAction{Type: &p4v1.TableAction_ActionProfileGroupId{ActionProfileGroupId: a.GroupID}}, nil
	default:
		return &p4v1.TableAction{Type: &p4v1.TableAction_ActionProfileMemberId{ActionProfileMemberId: a.MemberID}}, nil
	}
}

func (a IndirectAction) encodeActionSet(table *p4schema.Table) (*p4v1.ActionProfileActionSet, error) {
	actions := table.ActionsByRef()
	set := &p4v1.ActionProfileActionSet{}
	for _, wa := range a.OneShot {
		act, err := wa.Action.encodeAction(actions)
		if err != nil {
			return nil, err
		}
		apa := &p4v1.ActionProfileAction{Action: act, Weight: wa.Weight}
		if wa.WatchPort != nil {
			apa.WatchKind = &p4v1.ActionProfileAction_WatchPort{WatchPort: wa.WatchPort}
		}
		set.ActionProfileActions = append(set.ActionProfileActions, apa)
	}
	return set, nil
}

func decodeActionSet(msg *p4v1.ActionProfileActionSet, table *p4schema.Table) (IndirectAction, error) {
	actions := table.ActionsByRef()
	result := IndirectAction{}
	for _, apa := range msg.GetActionProfileActions() {
		act, err := decodeAction(apa.GetAction(), actions)
		if err != nil {
			return IndirectAction{}, err
		}
		wa := WeightedAction{Action: act, Weight: apa.GetWeight()}
		if wp, ok := apa.GetWatchKind().(*p4v1.ActionProfileAction_WatchPort); ok {
			wa.WatchPort = wp.WatchPort
		}
		result.OneShot = append(result.OneShot, wa)
	}
	return result, nil
}

// TableEntry is a single entry (match -> action) installed in a P4 table.
type TableEntry struct {
	Table              string
	Match              TableMatch
	Action             any // TableAction or IndirectAction; nil for the default action reset
	Priority           int32
	ControllerMetadata uint64
	IdleTimeout        time.Duration
	IsDefaultAction    bool
}

func (e TableEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	entry, err := e.encodeEntry(schema)
	if err != nil {
		return nil, err
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_TableEntry{TableEntry: entry}}, nil
}

func (e TableEntry) encodeEntry(schema *p4schema.Schema) (*p4v1.TableEntry, error) {
	table, err := schema.Tables().Get(e.Table)
	if err != nil {
		return nil, err
	}

	entry := &p4v1.TableEntry{
		TableId:            table.ID(),
		Priority:           e.Priority,
		IsDefaultAction:    e.IsDefaultAction,
		ControllerMetadata: e.ControllerMetadata,
	}

	if e.Match != nil {
		matches, err := e.Match.Encode(table)
		if err != nil {
			return nil, err
		}
		entry.Match = matches
	}

	switch a := e.Action.(type) {
	case TableAction:
		ta, err := a.encodeTableAction(table)
		if err != nil {
			return nil, err
		}
		entry.Action = ta
	case IndirectAction:
		ta, err := a.encodeTableAction(table)
		if err != nil {
			return nil, err
		}
		entry.Action = ta
	case nil:
		// no action: used to reset the default action, or to delete/read
		// by match key alone.
	default:
		return nil, fmt.Errorf("p4entity: unsupported action type %T", e.Action)
	}

	if e.IdleTimeout > 0 {
		entry.IdleTimeoutNs = e.IdleTimeout.Nanoseconds()
	}

	return entry, nil
}

// DecodeTableEntry decodes a wire TableEntry into a TableEntry.
func DecodeTableEntry(msg *p4v1.TableEntry, schema *p4schema.Schema) (TableEntry, error) {
	table, err := schema.Tables().Get(msg.GetTableId())
	if err != nil {
		return TableEntry{}, err
	}

	match, err := DecodeTableMatch(msg.GetMatch(), table)
	if err != nil {
		return TableEntry{}, err
	}

	entry := TableEntry{
		Table:              table.Alias(),
		Match:              match,
		Priority:           msg.GetPriority(),
		ControllerMetadata: msg.GetControllerMetadata(),
		IdleTimeout:        time.Duration(msg.GetIdleTimeoutNs()),
		IsDefaultAction:    msg.GetIsDefaultAction(),
	}

	if msg.GetAction() != nil {
		action, err := DecodeTableAction(msg.GetAction(), table)
		if err != nil {
			return TableEntry{}, err
		}
		entry.Action = action
	}

	return entry, nil
}
