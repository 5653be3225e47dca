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

// Package p4testutil builds small P4Info fixtures for tests, the same
// role the teacher's Python P4TypeFactory plays for constructing test
// schemas, adapted to build directly at the P4Info proto level since
// p4schema resolves types from the proto rather than from a parallel
// object model.
package p4testutil

import (
	"github.com/byllyfish/finsy/p4schema"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
)

// Builder accumulates P4Info declarations and builds a *p4schema.Schema
// (or the raw *p4configv1.P4Info) from them.
//
// Usage:
//
//	b := p4testutil.NewBuilder()
//	b.Table("forward", 1024,
//	    p4testutil.ExactMatch("hdr.ipv4.dst", 32),
//	).Actions("set_port")
//	b.Action("set_port", p4testutil.Param("port", 9))
//	schema, err := b.Build()
type Builder struct {
	info              p4configv1.P4Info
	nextID            map[string]uint32
	byAlias           map[string]uint32
	pendingActionRefs []pendingActionRef
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nextID:  map[string]uint32{"table": 1, "action": 1, "counter": 1, "meter": 1, "register": 1, "digest": 1, "value_set": 1, "action_profile": 1, "controller_packet_metadata": 1},
		byAlias: map[string]uint32{},
	}
}

func (b *Builder) allocID(kind string) uint32 {
	id := b.nextID[kind]
	b.nextID[kind] = id + 1
	return id
}

func preamble(id uint32, alias string) *p4configv1.Preamble {
	return &p4configv1.Preamble{Id: id, Name: "t." + alias, Alias: alias}
}

// MatchFieldOption describes one match field added to a Table.
type MatchFieldOption func() *p4configv1.MatchField

func matchField(name string, bitwidth int32, kind p4configv1.MatchField_MatchType) MatchFieldOption {
	return func() *p4configv1.MatchField {
		return &p4configv1.MatchField{
			Name:     name,
			Bitwidth: bitwidth,
			Match:    &p4configv1.MatchField_MatchType_{MatchType: kind},
		}
	}
}

// ExactMatch declares an exact-match field.
func ExactMatch(name string, bitwidth int32) MatchFieldOption {
	return matchField(name, bitwidth, p4configv1.MatchField_EXACT)
}

// LPMMatch declares a longest-prefix-match field.
func LPMMatch(name string, bitwidth int32) MatchFieldOption {
	return matchField(name, bitwidth, p4configv1.MatchField_LPM)
}

// TernaryMatch declares a ternary-match field.
func TernaryMatch(name string, bitwidth int32) MatchFieldOption {
	return matchField(name, bitwidth, p4configv1.MatchField_TERNARY)
}

// OptionalMatch declares an optional-match field.
func OptionalMatch(name string, bitwidth int32) MatchFieldOption {
	return matchField(name, bitwidth, p4configv1.MatchField_OPTIONAL)
}

// RangeMatch declares a range-match field.
func RangeMatch(name string, bitwidth int32) MatchFieldOption {
	return matchField(name, bitwidth, p4configv1.MatchField_RANGE)
}

// TableHandle lets the caller attach actions to a table after creating it.
type TableHandle struct {
	b   *Builder
	tbl *p4configv1.Table
}

// Table declares a table with the given alias, size, and match fields,
// returning a handle for attaching actions via Actions.
func (b *Builder) Table(alias string, size int64, fields ...MatchFieldOption) *TableHandle {
	id := b.allocID("table")
	b.byAlias["table:"+alias] = id

	tbl := &p4configv1.Table{
		Preamble: preamble(id, alias),
		Size:     size,
	}
	for i, f := range fields {
		field := f()
		field.Id = uint32(i + 1)
		tbl.MatchFields = append(tbl.MatchFields, field)
	}
	b.info.Tables = append(b.info.Tables, tbl)
	return &TableHandle{b: b, tbl: tbl}
}

// Actions attaches references to already-declared (or not-yet-declared)
// actions by alias; action IDs are resolved at Build time.
func (h *TableHandle) Actions(aliases ...string) *TableHandle {
	for _, alias := range aliases {
		h.tbl.ActionRefs = append(h.tbl.ActionRefs, &p4configv1.ActionRef{
			Id: 0, // patched in P4Info()/Build() once all actions are declared
		})
		h.b.pendingActionRefs = append(h.b.pendingActionRefs, pendingActionRef{
			ref: h.tbl.ActionRefs[len(h.tbl.ActionRefs)-1], alias: alias,
		})
	}
	return h
}

type pendingActionRef struct {
	ref   *p4configv1.ActionRef
	alias string
}

// ActionParam describes one parameter added to an Action.
type ActionParam func() *p4configv1.Action_Param

// Param declares an action parameter with the given bit width.
func Param(name string, bitwidth int32) ActionParam {
	return func() *p4configv1.Action_Param {
		return &p4configv1.Action_Param{Name: name, Bitwidth: bitwidth}
	}
}

// Action declares an action with the given alias and parameters.
func (b *Builder) Action(alias string, params ...ActionParam) *Builder {
	id := b.allocID("action")
	b.byAlias["action:"+alias] = id

	act := &p4configv1.Action{Preamble: preamble(id, alias)}
	for i, p := range params {
		param := p()
		param.Id = uint32(i + 1)
		act.Params = append(act.Params, param)
	}
	b.info.Actions = append(b.info.Actions, act)
	return b
}

// Counter declares an indirect packet-and-byte counter.
func (b *Builder) Counter(alias string, size int64) *Builder {
	id := b.allocID("counter")
	b.info.Counters = append(b.info.Counters, &p4configv1.Counter{
		Preamble: preamble(id, alias),
		Size:     size,
		Spec:     &p4configv1.CounterSpec{Unit: p4configv1.CounterSpec_BOTH},
	})
	return b
}

// BitstringRegister declares a register array whose element type is an
// unsigned bitstring of the given width.
func (b *Builder) BitstringRegister(alias string, size int64, bitwidth int32) *Builder {
	id := b.allocID("register")
	b.info.Registers = append(b.info.Registers, &p4configv1.Register{
		Preamble: preamble(id, alias),
		Size:     int32(size),
		TypeSpec: bitstringTypeSpec(bitwidth),
	})
	return b
}

// Digest declares a digest whose payload is a bitstring of the given width.
func (b *Builder) Digest(alias string, bitwidth int32) *Builder {
	id := b.allocID("digest")
	b.info.Digests = append(b.info.Digests, &p4configv1.Digest{
		Preamble: preamble(id, alias),
		TypeSpec: bitstringTypeSpec(bitwidth),
	})
	return b
}

func bitstringTypeSpec(bitwidth int32) *p4configv1.P4DataTypeSpec {
	return &p4configv1.P4DataTypeSpec{
		Type: &p4configv1.P4DataTypeSpec_Bitstring{
			Bitstring: &p4configv1.P4BitstringLikeTypeSpec{
				Type: &p4configv1.P4BitstringLikeTypeSpec_Bit{
					Bit: &p4configv1.P4BitTypeSpec{Bitwidth: bitwidth},
				},
			},
		},
	}
}

// P4Info finalizes and returns the raw P4Info built so far, resolving any
// table->action references declared via Actions.
func (b *Builder) P4Info() *p4configv1.P4Info {
	for _, p := range b.pendingActionRefs {
		id, ok := b.byAlias["action:"+p.alias]
		if !ok {
			panic("p4testutil: unknown action alias: " + p.alias)
		}
		p.ref.Id = id
	}
	b.pendingActionRefs = nil
	return &b.info
}

// Build finalizes the P4Info and resolves it into a *p4schema.Schema.
func (b *Builder) Build() (*p4schema.Schema, error) {
	return p4schema.New(b.P4Info(), nil)
}
