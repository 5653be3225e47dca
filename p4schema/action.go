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

package p4schema

import p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"

// Action describes a P4Info action and its parameters.
type Action struct {
	pbuf        *p4configv1.Action
	annotations []Annotation
	params      *EntityMap[*ActionParam]
}

func newAction(pbuf *p4configv1.Action, ti *TypeInfo) *Action {
	a := &Action{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
		params:      newEntityMap[*ActionParam]("action param"),
	}
	for _, p := range pbuf.GetParams() {
		a.params.add(newActionParam(p, ti))
	}
	return a
}

func (a *Action) ID() uint32          { return a.pbuf.GetPreamble().GetId() }
func (a *Action) Name() string        { return a.pbuf.GetPreamble().GetName() }
func (a *Action) Alias() string       { return a.pbuf.GetPreamble().GetAlias() }
func (a *Action) Annotations() []Annotation { return a.annotations }
func (a *Action) Pbuf() *p4configv1.Action  { return a.pbuf }

// Params returns the action's parameters, indexed by name/ID.
func (a *Action) Params() *EntityMap[*ActionParam] { return a.params }

// ActionParam describes one parameter of an action.
type ActionParam struct {
	pbuf        *p4configv1.Action_Param
	annotations []Annotation
	typeSpec    *ResolvedType
}

func newActionParam(pbuf *p4configv1.Action_Param, ti *TypeInfo) *ActionParam {
	return &ActionParam{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf),
		typeSpec:    ti.resolve(pbuf.GetTypeName()),
	}
}

func (p *ActionParam) ID() uint32               { return p.pbuf.GetId() }
func (p *ActionParam) Name() string             { return p.pbuf.GetName() }
func (p *ActionParam) Bitwidth() int32          { return p.pbuf.GetBitwidth() }
func (p *ActionParam) Annotations() []Annotation { return p.annotations }
func (p *ActionParam) TypeSpec() *ResolvedType  { return p.typeSpec }
func (p *ActionParam) Pbuf() *p4configv1.Action_Param { return p.pbuf }

// ActionProfile describes an action-profile or action-selector: a pool of
// shared indirect actions that one or more tables reference.
type ActionProfile struct {
	pbuf        *p4configv1.ActionProfile
	annotations []Annotation
	tableNames  []string
}

func newActionProfile(pbuf *p4configv1.ActionProfile, _ *EntityMap[*Action]) *ActionProfile {
	return &ActionProfile{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
	}
}

func (p *ActionProfile) ID() uint32    { return p.pbuf.GetPreamble().GetId() }
func (p *ActionProfile) Name() string  { return p.pbuf.GetPreamble().GetName() }
func (p *ActionProfile) Alias() string { return p.pbuf.GetPreamble().GetAlias() }
func (p *ActionProfile) Annotations() []Annotation { return p.annotations }
func (p *ActionProfile) Pbuf() *p4configv1.ActionProfile { return p.pbuf }

// WithSelector reports whether this is an action-selector (load-balanced
// group membership) as opposed to a plain action-profile.
func (p *ActionProfile) WithSelector() bool { return p.pbuf.GetWithSelector() }

// Size is the maximum number of members.
func (p *ActionProfile) Size() int32 { return int32(p.pbuf.GetSize()) }

// MaxGroupSize is the maximum number of members per group, for selectors.
func (p *ActionProfile) MaxGroupSize() int32 { return p.pbuf.GetMaxGroupSize() }

// TableNames lists the tables that reference this action profile.
func (p *ActionProfile) TableNames() []string { return p.tableNames }

// ControllerPacketMetadata describes packet-in/packet-out metadata fields,
// e.g. the "ingress_port" field carried alongside every packet-in.
type ControllerPacketMetadata struct {
	pbuf        *p4configv1.ControllerPacketMetadata
	annotations []Annotation
	metadata    *EntityMap[*CPMetadata]
}

func newControllerPacketMetadata(pbuf *p4configv1.ControllerPacketMetadata, ti *TypeInfo) *ControllerPacketMetadata {
	m := &ControllerPacketMetadata{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
		metadata:    newEntityMap[*CPMetadata]("controller packet metadata field"),
	}
	for _, md := range pbuf.GetMetadata() {
		m.metadata.add(newCPMetadata(md, ti))
	}
	return m
}

func (m *ControllerPacketMetadata) ID() uint32    { return m.pbuf.GetPreamble().GetId() }
func (m *ControllerPacketMetadata) Name() string  { return m.pbuf.GetPreamble().GetName() }
func (m *ControllerPacketMetadata) Alias() string { return m.pbuf.GetPreamble().GetAlias() }
func (m *ControllerPacketMetadata) Annotations() []Annotation { return m.annotations }
func (m *ControllerPacketMetadata) Metadata() *EntityMap[*CPMetadata] { return m.metadata }
func (m *ControllerPacketMetadata) Pbuf() *p4configv1.ControllerPacketMetadata { return m.pbuf }

// CPMetadata describes one field of a ControllerPacketMetadata entity.
type CPMetadata struct {
	pbuf        *p4configv1.ControllerPacketMetadata_Metadata
	annotations []Annotation
	typeSpec    *ResolvedType
}

func newCPMetadata(pbuf *p4configv1.ControllerPacketMetadata_Metadata, ti *TypeInfo) *CPMetadata {
	return &CPMetadata{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf),
		typeSpec:    ti.resolve(pbuf.GetTypeName()),
	}
}

func (m *CPMetadata) ID() uint32       { return m.pbuf.GetId() }
func (m *CPMetadata) Name() string     { return m.pbuf.GetName() }
func (m *CPMetadata) Bitwidth() int32  { return m.pbuf.GetBitwidth() }
func (m *CPMetadata) Annotations() []Annotation { return m.annotations }
func (m *CPMetadata) TypeSpec() *ResolvedType   { return m.typeSpec }
