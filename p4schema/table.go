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

// MatchType mirrors p4configv1.MatchField_MatchType as a convenience alias.
type MatchType = p4configv1.MatchField_MatchType

// Table describes a P4Info table: its match fields, the actions it can
// invoke, and any attached direct counter/meter or action-selector profile.
type Table struct {
	pbuf        *p4configv1.Table
	annotations []Annotation
	matchFields *EntityMap[*MatchField]
	actionRefs  []*ActionRef
	actionsByRef *EntityMap[*Action]

	actionProfile *ActionProfile
	directCounter *DirectCounter
	directMeter   *DirectMeter
}

func newTable(pbuf *p4configv1.Table, s *Schema) *Table {
	t := &Table{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
		matchFields: newEntityMap[*MatchField]("match field"),
	}
	for _, mf := range pbuf.GetMatchFields() {
		t.matchFields.add(newMatchField(mf, s.typeInfo))
	}
	for _, ar := range pbuf.GetActionRefs() {
		action, err := s.actions.Get(ar.GetId())
		if err == nil {
			t.actionRefs = append(t.actionRefs, newActionRef(ar, action))
		}
	}

	implID := pbuf.GetImplementationId()
	if implID != 0 {
		for _, ap := range s.actionProfiles.All() {
			if ap.ID() == implID {
				t.actionProfile = ap
				ap.tableNames = append(ap.tableNames, pbuf.GetPreamble().GetName())
				break
			}
		}
	}
	for _, dc := range s.directCounters.All() {
		if dc.DirectTableID() == t.ID() {
			t.directCounter = dc
			break
		}
	}
	for _, dm := range s.directMeters.All() {
		if dm.DirectTableID() == t.ID() {
			t.directMeter = dm
			break
		}
	}

	t.actionsByRef = newEntityMap[*Action]("action")
	for _, ar := range t.actionRefs {
		t.actionsByRef.add(ar.Action())
	}

	return t
}

func (t *Table) ID() uint32          { return t.pbuf.GetPreamble().GetId() }
func (t *Table) Name() string        { return t.pbuf.GetPreamble().GetName() }
func (t *Table) Alias() string       { return t.pbuf.GetPreamble().GetAlias() }
func (t *Table) Annotations() []Annotation { return t.annotations }
func (t *Table) Pbuf() *p4configv1.Table   { return t.pbuf }

// Size is the table's maximum entry count, as declared in P4Info.
func (t *Table) Size() int64 { return t.pbuf.GetSize() }

// MatchFields returns the table's match fields, indexed by name/ID.
func (t *Table) MatchFields() *EntityMap[*MatchField] { return t.matchFields }

// ActionRefs returns the actions the table may invoke.
func (t *Table) ActionRefs() []*ActionRef { return t.actionRefs }

// ActionsByRef looks up the table's own permitted actions by name/ID,
// so that an action reference always resolves against this table's
// action list rather than the whole schema.
func (t *Table) ActionsByRef() *EntityMap[*Action] { return t.actionsByRef }

// ConstDefaultAction is the default action's numeric ID, if the table
// declares one immutably (0 if none).
func (t *Table) ConstDefaultAction() uint32 { return t.pbuf.GetConstDefaultActionId() }

// IsConst reports whether the table's entries are fixed at compile time.
func (t *Table) IsConst() bool { return t.pbuf.GetIsConstTable() }

// ActionProfile returns the action-selector/action-profile implementing
// this table's indirection, or nil if the table has none.
func (t *Table) ActionProfile() *ActionProfile { return t.actionProfile }

// DirectCounter returns the direct counter attached to this table, if any.
func (t *Table) DirectCounter() *DirectCounter { return t.directCounter }

// DirectMeter returns the direct meter attached to this table, if any.
func (t *Table) DirectMeter() *DirectMeter { return t.directMeter }

// IdleTimeoutBehavior reports whether the table notifies the controller of
// idle entries.
func (t *Table) IdleTimeoutBehavior() p4configv1.Table_IdleTimeoutBehavior {
	return t.pbuf.GetIdleTimeoutBehavior()
}

// MatchField describes one match key field of a table.
type MatchField struct {
	pbuf        *p4configv1.MatchField
	annotations []Annotation
	typeSpec    *ResolvedType
}

func newMatchField(pbuf *p4configv1.MatchField, ti *TypeInfo) *MatchField {
	return &MatchField{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf),
		typeSpec:    ti.resolve(pbuf.GetTypeName()),
	}
}

func (f *MatchField) ID() uint32              { return f.pbuf.GetId() }
func (f *MatchField) Name() string            { return f.pbuf.GetName() }
func (f *MatchField) Bitwidth() int32         { return f.pbuf.GetBitwidth() }
func (f *MatchField) Annotations() []Annotation { return f.annotations }
func (f *MatchField) TypeSpec() *ResolvedType { return f.typeSpec }
func (f *MatchField) Pbuf() *p4configv1.MatchField { return f.pbuf }

// MatchKind returns the match field's kind, or UNSPECIFIED for custom
// (extern) match kinds named via GetOtherMatchType.
func (f *MatchField) MatchKind() MatchType { return f.pbuf.GetMatchType() }

// OtherMatchType names a non-standard (extern) match kind.
func (f *MatchField) OtherMatchType() string { return f.pbuf.GetOtherMatchType() }

// ActionRef is one action a table is permitted to invoke, together with
// the scope in which it may be used.
type ActionRef struct {
	pbuf        *p4configv1.ActionRef
	action      *Action
	annotations []Annotation
}

func newActionRef(pbuf *p4configv1.ActionRef, action *Action) *ActionRef {
	return &ActionRef{pbuf: pbuf, action: action, annotations: parseAnnotations(pbuf)}
}

func (r *ActionRef) ID() uint32       { return r.action.ID() }
func (r *ActionRef) Name() string     { return r.action.Name() }
func (r *ActionRef) Alias() string    { return r.action.Alias() }
func (r *ActionRef) Action() *Action  { return r.action }
func (r *ActionRef) Annotations() []Annotation { return r.annotations }

// Scope reports whether the action may appear in table entries, as the
// default-only action, or both.
func (r *ActionRef) Scope() p4configv1.ActionRef_Scope { return r.pbuf.GetScope() }
