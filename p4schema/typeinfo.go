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

import (
	"sort"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
)

// TypeInfo indexes the named types (structs, headers, header unions, enums,
// serializable enums, and type aliases) declared in a P4Info's type_info
// section, and resolves match-field/action-param type references against
// them.
type TypeInfo struct {
	pbuf             *p4configv1.P4TypeInfo
	structs          map[string]*p4configv1.P4StructTypeSpec
	headers          map[string]*p4configv1.P4HeaderTypeSpec
	headerUnions     map[string]*p4configv1.P4HeaderUnionTypeSpec
	enums            map[string]*p4configv1.P4EnumTypeSpec
	serializableEnums map[string]*p4configv1.P4SerializableEnumTypeSpec
	newTypes         map[string]*p4configv1.P4NewTypeSpec
}

func newTypeInfo(pbuf *p4configv1.P4TypeInfo) *TypeInfo {
	ti := &TypeInfo{
		pbuf:              pbuf,
		structs:           pbuf.GetStructs(),
		headers:           pbuf.GetHeaders(),
		headerUnions:      pbuf.GetHeaderUnions(),
		enums:             pbuf.GetEnums(),
		serializableEnums: pbuf.GetSerializableEnums(),
		newTypes:          pbuf.GetNewTypes(),
	}
	return ti
}

func (ti *TypeInfo) Pbuf() *p4configv1.P4TypeInfo { return ti.pbuf }

// StructNames returns the declared struct type names, sorted.
func (ti *TypeInfo) StructNames() []string { return sortedKeys(ti.structs) }

// HeaderNames returns the declared header type names, sorted.
func (ti *TypeInfo) HeaderNames() []string { return sortedKeys(ti.headers) }

// SerializableEnumNames returns the declared serializable-enum type names,
// sorted.
func (ti *TypeInfo) SerializableEnumNames() []string { return sortedKeys(ti.serializableEnums) }

// NewTypeNames returns the declared `type`/`newtype` alias names, sorted.
func (ti *TypeInfo) NewTypeNames() []string { return sortedKeys(ti.newTypes) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Struct looks up a named struct type.
func (ti *TypeInfo) Struct(name string) (*p4configv1.P4StructTypeSpec, bool) {
	v, ok := ti.structs[name]
	return v, ok
}

// SerializableEnum looks up a named serializable-enum type; callers use
// this to render a raw integer value as its symbolic member name.
func (ti *TypeInfo) SerializableEnum(name string) (*p4configv1.P4SerializableEnumTypeSpec, bool) {
	v, ok := ti.serializableEnums[name]
	return v, ok
}

// ResolvedType is the fully-resolved shape of a P4NamedType or
// P4DataTypeSpec reference: what EncodeExact/DecodeExact actually need
// (bitwidth), plus enough of the original declaration to render values
// symbolically.
type ResolvedType struct {
	Bitwidth int32  // 0 if this type has no fixed bit width (e.g. a struct)
	TypeName string // the P4NamedType/new_type name, if this came from one
	Kind     string // "bitstring", "bool", "struct", "header", "header_union", "enum", "serializable_enum", "new_type", ""
}

// resolve follows a P4NamedType (the `type_name` field on match fields and
// action params) through zero or more `new_type` aliases down to its
// concrete representation.
func (ti *TypeInfo) resolve(named *p4configv1.P4NamedType) *ResolvedType {
	if named == nil || named.GetName() == "" {
		return nil
	}
	name := named.GetName()
	seen := map[string]bool{}
	for {
		if seen[name] {
			return &ResolvedType{TypeName: name, Kind: "new_type"}
		}
		seen[name] = true

		if nt, ok := ti.newTypes[name]; ok {
			if orig := nt.GetOriginalType(); orig != nil {
				if next := orig.GetNewType(); next != nil {
					name = next.GetName()
					continue
				}
				return ti.resolveSpec(orig)
			}
			if tn := nt.GetTranslatedType(); tn != nil {
				return &ResolvedType{TypeName: name, Kind: "new_type", Bitwidth: tn.GetSdnBitwidth()}
			}
			return &ResolvedType{TypeName: name, Kind: "new_type"}
		}
		if _, ok := ti.serializableEnums[name]; ok {
			return &ResolvedType{TypeName: name, Kind: "serializable_enum"}
		}
		if _, ok := ti.structs[name]; ok {
			return &ResolvedType{TypeName: name, Kind: "struct"}
		}
		if _, ok := ti.headers[name]; ok {
			return &ResolvedType{TypeName: name, Kind: "header"}
		}
		if _, ok := ti.enums[name]; ok {
			return &ResolvedType{TypeName: name, Kind: "enum"}
		}
		return &ResolvedType{TypeName: name}
	}
}

// resolveSpec resolves a fully-inline P4DataTypeSpec (used by registers,
// digests, and new_type original_type declarations) to its concrete shape.
func (ti *TypeInfo) resolveSpec(spec *p4configv1.P4DataTypeSpec) *ResolvedType {
	if spec == nil {
		return nil
	}
	switch {
	case spec.GetBitstring() != nil:
		bs := spec.GetBitstring()
		switch {
		case bs.GetBit() != nil:
			return &ResolvedType{Kind: "bitstring", Bitwidth: bs.GetBit().GetBitwidth()}
		case bs.GetInt() != nil:
			return &ResolvedType{Kind: "bitstring", Bitwidth: bs.GetInt().GetBitwidth()}
		case bs.GetVarbit() != nil:
			return &ResolvedType{Kind: "bitstring", Bitwidth: bs.GetVarbit().GetMaxBitwidth()}
		}
		return &ResolvedType{Kind: "bitstring"}
	case spec.GetBool() != nil:
		return &ResolvedType{Kind: "bool", Bitwidth: 1}
	case spec.GetStruct() != nil:
		return &ResolvedType{Kind: "struct", TypeName: spec.GetStruct().GetName()}
	case spec.GetHeader() != nil:
		return &ResolvedType{Kind: "header", TypeName: spec.GetHeader().GetName()}
	case spec.GetHeaderUnion() != nil:
		return &ResolvedType{Kind: "header_union", TypeName: spec.GetHeaderUnion().GetName()}
	case spec.GetEnum() != nil:
		return &ResolvedType{Kind: "enum", TypeName: spec.GetEnum().GetName()}
	case spec.GetSerializableEnum() != nil:
		return &ResolvedType{Kind: "serializable_enum", TypeName: spec.GetSerializableEnum().GetName()}
	default:
		return &ResolvedType{}
	}
}
