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

// Package p4schema models a P4Info schema: the tables, actions, and other
// entities a P4Runtime switch pipeline exposes, indexed by name and by
// numeric ID the way switch code looks them up.
package p4schema

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

// Schema wraps a parsed P4Info document and indexes every entity kind by
// name/alias and by numeric ID.
//
// The zero value (via Empty) represents "no pipeline configured", matching
// a Switch that hasn't completed its PIPELINE_CHECK step yet.
type Schema struct {
	info  *p4configv1.P4Info
	blob  []byte
	cookie uint64

	tables                   *EntityMap[*Table]
	actions                  *EntityMap[*Action]
	actionProfiles           *EntityMap[*ActionProfile]
	controllerPacketMetadata *EntityMap[*ControllerPacketMetadata]
	directCounters           *EntityMap[*DirectCounter]
	directMeters             *EntityMap[*DirectMeter]
	counters                 *EntityMap[*Counter]
	meters                   *EntityMap[*Meter]
	registers                *EntityMap[*Register]
	digests                  *EntityMap[*Digest]
	valueSets                *EntityMap[*ValueSet]
	typeInfo                 *TypeInfo
}

// Empty is the schema used before a pipeline has been configured.
var Empty = &Schema{
	tables:                   newEntityMap[*Table]("table"),
	actions:                  newEntityMap[*Action]("action"),
	actionProfiles:           newEntityMap[*ActionProfile]("action profile"),
	controllerPacketMetadata: newEntityMap[*ControllerPacketMetadata]("controller packet metadata"),
	directCounters:           newEntityMap[*DirectCounter]("direct counter"),
	directMeters:             newEntityMap[*DirectMeter]("direct meter"),
	counters:                 newEntityMap[*Counter]("counter"),
	meters:                   newEntityMap[*Meter]("meter"),
	registers:                newEntityMap[*Register]("register"),
	digests:                  newEntityMap[*Digest]("digest"),
	valueSets:                newEntityMap[*ValueSet]("value set"),
	typeInfo:                 &TypeInfo{},
}

// LoadFile reads a P4Info file, auto-detecting text-proto vs. binary-proto
// encoding, and an optional compiled pipeline blob (p4blob, e.g. a BMv2 JSON
// or Tofino binary config) to pair with it.
func LoadFile(p4infoPath string, p4blobPath string) (*Schema, error) {
	data, err := os.ReadFile(p4infoPath)
	if err != nil {
		return nil, fmt.Errorf("p4schema: reading %s: %w", p4infoPath, err)
	}

	var blob []byte
	if p4blobPath != "" {
		blob, err = os.ReadFile(p4blobPath)
		if err != nil {
			return nil, fmt.Errorf("p4schema: reading %s: %w", p4blobPath, err)
		}
	}

	info, err := unmarshalP4Info(data)
	if err != nil {
		return nil, fmt.Errorf("p4schema: parsing %s: %w", p4infoPath, err)
	}
	return New(info, blob)
}

// ParseP4Info auto-detects text-proto vs. binary-proto encoding and parses
// an in-memory P4Info document, for callers that already have the bytes
// (e.g. a SwitchOptions configured with an in-memory P4Info) rather than a
// file path.
func ParseP4Info(data []byte) (*p4configv1.P4Info, error) {
	return unmarshalP4Info(data)
}

// unmarshalP4Info auto-detects text-proto vs. binary-proto P4Info encoding.
// Binary-proto P4Info files always start with a valid protobuf field tag;
// text-proto files are, in practice, ASCII starting with a field name or a
// comment. We try binary first since a text file is very unlikely to also
// be parseable as valid binary protobuf.
func unmarshalP4Info(data []byte) (*p4configv1.P4Info, error) {
	info := &p4configv1.P4Info{}
	if err := proto.Unmarshal(data, info); err == nil {
		return info, nil
	}

	info = &p4configv1.P4Info{}
	if err := prototext.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("not a valid text-proto or binary-proto P4Info: %w", err)
	}
	return info, nil
}

// New builds a Schema from an already-parsed P4Info message and its
// associated pipeline blob.
func New(info *p4configv1.P4Info, blob []byte) (*Schema, error) {
	if info == nil {
		return Empty, nil
	}

	s := &Schema{
		info: info,
		blob: blob,

		tables:                   newEntityMap[*Table]("table"),
		actions:                  newEntityMap[*Action]("action"),
		actionProfiles:           newEntityMap[*ActionProfile]("action profile"),
		controllerPacketMetadata: newEntityMap[*ControllerPacketMetadata]("controller packet metadata"),
		directCounters:           newEntityMap[*DirectCounter]("direct counter"),
		directMeters:             newEntityMap[*DirectMeter]("direct meter"),
		counters:                 newEntityMap[*Counter]("counter"),
		meters:                   newEntityMap[*Meter]("meter"),
		registers:                newEntityMap[*Register]("register"),
		digests:                  newEntityMap[*Digest]("digest"),
		valueSets:                newEntityMap[*ValueSet]("value set"),
	}
	s.typeInfo = newTypeInfo(info.GetTypeInfo())

	for _, a := range info.GetActions() {
		s.actions.add(newAction(a, s.typeInfo))
	}
	for _, ap := range info.GetActionProfiles() {
		s.actionProfiles.add(newActionProfile(ap, s.actions))
	}
	for _, cpm := range info.GetControllerPacketMetadata() {
		s.controllerPacketMetadata.add(newControllerPacketMetadata(cpm, s.typeInfo))
	}
	for _, dc := range info.GetDirectCounters() {
		s.directCounters.add(newDirectCounter(dc))
	}
	for _, dm := range info.GetDirectMeters() {
		s.directMeters.add(newDirectMeter(dm))
	}
	for _, c := range info.GetCounters() {
		s.counters.add(newCounter(c))
	}
	for _, m := range info.GetMeters() {
		s.meters.add(newMeter(m))
	}
	for _, r := range info.GetRegisters() {
		s.registers.add(newRegister(r, s.typeInfo))
	}
	for _, d := range info.GetDigests() {
		s.digests.add(newDigest(d, s.typeInfo))
	}
	for _, vs := range info.GetValueSets() {
		s.valueSets.add(newValueSet(vs))
	}
	for _, t := range info.GetTables() {
		s.tables.add(newTable(t, s))
	}

	s.cookie = computeCookie(info, blob)
	return s, nil
}

func computeCookie(info *p4configv1.P4Info, blob []byte) uint64 {
	bytes, err := proto.MarshalOptions{Deterministic: true}.Marshal(info)
	if err != nil {
		return 0
	}
	h := sha256.New()
	h.Write(bytes)
	h.Write(blob)
	digest := h.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8])
}

// IsConfigured reports whether a pipeline has been loaded.
func (s *Schema) IsConfigured() bool { return s != nil && s.info != nil }

// P4Info returns the underlying parsed P4Info message.
func (s *Schema) P4Info() *p4configv1.P4Info { return s.info }

// P4Blob returns the compiled pipeline blob paired with this P4Info.
func (s *Schema) P4Blob() []byte { return s.blob }

// Cookie returns a stable integer derived from the P4Info and pipeline
// blob content, suitable as a ForwardingPipelineConfig cookie.
func (s *Schema) Cookie() uint64 { return s.cookie }

// PipelineConfig builds a ForwardingPipelineConfig for SetForwardingPipelineConfig.
func (s *Schema) PipelineConfig() *p4v1.ForwardingPipelineConfig {
	return &p4v1.ForwardingPipelineConfig{
		P4Info:         s.info,
		P4DeviceConfig: s.blob,
		Cookie:         &p4v1.ForwardingPipelineConfig_Cookie{Cookie: s.cookie},
	}
}

// Name is the P4 program's `pkg_info.name`, if set.
func (s *Schema) Name() string {
	if !s.IsConfigured() {
		return ""
	}
	return s.info.GetPkgInfo().GetName()
}

// Arch is the P4 program's `pkg_info.arch`, if set.
func (s *Schema) Arch() string {
	if !s.IsConfigured() {
		return ""
	}
	return s.info.GetPkgInfo().GetArch()
}

func (s *Schema) Tables() *EntityMap[*Table]                                       { return s.tables }
func (s *Schema) Actions() *EntityMap[*Action]                                      { return s.actions }
func (s *Schema) ActionProfiles() *EntityMap[*ActionProfile]                        { return s.actionProfiles }
func (s *Schema) ControllerPacketMetadata() *EntityMap[*ControllerPacketMetadata]   { return s.controllerPacketMetadata }
func (s *Schema) DirectCounters() *EntityMap[*DirectCounter]                        { return s.directCounters }
func (s *Schema) DirectMeters() *EntityMap[*DirectMeter]                           { return s.directMeters }
func (s *Schema) Counters() *EntityMap[*Counter]                                    { return s.counters }
func (s *Schema) Meters() *EntityMap[*Meter]                                        { return s.meters }
func (s *Schema) Registers() *EntityMap[*Register]                                  { return s.registers }
func (s *Schema) Digests() *EntityMap[*Digest]                                      { return s.digests }
func (s *Schema) ValueSets() *EntityMap[*ValueSet]                                  { return s.valueSets }
func (s *Schema) TypeInfo() *TypeInfo                                               { return s.typeInfo }
