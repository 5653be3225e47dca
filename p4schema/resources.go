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

// Counter describes an indirect (standalone) P4Info counter.
type Counter struct {
	pbuf        *p4configv1.Counter
	annotations []Annotation
}

func newCounter(pbuf *p4configv1.Counter) *Counter {
	return &Counter{pbuf: pbuf, annotations: parseAnnotations(pbuf.GetPreamble())}
}

func (c *Counter) ID() uint32    { return c.pbuf.GetPreamble().GetId() }
func (c *Counter) Name() string  { return c.pbuf.GetPreamble().GetName() }
func (c *Counter) Alias() string { return c.pbuf.GetPreamble().GetAlias() }
func (c *Counter) Annotations() []Annotation { return c.annotations }
func (c *Counter) Size() int64   { return c.pbuf.GetSize() }
func (c *Counter) Unit() p4configv1.CounterSpec_Unit { return c.pbuf.GetSpec().GetUnit() }

// DirectCounter describes a counter attached directly to a table's entries.
type DirectCounter struct {
	pbuf        *p4configv1.DirectCounter
	annotations []Annotation
}

func newDirectCounter(pbuf *p4configv1.DirectCounter) *DirectCounter {
	return &DirectCounter{pbuf: pbuf, annotations: parseAnnotations(pbuf.GetPreamble())}
}

func (c *DirectCounter) ID() uint32    { return c.pbuf.GetPreamble().GetId() }
func (c *DirectCounter) Name() string  { return c.pbuf.GetPreamble().GetName() }
func (c *DirectCounter) Alias() string { return c.pbuf.GetPreamble().GetAlias() }
func (c *DirectCounter) Annotations() []Annotation { return c.annotations }
func (c *DirectCounter) Unit() p4configv1.CounterSpec_Unit { return c.pbuf.GetSpec().GetUnit() }
func (c *DirectCounter) DirectTableID() uint32 { return c.pbuf.GetDirectTableId() }

// Meter describes an indirect (standalone) P4Info meter.
type Meter struct {
	pbuf        *p4configv1.Meter
	annotations []Annotation
}

func newMeter(pbuf *p4configv1.Meter) *Meter {
	return &Meter{pbuf: pbuf, annotations: parseAnnotations(pbuf.GetPreamble())}
}

func (m *Meter) ID() uint32    { return m.pbuf.GetPreamble().GetId() }
func (m *Meter) Name() string  { return m.pbuf.GetPreamble().GetName() }
func (m *Meter) Alias() string { return m.pbuf.GetPreamble().GetAlias() }
func (m *Meter) Annotations() []Annotation { return m.annotations }
func (m *Meter) Size() int64   { return m.pbuf.GetSize() }
func (m *Meter) Unit() p4configv1.MeterSpec_Unit { return m.pbuf.GetSpec().GetUnit() }

// DirectMeter describes a meter attached directly to a table's entries.
type DirectMeter struct {
	pbuf        *p4configv1.DirectMeter
	annotations []Annotation
}

func newDirectMeter(pbuf *p4configv1.DirectMeter) *DirectMeter {
	return &DirectMeter{pbuf: pbuf, annotations: parseAnnotations(pbuf.GetPreamble())}
}

func (m *DirectMeter) ID() uint32    { return m.pbuf.GetPreamble().GetId() }
func (m *DirectMeter) Name() string  { return m.pbuf.GetPreamble().GetName() }
func (m *DirectMeter) Alias() string { return m.pbuf.GetPreamble().GetAlias() }
func (m *DirectMeter) Annotations() []Annotation { return m.annotations }
func (m *DirectMeter) Unit() p4configv1.MeterSpec_Unit { return m.pbuf.GetSpec().GetUnit() }
func (m *DirectMeter) DirectTableID() uint32 { return m.pbuf.GetDirectTableId() }

// Register describes a P4Info register array.
type Register struct {
	pbuf        *p4configv1.Register
	annotations []Annotation
	typeSpec    *ResolvedType
}

func newRegister(pbuf *p4configv1.Register, ti *TypeInfo) *Register {
	return &Register{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
		typeSpec:    ti.resolveSpec(pbuf.GetTypeSpec()),
	}
}

func (r *Register) ID() uint32    { return r.pbuf.GetPreamble().GetId() }
func (r *Register) Name() string  { return r.pbuf.GetPreamble().GetName() }
func (r *Register) Alias() string { return r.pbuf.GetPreamble().GetAlias() }
func (r *Register) Annotations() []Annotation { return r.annotations }
func (r *Register) Size() int32   { return r.pbuf.GetSize() }
func (r *Register) TypeSpec() *ResolvedType { return r.typeSpec }

// Digest describes a P4Info digest: a struct type the dataplane can send
// the controller, batched, out of band from packet-in.
type Digest struct {
	pbuf        *p4configv1.Digest
	annotations []Annotation
	typeSpec    *ResolvedType
}

func newDigest(pbuf *p4configv1.Digest, ti *TypeInfo) *Digest {
	return &Digest{
		pbuf:        pbuf,
		annotations: parseAnnotations(pbuf.GetPreamble()),
		typeSpec:    ti.resolveSpec(pbuf.GetTypeSpec()),
	}
}

func (d *Digest) ID() uint32    { return d.pbuf.GetPreamble().GetId() }
func (d *Digest) Name() string  { return d.pbuf.GetPreamble().GetName() }
func (d *Digest) Alias() string { return d.pbuf.GetPreamble().GetAlias() }
func (d *Digest) Annotations() []Annotation { return d.annotations }
func (d *Digest) TypeSpec() *ResolvedType { return d.typeSpec }

// ValueSet describes a P4Info value_set: a controller-programmable set of
// values a parser can match against (e.g. `select` with `value_set`).
type ValueSet struct {
	pbuf        *p4configv1.ValueSet
	annotations []Annotation
}

func newValueSet(pbuf *p4configv1.ValueSet) *ValueSet {
	return &ValueSet{pbuf: pbuf, annotations: parseAnnotations(pbuf.GetPreamble())}
}

func (v *ValueSet) ID() uint32    { return v.pbuf.GetPreamble().GetId() }
func (v *ValueSet) Name() string  { return v.pbuf.GetPreamble().GetName() }
func (v *ValueSet) Alias() string { return v.pbuf.GetPreamble().GetAlias() }
func (v *ValueSet) Annotations() []Annotation { return v.annotations }
func (v *ValueSet) Size() int32   { return v.pbuf.GetSize() }
func (v *ValueSet) Match() []*p4configv1.MatchField { return v.pbuf.GetMatch() }
