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

// MeterConfig is a two-rate-three-color meter's configured rates.
type MeterConfig struct {
	CIR    int64
	CBurst int64
	PIR    int64
	PBurst int64
}

func (c *MeterConfig) encode() *p4v1.MeterConfig {
	if c == nil {
		return nil
	}
	return &p4v1.MeterConfig{Cir: c.CIR, Cburst: c.CBurst, Pir: c.PIR, Pburst: c.PBurst}
}

func decodeMeterConfig(msg *p4v1.MeterConfig) *MeterConfig {
	if msg == nil {
		return nil
	}
	return &MeterConfig{CIR: msg.GetCir(), CBurst: msg.GetCburst(), PIR: msg.GetPir(), PBurst: msg.GetPburst()}
}

// MeterEntry reads or configures an indirect meter's rates at an index.
// An empty Meter name (the zero value) means "all meters, all indices".
type MeterEntry struct {
	Meter       string
	Index       *int64
	Config      *MeterConfig
	CounterData *MeterCounterData
}

func (MeterEntry) modifyOnly() {}

func (e MeterEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.Meter == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_MeterEntry{MeterEntry: &p4v1.MeterEntry{}}}, nil
	}
	meter, err := schema.Meters().Get(e.Meter)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.MeterEntry{
		MeterId:     meter.ID(),
		Config:      e.Config.encode(),
		CounterData: e.CounterData.encode(),
	}
	if e.Index != nil {
		entry.Index = &p4v1.Index{Index: *e.Index}
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_MeterEntry{MeterEntry: entry}}, nil
}

// DecodeMeterEntry decodes a wire MeterEntry.
func DecodeMeterEntry(msg *p4v1.MeterEntry, schema *p4schema.Schema) MeterEntry {
	if msg.GetMeterId() == 0 {
		return MeterEntry{}
	}
	entry := MeterEntry{
		Config:      decodeMeterConfig(msg.GetConfig()),
		CounterData: decodeMeterCounterData(msg.GetCounterData()),
	}
	if meter, err := schema.Meters().Get(msg.GetMeterId()); err == nil {
		entry.Meter = meter.Alias()
	}
	if idx := msg.GetIndex(); idx != nil {
		i := idx.GetIndex()
		entry.Index = &i
	}
	return entry
}

// DirectMeterEntry reads or configures the meter attached to a table entry.
type DirectMeterEntry struct {
	TableEntry  *TableEntry
	Config      *MeterConfig
	CounterData *MeterCounterData
}

func (DirectMeterEntry) modifyOnly() {}

func (e DirectMeterEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	var entry *p4v1.TableEntry
	var err error
	if e.TableEntry != nil {
		entry, err = e.TableEntry.encodeEntry(schema)
		if err != nil {
			return nil, err
		}
	} else {
		entry = &p4v1.TableEntry{}
	}
	dme := &p4v1.DirectMeterEntry{
		TableEntry:  entry,
		Config:      e.Config.encode(),
		CounterData: e.CounterData.encode(),
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_DirectMeterEntry{DirectMeterEntry: dme}}, nil
}

// DecodeDirectMeterEntry decodes a wire DirectMeterEntry.
func DecodeDirectMeterEntry(msg *p4v1.DirectMeterEntry, schema *p4schema.Schema) (DirectMeterEntry, error) {
	entry := DirectMeterEntry{
		Config:      decodeMeterConfig(msg.GetConfig()),
		CounterData: decodeMeterCounterData(msg.GetCounterData()),
	}
	if te := msg.GetTableEntry(); te != nil && te.GetTableId() != 0 {
		decoded, err := DecodeTableEntry(te, schema)
		if err != nil {
			return DirectMeterEntry{}, err
		}
		entry.TableEntry = &decoded
	}
	return entry, nil
}
