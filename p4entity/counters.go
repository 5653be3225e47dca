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

// CounterData is the byte/packet tally kept by a counter or direct counter.
type CounterData struct {
	ByteCount   int64
	PacketCount int64
}

func (d *CounterData) encode() *p4v1.CounterData {
	if d == nil {
		return nil
	}
	return &p4v1.CounterData{ByteCount: d.ByteCount, PacketCount: d.PacketCount}
}

func decodeCounterData(msg *p4v1.CounterData) *CounterData {
	if msg == nil {
		return nil
	}
	return &CounterData{ByteCount: msg.GetByteCount(), PacketCount: msg.GetPacketCount()}
}

// MeterCounterData is the per-color tally kept alongside a two-rate meter.
type MeterCounterData struct {
	Green  CounterData
	Yellow CounterData
	Red    CounterData
}

func (d *MeterCounterData) encode() *p4v1.MeterCounterData {
	if d == nil {
		return nil
	}
	return &p4v1.MeterCounterData{
		Green:  d.Green.encode(),
		Yellow: d.Yellow.encode(),
		Red:    d.Red.encode(),
	}
}

func decodeMeterCounterData(msg *p4v1.MeterCounterData) *MeterCounterData {
	if msg == nil {
		return nil
	}
	return &MeterCounterData{
		Green:  *decodeCounterData(msg.GetGreen()),
		Yellow: *decodeCounterData(msg.GetYellow()),
		Red:    *decodeCounterData(msg.GetRed()),
	}
}

// CounterEntry reads or resets an indirect counter's value at an index.
// An empty Counter name (the zero value) means "all counters, all indices".
type CounterEntry struct {
	Counter string
	Index   *int64
	Data    *CounterData
}

func (CounterEntry) modifyOnly() {}

// EncodeEntity encodes the CounterEntry as a p4v1.Entity for a Read/Write RPC.
func (e CounterEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.Counter == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_CounterEntry{CounterEntry: &p4v1.CounterEntry{}}}, nil
	}
	counter, err := schema.Counters().Get(e.Counter)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.CounterEntry{
		CounterId: counter.ID(),
		Data:      e.Data.encode(),
	}
	if e.Index != nil {
		entry.Index = &p4v1.Index{Index: *e.Index}
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_CounterEntry{CounterEntry: entry}}, nil
}

// DecodeCounterEntry decodes a wire CounterEntry into a CounterEntry.
func DecodeCounterEntry(msg *p4v1.CounterEntry, schema *p4schema.Schema) CounterEntry {
	if msg.GetCounterId() == 0 {
		return CounterEntry{}
	}
	entry := CounterEntry{Data: decodeCounterData(msg.GetData())}
	if counter, err := schema.Counters().Get(msg.GetCounterId()); err == nil {
		entry.Counter = counter.Alias()
	}
	if idx := msg.GetIndex(); idx != nil {
		i := idx.GetIndex()
		entry.Index = &i
	}
	return entry
}

// DirectCounterEntry reads or resets the counter attached to a table entry.
type DirectCounterEntry struct {
	TableEntry *TableEntry
	Data       *CounterData
}

func (DirectCounterEntry) modifyOnly() {}

func (e DirectCounterEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
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
	dce := &p4v1.DirectCounterEntry{
		TableEntry: entry,
		Data:       e.Data.encode(),
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_DirectCounterEntry{DirectCounterEntry: dce}}, nil
}

// DecodeDirectCounterEntry decodes a wire DirectCounterEntry.
func DecodeDirectCounterEntry(msg *p4v1.DirectCounterEntry, schema *p4schema.Schema) (DirectCounterEntry, error) {
	entry := DirectCounterEntry{Data: decodeCounterData(msg.GetData())}
	if te := msg.GetTableEntry(); te != nil && te.GetTableId() != 0 {
		decoded, err := DecodeTableEntry(te, schema)
		if err != nil {
			return DirectCounterEntry{}, err
		}
		entry.TableEntry = &decoded
	}
	return entry, nil
}
