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
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// RegisterEntry reads or writes a single element of a register array.
// An empty Register name (the zero value) means "all registers, all
// indices". Data follows the register's declared bitstring type; structs
// and other compound register types are not supported.
type RegisterEntry struct {
	Register string
	Index    *int64
	Data     any
}

func (RegisterEntry) modifyOnly() {}

func (e RegisterEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.Register == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_RegisterEntry{RegisterEntry: &p4v1.RegisterEntry{}}}, nil
	}
	register, err := schema.Registers().Get(e.Register)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.RegisterEntry{RegisterId: register.ID()}
	if e.Index != nil {
		entry.Index = &p4v1.Index{Index: *e.Index}
	}
	if e.Data != nil {
		data, err := encodeRegisterData(e.Data, register)
		if err != nil {
			return nil, fmt.Errorf("p4entity: register %q: %w", e.Register, err)
		}
		entry.Data = data
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_RegisterEntry{RegisterEntry: entry}}, nil
}

func encodeRegisterData(value any, register *p4schema.Register) (*p4v1.P4Data, error) {
	spec := register.TypeSpec()
	bitwidth := 0
	if spec != nil {
		bitwidth = int(spec.Bitwidth)
	}
	b, err := p4values.EncodeExact(value, bitwidth)
	if err != nil {
		return nil, err
	}
	return &p4v1.P4Data{Data: &p4v1.P4Data_Bitstring{Bitstring: b}}, nil
}

func decodeRegisterData(data *p4v1.P4Data, register *p4schema.Register) (any, error) {
	if data == nil {
		return nil, nil
	}
	spec := register.TypeSpec()
	bitwidth := 0
	if spec != nil {
		bitwidth = int(spec.Bitwidth)
	}
	bs, ok := data.GetData().(*p4v1.P4Data_Bitstring)
	if !ok {
		return nil, fmt.Errorf("p4entity: register %q: unsupported data kind %T", register.Name(), data.GetData())
	}
	return p4values.DecodeExact(bs.Bitstring, bitwidth, p4values.DecodeDefault)
}

// DecodeRegisterEntry decodes a wire RegisterEntry.
func DecodeRegisterEntry(msg *p4v1.RegisterEntry, schema *p4schema.Schema) (RegisterEntry, error) {
	if msg.GetRegisterId() == 0 {
		return RegisterEntry{}, nil
	}
	register, err := schema.Registers().Get(msg.GetRegisterId())
	if err != nil {
		return RegisterEntry{}, err
	}
	entry := RegisterEntry{Register: register.Alias()}
	if idx := msg.GetIndex(); idx != nil {
		i := idx.GetIndex()
		entry.Index = &i
	}
	if msg.GetData() != nil {
		data, err := decodeRegisterData(msg.GetData(), register)
		if err != nil {
			return RegisterEntry{}, err
		}
		entry.Data = data
	}
	return entry, nil
}
