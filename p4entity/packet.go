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

// PacketIn is a data-plane packet delivered to the controller, together
// with whatever controller packet metadata (e.g. ingress_port) the P4
// program declares for "packet_in".
type PacketIn struct {
	Payload  []byte
	Metadata map[string]any
}

// DecodePacketIn decodes a StreamMessageResponse's PacketIn payload.
func DecodePacketIn(msg *p4v1.PacketIn, schema *p4schema.Schema) (PacketIn, error) {
	packetIn := PacketIn{Payload: msg.GetPayload(), Metadata: map[string]any{}}

	cpm, err := schema.ControllerPacketMetadata().Get("packet_in")
	if err != nil {
		return packetIn, nil // no declared metadata; payload-only packet-in
	}
	for _, md := range msg.GetMetadata() {
		field, err := cpm.Metadata().Get(md.GetMetadataId())
		if err != nil {
			continue
		}
		value, err := p4values.DecodeExact(md.GetValue(), int(field.Bitwidth()), p4values.DecodeDefault)
		if err != nil {
			return PacketIn{}, err
		}
		packetIn.Metadata[field.Name()] = value
	}
	return packetIn, nil
}

// PacketOut is a data-plane packet injected by the controller, together
// with whatever controller packet metadata (e.g. egress_port) the P4
// program declares for "packet_out".
type PacketOut struct {
	Payload  []byte
	Metadata map[string]any
}

// EncodeUpdate renders the PacketOut as a StreamMessageRequest for the stream.
func (p PacketOut) EncodeUpdate(schema *p4schema.Schema) (*p4v1.StreamMessageRequest, error) {
	cpm, err := schema.ControllerPacketMetadata().Get("packet_out")
	if err != nil {
		return nil, fmt.Errorf("p4entity: no packet_out controller metadata declared: %w", err)
	}

	metadata := make([]*p4v1.PacketMetadata, 0, len(p.Metadata))
	for _, field := range cpm.Metadata().All() {
		value, ok := p.Metadata[field.Name()]
		if !ok {
			return nil, fmt.Errorf("p4entity: packet_out missing metadata %q", field.Name())
		}
		data, err := p4values.EncodeExact(value, int(field.Bitwidth()))
		if err != nil {
			return nil, fmt.Errorf("p4entity: packet_out metadata %q: %w", field.Name(), err)
		}
		metadata = append(metadata, &p4v1.PacketMetadata{MetadataId: field.ID(), Value: data})
	}

	return &p4v1.StreamMessageRequest{
		Update: &p4v1.StreamMessageRequest_Packet{
			Packet: &p4v1.PacketOut{Payload: p.Payload, Metadata: metadata},
		},
	}, nil
}
