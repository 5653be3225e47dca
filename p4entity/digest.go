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
	"time"

	"github.com/byllyfish/finsy/p4schema"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// DigestEntry configures how the switch batches and delivers a digest's
// controller notifications. An empty Digest name (the zero value) means
// "all digests".
type DigestEntry struct {
	Digest      string
	MaxListSize int32
	MaxTimeout  time.Duration
	AckTimeout  time.Duration
}

func (e DigestEntry) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.Digest == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_DigestEntry{DigestEntry: &p4v1.DigestEntry{}}}, nil
	}
	digest, err := schema.Digests().Get(e.Digest)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.DigestEntry{DigestId: digest.ID()}
	if e.MaxListSize != 0 || e.MaxTimeout != 0 || e.AckTimeout != 0 {
		entry.Config = &p4v1.DigestEntry_Config{
			MaxTimeoutNs: e.MaxTimeout.Nanoseconds(),
			MaxListSize:  e.MaxListSize,
			AckTimeoutNs: e.AckTimeout.Nanoseconds(),
		}
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_DigestEntry{DigestEntry: entry}}, nil
}

// DecodeDigestEntry decodes a wire DigestEntry.
func DecodeDigestEntry(msg *p4v1.DigestEntry, schema *p4schema.Schema) DigestEntry {
	if msg.GetDigestId() == 0 {
		return DigestEntry{}
	}
	entry := DigestEntry{}
	if digest, err := schema.Digests().Get(msg.GetDigestId()); err == nil {
		entry.Digest = digest.Alias()
	}
	if cfg := msg.GetConfig(); cfg != nil {
		entry.MaxListSize = cfg.GetMaxListSize()
		entry.MaxTimeout = time.Duration(cfg.GetMaxTimeoutNs())
		entry.AckTimeout = time.Duration(cfg.GetAckTimeoutNs())
	}
	return entry
}

// DigestList is a batch of decoded digest values delivered by the switch.
type DigestList struct {
	Digest    string
	ListID    uint64
	Timestamp int64
	Data      []any
}

// Ack builds the DigestListAck to send back, confirming receipt of the batch.
func (l DigestList) Ack() DigestListAck {
	return DigestListAck{Digest: l.Digest, ListID: l.ListID}
}

// DecodeDigestList decodes a StreamMessageResponse's DigestList payload.
// Compound digest struct types are not resolved field-by-field; each
// element is returned as its raw *p4v1.P4Data.
func DecodeDigestList(msg *p4v1.DigestList, schema *p4schema.Schema) DigestList {
	data := make([]any, 0, len(msg.GetData()))
	for _, d := range msg.GetData() {
		data = append(data, d)
	}
	name := ""
	if digest, err := schema.Digests().Get(msg.GetDigestId()); err == nil {
		name = digest.Alias()
	}
	return DigestList{
		Digest:    name,
		ListID:    msg.GetListId(),
		Timestamp: msg.GetTimestamp(),
		Data:      data,
	}
}

// DigestListAck acknowledges receipt of a digest list, letting the switch
// free its buffer and deliver the next batch.
type DigestListAck struct {
	Digest string
	ListID uint64
}

// EncodeUpdate renders the ack as a StreamMessageRequest for the stream.
func (a DigestListAck) EncodeUpdate(schema *p4schema.Schema) (*p4v1.StreamMessageRequest, error) {
	digest, err := schema.Digests().Get(a.Digest)
	if err != nil {
		return nil, err
	}
	return &p4v1.StreamMessageRequest{
		Update: &p4v1.StreamMessageRequest_DigestAck{
			DigestAck: &p4v1.DigestListAck{DigestId: digest.ID(), ListId: a.ListID},
		},
	}, nil
}
