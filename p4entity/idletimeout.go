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

// IdleTimeoutNotification reports the table entries a switch has detected
// as idle past their configured timeout.
type IdleTimeoutNotification struct {
	TableEntry []TableEntry
	Timestamp  int64
}

// DecodeIdleTimeoutNotification decodes a StreamMessageResponse's
// IdleTimeoutNotification payload.
func DecodeIdleTimeoutNotification(msg *p4v1.IdleTimeoutNotification, schema *p4schema.Schema) (IdleTimeoutNotification, error) {
	entries := make([]TableEntry, 0, len(msg.GetTableEntry()))
	for _, te := range msg.GetTableEntry() {
		entry, err := DecodeTableEntry(te, schema)
		if err != nil {
			return IdleTimeoutNotification{}, err
		}
		entries = append(entries, entry)
	}
	return IdleTimeoutNotification{TableEntry: entries, Timestamp: msg.GetTimestamp()}, nil
}
