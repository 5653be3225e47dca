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

// Package pbuf holds small protobuf text/JSON conversion helpers and a
// message logger used to trace P4Runtime/gNMI traffic, in the style of
// the teacher's textual RPC tracing.
package pbuf

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

// ToText renders a protobuf message as single-line text format.
func ToText(msg proto.Message) string {
	b, err := prototext.MarshalOptions{Multiline: false}.Marshal(msg)
	if err != nil {
		return fmt.Sprintf("<pbuf: marshal error: %v>", err)
	}
	return string(b)
}

// ToTextMultiline renders a protobuf message as indented, multi-line text
// format.
func ToTextMultiline(msg proto.Message) string {
	b, err := prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Sprintf("<pbuf: marshal error: %v>", err)
	}
	return string(b)
}

// ToJSON renders a protobuf message as JSON, preserving the original
// proto field names (snake_case) rather than lowerCamelCase.
func ToJSON(msg proto.Message) string {
	b, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(msg)
	if err != nil {
		return fmt.Sprintf("<pbuf: marshal error: %v>", err)
	}
	return string(b)
}

// FromText parses protobuf text format (or JSON, if data starts with '{')
// into a new instance of msg's type.
func FromText[M proto.Message](data string, newMsg func() M) (M, error) {
	msg := newMsg()
	var err error
	if len(data) > 0 && data[0] == '{' {
		err = protojson.Unmarshal([]byte(data), msg)
	} else {
		err = prototext.Unmarshal([]byte(data), msg)
	}
	return msg, err
}
