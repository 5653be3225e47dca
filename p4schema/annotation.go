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
	"fmt"
	"regexp"
)

// Annotation is a parsed P4 annotation, e.g. `@my_anno("a", "b")`.
type Annotation struct {
	Name string
	Body string
}

var unstructuredAnnotationRE = regexp.MustCompile(`(?s)^@(\w+)(?:\((.*)\))?$`)

func parseUnstructuredAnnotation(annotation string) (Annotation, error) {
	m := unstructuredAnnotationRE.FindStringSubmatch(annotation)
	if m == nil {
		return Annotation{}, fmt.Errorf("p4schema: unsupported annotation: %q", annotation)
	}
	return Annotation{Name: m[1], Body: m[2]}, nil
}

// hasAnnotations is implemented by any protobuf message exposing a plain
// []string Annotations field (every P4Info entity with a Preamble, plus the
// field-level entities nested inside tables/actions).
type hasAnnotations interface {
	GetAnnotations() []string
}

func parseAnnotations(pbuf hasAnnotations) []Annotation {
	raw := pbuf.GetAnnotations()
	result := make([]Annotation, 0, len(raw))
	for _, a := range raw {
		anno, err := parseUnstructuredAnnotation(a)
		if err != nil {
			// Preserve the raw text under an empty name rather than fail
			// schema loading over a single malformed annotation string.
			result = append(result, Annotation{Name: "", Body: a})
			continue
		}
		result = append(result, anno)
	}
	return result
}

// Find returns the first annotation with the given name, if any.
func Find(annotations []Annotation, name string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Has reports whether annotations contains one named name.
func Has(annotations []Annotation, name string) bool {
	_, ok := Find(annotations, name)
	return ok
}
