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

// Package gnmipath wraps a gnmi.Path protobuf with an immutable, string-
// path-friendly value type: parsing/rendering the
// "/a/b[k=v]/c" path string grammar, and indexed/keyed/sliced access and
// construction, modeled on Finsy's Python GNMIPath.
package gnmipath

import (
	"fmt"
	"strings"

	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
)

// Path is an immutable wrapper around a *gnmi.Path. Every method that
// would mutate the path instead returns a new Path, leaving the
// receiver untouched.
type Path struct {
	origin string
	target string
	elem   []*gnmipb.PathElem
}

// Root is the empty path ("/").
var Root = Path{}

// New builds a Path from a sequence of element names. Each name may carry
// "[key=value]" suffixes using the same escaping rules as Parse.
func New(names ...string) (Path, error) {
	return Parse(strings.Join(names, "/"))
}

// Parse parses a gNMI path string, e.g. "interfaces/interface[name=eth0]/state".
// A leading "origin:" prefix is recognized and split off into Origin().
func Parse(value string) (Path, error) {
	origin := ""
	if idx := strings.IndexByte(value, ':'); idx >= 0 && !strings.ContainsAny(value[:idx], "/[]") {
		origin, value = value[:idx], value[idx+1:]
	}
	pb, err := parseString(value)
	if err != nil {
		return Path{}, err
	}
	return Path{origin: origin, elem: pb.GetElem()}, nil
}

// MustParse is like Parse but panics on error; meant for package-level
// path constants built from literals known to be valid.
func MustParse(value string) Path {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return p
}

// FromProto wraps an existing *gnmi.Path. The proto is not copied; callers
// must not mutate it afterwards.
func FromProto(pb *gnmipb.Path) Path {
	if pb == nil {
		return Path{}
	}
	return Path{origin: pb.GetOrigin(), target: pb.GetTarget(), elem: pb.GetElem()}
}

// Proto renders the Path back into a *gnmi.Path protobuf.
func (p Path) Proto() *gnmipb.Path {
	return &gnmipb.Path{
		Origin: p.origin,
		Target: p.target,
		Elem:   append([]*gnmipb.PathElem(nil), p.elem...),
	}
}

// String renders the Path using the "/a/b[k=v]" grammar, including an
// "origin:" prefix when Origin is set.
func (p Path) String() string {
	s := toString(&gnmipb.Path{Elem: p.elem})
	if p.origin != "" {
		return p.origin + ":" + s
	}
	return s
}

// Len returns the number of path elements.
func (p Path) Len() int { return len(p.elem) }

// IsEmpty reports whether the path has no elements, no origin, and no target.
func (p Path) IsEmpty() bool {
	return len(p.elem) == 0 && p.origin == "" && p.target == ""
}

// Origin returns the path's origin, or "" if unset.
func (p Path) Origin() string { return p.origin }

// Target returns the path's target, or "" if unset.
func (p Path) Target() string { return p.target }

// WithOrigin returns a copy of the Path with its origin set.
func (p Path) WithOrigin(origin string) Path {
	p.origin = origin
	return p
}

// WithTarget returns a copy of the Path with its target set.
func (p Path) WithTarget(target string) Path {
	p.target = target
	return p
}

// Name returns the name of the element at index i (supports negative
// indices counting from the end, as in Python).
func (p Path) Name(i int) string {
	e := p.elemAt(i)
	if e == nil {
		return ""
	}
	return e.GetName()
}

// First returns the name of the first element, or "" if the path is empty.
func (p Path) First() string { return p.Name(0) }

// Last returns the name of the last element, or "" if the path is empty.
func (p Path) Last() string { return p.Name(-1) }

func (p Path) elemAt(i int) *gnmipb.PathElem {
	n := len(p.elem)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil
	}
	return p.elem[i]
}

// Key returns the value of key "name" on the element at index i, and
// whether it was present.
func (p Path) Key(i int, name string) (string, bool) {
	e := p.elemAt(i)
	if e == nil {
		return "", false
	}
	v, ok := e.GetKey()[name]
	return v, ok
}

// KeyByName returns the value of key "name" on the first element that
// carries it, scanning front-to-back, and whether it was found.
func (p Path) KeyByName(name string) (string, bool) {
	for _, e := range p.elem {
		if v, ok := e.GetKey()[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Keys returns a copy of the key/value map for the element at index i.
func (p Path) Keys(i int) map[string]string {
	e := p.elemAt(i)
	if e == nil {
		return nil
	}
	out := make(map[string]string, len(e.GetKey()))
	for k, v := range e.GetKey() {
		out[k] = v
	}
	return out
}

// Contains reports whether any element has the given name.
func (p Path) Contains(name string) bool {
	for _, e := range p.elem {
		if e.GetName() == name {
			return true
		}
	}
	return false
}

// Append returns a new Path with the given suffix path's elements joined
// on after this path's elements. Origin/target come from the receiver.
func (p Path) Append(suffix Path) Path {
	out := p.clone()
	out.elem = append(out.elem, cloneElems(suffix.elem)...)
	return out
}

// AppendName is a convenience for Append(MustParse(name)).
func (p Path) AppendName(names ...string) (Path, error) {
	suffix, err := New(names...)
	if err != nil {
		return Path{}, err
	}
	return p.Append(suffix), nil
}

// Prepend returns a new Path with this path's elements appended after the
// given prefix path's elements. The result's origin/target come from prefix.
func (p Path) Prepend(prefix Path) Path {
	out := prefix.clone()
	out.elem = append(out.elem, cloneElems(p.elem)...)
	return out
}

// Slice returns the sub-path from element lo (inclusive) to hi
// (exclusive), supporting negative indices as in Python slicing. Origin
// and target are preserved.
func (p Path) Slice(lo, hi int) Path {
	n := len(p.elem)
	lo = clampIndex(lo, n)
	hi = clampIndex(hi, n)
	if hi < lo {
		hi = lo
	}
	out := p.clone()
	out.elem = cloneElems(p.elem[lo:hi])
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// SetKey returns a new Path with the element at index i given the key set
// to value (the element's other keys are left untouched).
func (p Path) SetKey(i int, key, value string) (Path, error) {
	n := len(p.elem)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return Path{}, fmt.Errorf("gnmipath: index %d out of range (len=%d)", i, n)
	}
	out := p.clone()
	e := out.elem[idx]
	newKeys := make(map[string]string, len(e.GetKey())+1)
	for k, v := range e.GetKey() {
		newKeys[k] = v
	}
	newKeys[key] = value
	out.elem[idx] = &gnmipb.PathElem{Name: e.GetName(), Key: newKeys}
	return out, nil
}

// Equal reports whether two paths have identical origin, target, and elements.
func (p Path) Equal(other Path) bool {
	if p.origin != other.origin || p.target != other.target {
		return false
	}
	if len(p.elem) != len(other.elem) {
		return false
	}
	for i, e := range p.elem {
		o := other.elem[i]
		if e.GetName() != o.GetName() {
			return false
		}
		if len(e.GetKey()) != len(o.GetKey()) {
			return false
		}
		for k, v := range e.GetKey() {
			if o.GetKey()[k] != v {
				return false
			}
		}
	}
	return true
}

func (p Path) clone() Path {
	return Path{origin: p.origin, target: p.target, elem: cloneElems(p.elem)}
}

func cloneElems(elems []*gnmipb.PathElem) []*gnmipb.PathElem {
	out := make([]*gnmipb.PathElem, len(elems))
	for i, e := range elems {
		keys := make(map[string]string, len(e.GetKey()))
		for k, v := range e.GetKey() {
			keys[k] = v
		}
		out[i] = &gnmipb.PathElem{Name: e.GetName(), Key: keys}
	}
	return out
}
