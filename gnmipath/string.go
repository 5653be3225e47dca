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

package gnmipath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
)

// parseString parses the gNMI path string grammar (see
// https://github.com/openconfig/reference/blob/master/rpc/gnmi/gnmi-path-strings.md)
// into a *gnmi.Path. It does not accept an origin or target prefix; set
// those on the Path separately.
func parseString(value string) (*gnmipb.Path, error) {
	if value == "" || value == "/" {
		return &gnmipb.Path{}, nil
	}

	s := strings.TrimPrefix(value, "/")
	s = strings.TrimSuffix(s, "/")

	p := &stringParser{input: s}
	elems, err := p.parseElems()
	if err != nil {
		return nil, fmt.Errorf("gnmipath: parse failed: %w (value=%q)", err, value)
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("gnmipath: parse failed: trailing input %q (value=%q)", p.input[p.pos:], value)
	}

	path := &gnmipb.Path{}
	for _, e := range elems {
		path.Elem = append(path.Elem, &gnmipb.PathElem{Name: e.name, Key: e.keys})
	}
	return path, nil
}

type parsedElem struct {
	name string
	keys map[string]string
}

type stringParser struct {
	input string
	pos   int
}

func (p *stringParser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *stringParser) parseElems() ([]parsedElem, error) {
	var elems []parsedElem
	for {
		name, err := p.parseIdent("[]/")
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, fmt.Errorf("expected path element name at position %d", p.pos)
		}
		keys := map[string]string{}
		for {
			c, ok := p.peek()
			if !ok || c != '[' {
				break
			}
			p.pos++
			key, err := p.parseIdent("]=")
			if err != nil {
				return nil, err
			}
			if c2, ok2 := p.peek(); !ok2 || c2 != '=' {
				return nil, fmt.Errorf("expected '=' in key at position %d", p.pos)
			}
			p.pos++
			val, err := p.parseValue("]")
			if err != nil {
				return nil, err
			}
			if c3, ok3 := p.peek(); !ok3 || c3 != ']' {
				return nil, fmt.Errorf("expected ']' at position %d", p.pos)
			}
			p.pos++
			keys[key] = val
		}
		elems = append(elems, parsedElem{name: name, keys: keys})

		c, ok := p.peek()
		if !ok || c != '/' {
			break
		}
		p.pos++
	}
	return elems, nil
}

// parseIdent consumes characters until one of stop (or a backslash escape
// sequence of our own, or end of input), unescaping as it goes.
func (p *stringParser) parseIdent(stop string) (string, error) {
	var sb strings.Builder
	for {
		c, ok := p.peek()
		if !ok || c == '/' || strings.IndexByte(stop, c) >= 0 {
			break
		}
		if c == '\\' {
			ch, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(ch)
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	return sb.String(), nil
}

// parseValue is like parseIdent but values may contain '/' (unescaped).
func (p *stringParser) parseValue(stop string) (string, error) {
	var sb strings.Builder
	for {
		c, ok := p.peek()
		if !ok || strings.IndexByte(stop, c) >= 0 {
			break
		}
		if c == '\\' {
			ch, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(ch)
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	return sb.String(), nil
}

func (p *stringParser) parseEscape() (rune, error) {
	p.pos++ // consume backslash
	c, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("dangling escape at position %d", p.pos)
	}
	switch c {
	case '\\', '/', '[', ']', '=':
		p.pos++
		return rune(c), nil
	case 'n':
		p.pos++
		return '\n', nil
	case 'r':
		p.pos++
		return '\r', nil
	case 't':
		p.pos++
		return '\t', nil
	case 'x':
		return p.parseHexEscape(2)
	case 'u':
		return p.parseHexEscape(4)
	case 'U':
		return p.parseHexEscape(8)
	default:
		return 0, fmt.Errorf("invalid escape '\\%c' at position %d", c, p.pos)
	}
}

func (p *stringParser) parseHexEscape(digits int) (rune, error) {
	start := p.pos + 1
	if start+digits > len(p.input) {
		return 0, fmt.Errorf("truncated escape at position %d", p.pos)
	}
	hex := p.input[start : start+digits]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex escape %q at position %d: %w", hex, p.pos, err)
	}
	p.pos = start + digits
	return rune(v), nil
}

// toString renders a *gnmi.Path using the same escaping rules as the
// parser expects to round-trip: elements are escaped for "[]/", keys for
// "]=", and values for "]".
func toString(path *gnmipb.Path) string {
	if len(path.GetElem()) == 0 {
		return "/"
	}
	parts := make([]string, 0, len(path.GetElem()))
	for _, elem := range path.GetElem() {
		parts = append(parts, elemString(elem))
	}
	return "/" + strings.Join(parts, "/")
}

func elemString(elem *gnmipb.PathElem) string {
	var sb strings.Builder
	sb.WriteString(escape(elem.GetName(), "[]/"))

	keys := elem.GetKey()
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		sb.WriteByte('[')
		sb.WriteString(escape(k, "]="))
		sb.WriteByte('=')
		sb.WriteString(escape(keys[k], "]"))
		sb.WriteByte(']')
	}
	return sb.String()
}

func escape(value string, chars string) string {
	var sb strings.Builder
	for _, r := range value {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
			continue
		case '\r':
			sb.WriteString(`\r`)
			continue
		case '\t':
			sb.WriteString(`\t`)
			continue
		}
		if r < 0x20 {
			sb.WriteString(fmt.Sprintf(`\u%04x`, r))
			continue
		}
		if r < 0x80 && strings.ContainsRune(chars, r) {
			sb.WriteByte('\\')
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
