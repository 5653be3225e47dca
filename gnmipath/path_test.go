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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimplePath(t *testing.T) {
	p, err := Parse("/interfaces/interface[name=eth0]/state/counters")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, "interfaces", p.First())
	assert.Equal(t, "counters", p.Last())

	v, ok := p.Key(1, "name")
	assert.True(t, ok)
	assert.Equal(t, "eth0", v)
}

func TestStringRoundTrip(t *testing.T) {
	const value = "/interfaces/interface[name=eth0]/state"
	p, err := Parse(value)
	require.NoError(t, err)
	assert.Equal(t, value, p.String())
}

func TestParseEmptyPath(t *testing.T) {
	p, err := Parse("/")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Equal(t, "/", p.String())
}

func TestParseOrigin(t *testing.T) {
	p, err := Parse("openconfig:/interfaces/interface[name=eth0]")
	require.NoError(t, err)
	assert.Equal(t, "openconfig", p.Origin())
	assert.Equal(t, "openconfig:/interfaces/interface[name=eth0]", p.String())
}

func TestEscapedKeyValue(t *testing.T) {
	// Key values are delimited by ']', not '/', so a literal '/' inside a
	// value needs no escaping.
	p, err := Parse(`/a/b[k=va/lue]`)
	require.NoError(t, err)
	v, ok := p.Key(1, "k")
	require.True(t, ok)
	assert.Equal(t, "va/lue", v)
	assert.Equal(t, `/a/b[k=va/lue]`, p.String())
}

func TestUnicodeEscape(t *testing.T) {
	p, err := Parse(`/a[k=\U000000e9]`)
	require.NoError(t, err)
	v, _ := p.Key(0, "k")
	assert.Equal(t, "é", v)
}

func TestKeysSortedOnOutput(t *testing.T) {
	p, err := New("a")
	require.NoError(t, err)
	p, err = p.SetKey(0, "z", "1")
	require.NoError(t, err)
	p, err = p.SetKey(0, "a", "2")
	require.NoError(t, err)
	assert.Equal(t, "/a[a=2][z=1]", p.String())
}

func TestAppendAndPrepend(t *testing.T) {
	base, err := Parse("/interfaces/interface[name=eth0]")
	require.NoError(t, err)
	suffix, err := Parse("/state/counters")
	require.NoError(t, err)

	joined := base.Append(suffix)
	assert.Equal(t, "/interfaces/interface[name=eth0]/state/counters", joined.String())

	prepended := suffix.Prepend(base)
	assert.True(t, prepended.Equal(joined))
}

func TestSlice(t *testing.T) {
	p, err := Parse("/a/b/c/d")
	require.NoError(t, err)

	assert.Equal(t, "/b/c", p.Slice(1, 3).String())
	assert.Equal(t, "/c/d", p.Slice(-2, 4).String())
}

func TestSetKeyIsImmutable(t *testing.T) {
	p, err := New("a")
	require.NoError(t, err)
	p2, err := p.SetKey(0, "k", "v")
	require.NoError(t, err)

	_, ok := p.Key(0, "k")
	assert.False(t, ok)

	v, ok := p2.Key(0, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestKeyByName(t *testing.T) {
	p, err := Parse("/interfaces/interface[name=eth0]/subinterfaces/subinterface[index=0]")
	require.NoError(t, err)

	name, ok := p.KeyByName("name")
	assert.True(t, ok)
	assert.Equal(t, "eth0", name)

	index, ok := p.KeyByName("index")
	assert.True(t, ok)
	assert.Equal(t, "0", index)

	_, ok = p.KeyByName("missing")
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	a, err := Parse("/a/b[k=v]")
	require.NoError(t, err)
	b, err := Parse("/a/b[k=v]")
	require.NoError(t, err)
	c, err := Parse("/a/b[k=other]")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestParseInvalidTrailingBracket(t *testing.T) {
	_, err := Parse("/a[k=v")
	assert.Error(t, err)
}
