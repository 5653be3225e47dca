package p4schema

import (
	"testing"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testP4Info() *p4configv1.P4Info {
	return &p4configv1.P4Info{
		PkgInfo: &p4configv1.PkgInfo{Name: "test", Arch: "v1model"},
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: 1, Name: "ingress.forward", Alias: "forward"},
				MatchFields: []*p4configv1.MatchField{
					{Id: 1, Name: "hdr.ipv4.dst", Bitwidth: 32, MatchType: p4configv1.MatchField_LPM},
				},
				ActionRefs: []*p4configv1.ActionRef{
					{Id: 10},
				},
				Size: 1024,
			},
		},
		Actions: []*p4configv1.Action{
			{
				Preamble: &p4configv1.Preamble{Id: 10, Name: "ingress.set_port", Alias: "set_port"},
				Params: []*p4configv1.Action_Param{
					{Id: 1, Name: "port", Bitwidth: 9},
				},
			},
		},
	}
}

func TestLoadAndLookup(t *testing.T) {
	s, err := New(testP4Info(), nil)
	require.NoError(t, err)
	assert.True(t, s.IsConfigured())
	assert.Equal(t, "test", s.Name())

	table, err := s.Tables().Get("forward")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), table.ID())
	assert.Equal(t, int64(1024), table.Size())

	table2, err := s.Tables().Get(uint32(1))
	require.NoError(t, err)
	assert.Same(t, table, table2)

	action, err := s.Actions().Get("set_port")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), action.ID())

	param, err := action.Params().Get("port")
	require.NoError(t, err)
	assert.Equal(t, int32(9), param.Bitwidth())
}

func TestLookupMissingSuggestsClosest(t *testing.T) {
	s, err := New(testP4Info(), nil)
	require.NoError(t, err)

	_, err = s.Tables().Get("forwrd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward")
}

func TestTableActionRefsResolveActions(t *testing.T) {
	s, err := New(testP4Info(), nil)
	require.NoError(t, err)

	table, err := s.Tables().Get("forward")
	require.NoError(t, err)
	require.Len(t, table.ActionRefs(), 1)
	assert.Equal(t, "set_port", table.ActionRefs()[0].Alias())
}

func TestEmptySchema(t *testing.T) {
	assert.False(t, Empty.IsConfigured())
	assert.Equal(t, 0, Empty.Tables().Len())
}

func TestCookieStable(t *testing.T) {
	s1, err := New(testP4Info(), []byte("blob"))
	require.NoError(t, err)
	s2, err := New(testP4Info(), []byte("blob"))
	require.NoError(t, err)
	assert.Equal(t, s1.Cookie(), s2.Cookie())
	assert.NotZero(t, s1.Cookie())
}

func TestParseUnstructuredAnnotation(t *testing.T) {
	anno, err := parseUnstructuredAnnotation(`@my_anno("a", "b")`)
	require.NoError(t, err)
	assert.Equal(t, "my_anno", anno.Name)
	assert.Equal(t, `"a", "b"`, anno.Body)

	anno2, err := parseUnstructuredAnnotation("@hidden")
	require.NoError(t, err)
	assert.Equal(t, "hidden", anno2.Name)
	assert.Equal(t, "", anno2.Body)
}
