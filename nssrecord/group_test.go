package nssrecord

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestGroupRoundTrip(t *testing.T) {
	g := Group{Name: "wheel", Passwd: "x", GID: 10, Members: []string{"alice", "bob", "carol"}}
	value, err := EncodeGroup(g)
	require.NoError(t, err)

	got, err := DecodeGroup(value, make([]byte, len(value)))
	require.NoError(t, err)
	spew.Dump(got)
	require.Equal(t, g, got)
}

func TestGroupRoundTripNoMembers(t *testing.T) {
	g := Group{Name: "empty", Passwd: "x", GID: 999, Members: nil}
	value, err := EncodeGroup(g)
	require.NoError(t, err)

	got, err := DecodeGroup(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, "empty", got.Name)
	require.Empty(t, got.Members)
}

func TestGroupEmitsCanonicalAndGIDKeys(t *testing.T) {
	g := Group{Name: "wheel", GID: 10}
	fa := &fakeAdder{}
	require.NoError(t, EmitGroup(fa, g))
	require.Len(t, fa.keys, 3)
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
	require.Equal(t, "wheel", string(fa.keys[1]))
	require.Equal(t, "0000000A", string(fa.keys[2]))
}
