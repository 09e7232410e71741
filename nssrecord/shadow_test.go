package nssrecord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShadowRoundTrip(t *testing.T) {
	s := Shadow{
		Name: "alice", Passwd: "$6$hash",
		Lstchg: 19000, Min: 0, Max: 99999, Warn: 7,
		Inact: EmptyField, Expire: EmptyField, Flag: 0,
	}
	value, err := EncodeShadow(s)
	require.NoError(t, err)

	got, err := DecodeShadow(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestShadowEmptyFieldIsSentinelMinusOne(t *testing.T) {
	s := Shadow{Name: "bob", Passwd: "!", Inact: EmptyField, Expire: EmptyField}
	value, err := EncodeShadow(s)
	require.NoError(t, err)

	got, err := DecodeShadow(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, int64(-1), got.Inact)
	require.Equal(t, int64(-1), got.Expire)
}

func TestShadowEmitsCanonicalKeyAndSentinel(t *testing.T) {
	s := Shadow{Name: "bob", Passwd: "!"}
	fa := &fakeAdder{}
	require.NoError(t, EmitShadow(fa, s))
	require.Len(t, fa.keys, 2)
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
	require.Equal(t, TagCanonical, fa.tags[1])
	require.Equal(t, "bob", string(fa.keys[1]))
}
