package cdbhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash('=', []byte("root"))
	h2 := Hash('=', []byte("root"))
	require.Equal(t, h1, h2)
}

func TestHashDistinguishesTag(t *testing.T) {
	require.NotEqual(t, Hash('=', []byte("root")), Hash('~', []byte("root")))
}

func TestHashDistinguishesKey(t *testing.T) {
	require.NotEqual(t, Hash('=', []byte("root")), Hash('=', []byte("toor")))
}

func TestHashZeroTagUntagged(t *testing.T) {
	// A zero tag is not hashed, so it must match hashing the key alone.
	require.Equal(t, Bytes(Init, []byte("root")), Hash(0, []byte("root")))
}

func TestHashEmptyKeyIsSeedOrTag(t *testing.T) {
	require.Equal(t, Init, Hash(0, nil))
	require.Equal(t, Update(Init, '='), Hash('=', nil))
}

func TestUpdateMatchesTimes33XorRecurrence(t *testing.T) {
	var h uint32 = Init
	h = h*33 ^ uint32('x')
	require.Equal(t, h, Update(Init, 'x'))
}
