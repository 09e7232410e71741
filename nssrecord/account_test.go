package nssrecord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAccountRoundTrip reproduces E2: an account encodes, and decoding
// its packed value reconstructs an identical struct.
func TestAccountRoundTrip(t *testing.T) {
	a := Account{Name: "u", Passwd: "x", Gecos: "", Dir: "/h", Shell: "/s", UID: 1000, GID: 1000}
	value, err := EncodeAccount(a)
	require.NoError(t, err)

	scratch := make([]byte, len(value))
	got, err := DecodeAccount(value, scratch)
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestAccountDecodeRetryOnSmallScratch(t *testing.T) {
	a := Account{Name: "root", Passwd: "x", Gecos: "System Administrator", Dir: "/root", Shell: "/bin/bash", UID: 0, GID: 0}
	value, err := EncodeAccount(a)
	require.NoError(t, err)

	_, err = DecodeAccount(value, make([]byte, 1))
	require.ErrorIs(t, err, ErrRetry)
}

func TestAccountRejectsNULInField(t *testing.T) {
	_, err := EncodeAccount(Account{Name: "bad\x00name"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccountHexKeyMatchesUID1000(t *testing.T) {
	a := Account{Name: "u", UID: 1000}

	fa := &fakeAdder{}
	require.NoError(t, EmitAccount(fa, a))
	require.Len(t, fa.keys, 3)
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
	require.Equal(t, TagCanonical, fa.tags[1])
	require.Equal(t, "u", string(fa.keys[1]))
	require.Equal(t, TagNumeric, fa.tags[2])
	require.Equal(t, "000003E8", string(fa.keys[2]))
}
