package pack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xFF, 0x1234, 0xFFFFFFFF, 0x80000000}
	for _, v := range cases {
		var be, le [4]byte
		PutUint32BE(be[:], v)
		PutUint32LE(le[:], v)
		require.Equal(t, v, Uint32BE(be[:]))
		require.Equal(t, v, Uint32LE(le[:]))
	}
}

func TestUint64BERoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xFF, 0x0102030405060708, 0xFFFFFFFFFFFFFFFF}
	for _, v := range cases {
		var buf [8]byte
		PutUint64BE(buf[:], v)
		require.Equal(t, v, Uint64BE(buf[:]))
	}
}

func TestUint16BERoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 0xFF, 0x1234, 0xFFFF}
	for _, v := range cases {
		var buf [2]byte
		PutUint16BE(buf[:], v)
		require.Equal(t, v, Uint16BE(buf[:]))
	}
}

func TestHex8RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0x0A000001, 0xFFFFFFFF, 1000}
	for _, v := range cases {
		var buf [8]byte
		Hex8(buf[:], v)
		require.Len(t, string(buf[:]), 8)
		require.Equal(t, v, ParseHex8(buf[:]))
	}
}

func TestHex8StringUid1000(t *testing.T) {
	// Numeric secondary keys render as 8 ASCII uppercase hex chars.
	require.Equal(t, "000003E8", Hex8String(1000))
}

func TestHex8LowercaseParsesSameAsUppercase(t *testing.T) {
	require.Equal(t, ParseHex8([]byte("0A000001")), ParseHex8([]byte("0a000001")))
}

func TestHex4RoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 0xABCD, 0xFFFF}
	for _, v := range cases {
		var buf [4]byte
		Hex4(buf[:], v)
		require.Equal(t, v, ParseHex4(buf[:]))
	}
}
