package nssrecord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceRoundTripAndProtoFilter(t *testing.T) {
	s := Service{Name: "domain", Proto: "udp", Port: 53, Aliases: []string{"dns"}}
	value, err := EncodeService(s)
	require.NoError(t, err)

	got, err := DecodeService(value, make([]byte, len(value)), "udp")
	require.NoError(t, err)
	require.Equal(t, s, got)

	_, err = DecodeService(value, make([]byte, len(value)), "tcp")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestServiceEmitsNumericPortKey(t *testing.T) {
	s := Service{Name: "domain", Proto: "udp", Port: 53}
	fa := &fakeAdder{}
	require.NoError(t, EmitService(fa, s))
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
	last := fa.keys[len(fa.keys)-1]
	require.Equal(t, "00000035", string(last))
}

func TestServiceEncodeRejectsOversizedAliasCount(t *testing.T) {
	aliases := make([]string, 0x10000)
	for i := range aliases {
		aliases[i] = "a"
	}
	_, err := EncodeService(Service{Name: "domain", Proto: "udp", Port: 53, Aliases: aliases})
	require.ErrorIs(t, err, ErrInvalidInput)
}
