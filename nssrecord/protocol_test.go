package nssrecord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProtocolRoundTrip(t *testing.T) {
	p := Protocol{Name: "tcp", Number: 6, Aliases: []string{"TCP"}}
	value, err := EncodeProtocol(p)
	require.NoError(t, err)

	got, err := DecodeProtocol(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestRPCRoundTrip(t *testing.T) {
	r := RPC{Name: "portmapper", Number: 100000, Aliases: []string{"rpcbind", "sunrpc"}}
	value, err := EncodeRPC(r)
	require.NoError(t, err)

	got, err := DecodeRPC(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestNetworkRoundTrip(t *testing.T) {
	n := Network{Name: "loopback", Aliases: []string{"lo"}, Net: 0x7F000000, AddrType: AFInet}
	value, err := EncodeNetwork(n)
	require.NoError(t, err)

	got, err := DecodeNetwork(value, make([]byte, len(value)))
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestEmitProtocolAndRPCWriteSentinelFirst(t *testing.T) {
	p := Protocol{Name: "tcp", Number: 6, Aliases: []string{"TCP"}}
	fa := &fakeAdder{}
	require.NoError(t, EmitProtocol(fa, p))
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])

	r := RPC{Name: "portmapper", Number: 100000}
	fa = &fakeAdder{}
	require.NoError(t, EmitRPC(fa, r))
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
}

func TestEmitNetworkWritesSentinelFirst(t *testing.T) {
	n := Network{Name: "loopback", Net: 0x7F000000, AddrType: AFInet}
	fa := &fakeAdder{}
	require.NoError(t, EmitNetwork(fa, n))
	require.Equal(t, TagAlias, fa.tags[0])
	require.Empty(t, fa.keys[0])
}

func TestProtocolEncodeRejectsOversizedAliasCount(t *testing.T) {
	aliases := make([]string, 0x10000)
	for i := range aliases {
		aliases[i] = "a"
	}
	_, err := EncodeProtocol(Protocol{Name: "tcp", Number: 6, Aliases: aliases})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNetworkEncodeRejectsOversizedAliasCount(t *testing.T) {
	aliases := make([]string, 0x10000)
	for i := range aliases {
		aliases[i] = "a"
	}
	_, err := EncodeNetwork(Network{Name: "loopback", Aliases: aliases, Net: 0x7F000000, AddrType: AFInet})
	require.ErrorIs(t, err, ErrInvalidInput)
}
