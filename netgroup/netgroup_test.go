package netgroup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCyclicExpansion reproduces E4: two netgroups referencing each
// other must each flatten to their reachable triplets without infinite
// recursion.
func TestCyclicExpansion(t *testing.T) {
	d, err := Parse([]byte("g1 (h1,u1,d1) g2\ng2 (h2,,) g1\n"))
	require.NoError(t, err)

	g1, err := d.Expand("g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []Triple{{Host: "h1", User: "u1", Domain: "d1"}, {Host: "h2"}}, g1)

	g2, err := d.Expand("g2")
	require.NoError(t, err)
	require.ElementsMatch(t, []Triple{{Host: "h2"}, {Host: "h1", User: "u1", Domain: "d1"}}, g2)
}

func TestPlainGroupNoSubgroups(t *testing.T) {
	d, err := Parse([]byte("admins (,root,) (,alice,)\n"))
	require.NoError(t, err)

	got, err := d.Expand("admins")
	require.NoError(t, err)
	require.Equal(t, []Triple{{User: "root"}, {User: "alice"}}, got)
}

func TestNestedSubgroupExpansion(t *testing.T) {
	d, err := Parse([]byte("leaf (h1,,)\nmid leaf\ntop mid leaf\n"))
	require.NoError(t, err)

	got, err := d.Expand("top")
	require.NoError(t, err)
	// leaf's triple is reachable via both "mid" and directly; the
	// seen-set guarantees it appears only once.
	require.Equal(t, []Triple{{Host: "h1"}}, got)
}

func TestHostAndDomainLowercased(t *testing.T) {
	d, err := Parse([]byte("g (HOST,User,DOMAIN)\n"))
	require.NoError(t, err)

	got, err := d.Expand("g")
	require.NoError(t, err)
	require.Equal(t, []Triple{{Host: "host", User: "User", Domain: "domain"}}, got)
}

func TestCommentsAndBlankLinesSkipped(t *testing.T) {
	d, err := Parse([]byte("# a comment\n\ng1 (h,,)\n\n# trailing\n"))
	require.NoError(t, err)
	got, err := d.Expand("g1")
	require.NoError(t, err)
	require.Equal(t, []Triple{{Host: "h"}}, got)
}

func TestParseRejectsBadToken(t *testing.T) {
	_, err := Parse([]byte("g1 (bad,,\n"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEmitAllAndDecodeListRoundTrip(t *testing.T) {
	d, err := Parse([]byte("g1 (h1,u1,d1) (h2,,)\n"))
	require.NoError(t, err)

	fa := &fakeAdder{}
	require.NoError(t, EmitAll(fa, d))
	require.Len(t, fa.keys, 1)
	require.Equal(t, "g1", string(fa.keys[0]))

	triples, err := DecodeList(fa.values[0])
	require.NoError(t, err)
	require.Equal(t, []Triple{{Host: "h1", User: "u1", Domain: "d1"}, {Host: "h2"}}, triples)
}

func TestTripleEncodeDecodeIsomorphism(t *testing.T) {
	cases := []Triple{
		{},
		{Host: "h"},
		{User: "u"},
		{Domain: "d"},
		{Host: "h", User: "u", Domain: "d"},
	}
	for _, tr := range cases {
		enc, err := encodeTriple(tr)
		require.NoError(t, err)
		got, err := decodeTriple(enc)
		require.NoError(t, err)
		require.Equal(t, tr, got)
	}
}
