package nssrecord

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gstrauss/mcdb-sub001/cdb"
)

// TestIterateWalksRecordsInInsertionOrder builds a database with three
// accounts via EmitAccount and confirms Iterate/Next walks the shared
// tag-'~' sentinel in the order the records were added, regardless of
// the per-entity keys also written alongside each value.
func TestIterateWalksRecordsInInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.cdb")

	b, err := cdb.Begin(path)
	require.NoError(t, err)

	accounts := []Account{
		{Name: "root", Passwd: "x", UID: 0, GID: 0, Dir: "/root", Shell: "/bin/bash"},
		{Name: "alice", Passwd: "x", UID: 1000, GID: 1000, Dir: "/home/alice", Shell: "/bin/bash"},
		{Name: "bob", Passwd: "x", UID: 1001, GID: 1001, Dir: "/home/bob", Shell: "/bin/bash"},
	}
	for _, a := range accounts {
		require.NoError(t, EmitAccount(b, a))
	}
	require.NoError(t, b.Commit())

	co, err := cdb.Open(path)
	require.NoError(t, err)
	defer co.Close()

	h := co.Register()
	defer h.Release()
	snap := h.Snapshot()

	c := Iterate(snap)
	var got []Account
	for {
		value, ok := Next(snap, &c)
		if !ok {
			break
		}
		a, err := DecodeAccount(value, make([]byte, len(value)))
		require.NoError(t, err)
		got = append(got, a)
	}

	require.Equal(t, accounts, got)
}

// TestIterateEmptyDatabaseYieldsNothing confirms Next reports ok=false
// immediately when no records (and so no sentinels) were ever written.
func TestIterateEmptyDatabaseYieldsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cdb")

	b, err := cdb.Begin(path)
	require.NoError(t, err)
	require.NoError(t, b.Commit())

	co, err := cdb.Open(path)
	require.NoError(t, err)
	defer co.Close()

	h := co.Register()
	defer h.Release()
	snap := h.Snapshot()

	c := Iterate(snap)
	_, ok := Next(snap, &c)
	require.False(t, ok)
}
