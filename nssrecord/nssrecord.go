// Package nssrecord encodes and decodes the packed value format used
// for NSS-style database entities (accounts, groups, shadow entries,
// hosts, networks, protocols, RPCs, services), and emits the tagged
// keys each entity is indexed under.
//
// Every encoder writes a fixed-size big-endian header (offsets and
// counts), followed by a NUL-separated string region and, for hosts, a
// trailing fixed-width binary-address region. The header field offsets
// below are the wire contract and must not change.
package nssrecord

import (
	"errors"
	"fmt"

	"github.com/gstrauss/mcdb-sub001/cdb"
	"github.com/gstrauss/mcdb-sub001/pack"
)

// Tag bytes distinguish the multiple indexes a single record is filed
// under within one cdb file.
const (
	TagCanonical byte = '=' // primary/canonical name
	TagAlias     byte = '~' // alias, or (with empty key) the enumeration sentinel
	TagNumeric   byte = 'x' // numeric id (uid, gid, port, proto number, netaddr)
	TagBinary    byte = 'b' // binary address
)

// ErrRetry is returned by decoders when the caller's scratch buffer is
// too small; the caller may enlarge it and retry.
var ErrRetry = cdb.ErrRetry

// ErrInvalidInput marks an encoder rejecting ill-formed input, e.g. a
// name containing a separator byte reserved by the format.
var ErrInvalidInput = cdb.ErrInvalidInput

// ErrUnavailable marks a decode failure caused by unsupported input
// (e.g. an address family the caller doesn't support).
var ErrUnavailable = cdb.ErrUnavailable

var errFieldContainsNUL = errors.New("nssrecord: field contains a NUL byte")

func checkField(name, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return fmt.Errorf("%w: %s: %w", ErrInvalidInput, name, errFieldContainsNUL)
		}
	}
	return nil
}

// checkU16 rejects an offset or count that would truncate when packed
// into one of the format's 16-bit header fields, e.g. an alias list or
// string region that grows a value past 65535 bytes.
func checkU16(name string, v int) error {
	if v > 0xFFFF {
		return fmt.Errorf("%w: %s %d exceeds the 16-bit field width", ErrInvalidInput, name, v)
	}
	return nil
}

// Adder is the subset of *cdb.Builder the codec needs to emit a
// record's (tag, key, value) index entries.
type Adder interface {
	Add(tag byte, key []byte, value []byte) error
}

// emitEnumerationSentinel writes the tag-'~' empty-key entry every
// Emit* function files a record under, alongside its canonical/alias/
// numeric/binary keys. All sentinel entries across every record in a
// database share the same (tag, key) hash, so find_first/find_next
// over it walks every record in insertion order — the get-next
// enumeration spec.md §4.F and §6 describe. Iterate/Next below drive
// that walk.
func emitEnumerationSentinel(b Adder, value []byte) error {
	return b.Add(TagAlias, nil, value)
}

// Iterate seeds a cursor positioned to walk every record in s in
// insertion order, via the shared enumeration sentinel emitEnumerationSentinel
// writes alongside each record's other keys. Call Next to advance it.
func Iterate(s *cdb.Snapshot) cdb.Cursor {
	var c cdb.Cursor
	s.FindFirst(&c, TagAlias, nil)
	return c
}

// Next advances c and returns the next record's packed value in
// insertion order, borrowed zero-copy from s (valid for the
// snapshot's lifetime), or ok=false once enumeration is exhausted.
func Next(s *cdb.Snapshot, c *cdb.Cursor) (value []byte, ok bool) {
	if !s.FindNext(c) {
		return nil, false
	}
	v, err := s.BorrowValue(c)
	if err != nil {
		return nil, false
	}
	return v, true
}

// putStrings writes each string NUL-terminated in order, recording in
// offsets the byte offset (within value, relative to 0) that each
// string starts at, and returns the total number of bytes written.
func putStrings(value []byte, offsets []int, strs []string) int {
	pos := 0
	for i, s := range strs {
		offsets[i] = pos
		copy(value[pos:], s)
		pos += len(s)
		value[pos] = 0
		pos++
	}
	return pos
}

func stringsLen(strs []string) int {
	n := 0
	for _, s := range strs {
		n += len(s) + 1
	}
	return n
}

func hexKey(v uint32) []byte {
	return []byte(pack.Hex8String(v))
}
