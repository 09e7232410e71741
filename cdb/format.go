// Package cdb implements the on-disk constant database format: an
// immutable, mmap-friendly key/value file inspired by djb's cdb, plus a
// concurrent multi-generation remap coordinator for long-lived readers.
//
// # Layout
//
// A database file is, in order:
//
//  1. Header — 256 fixed-size slot descriptors (16 bytes each, 4096
//     bytes total). Slot i holds the file offset and entry count of the
//     collision bucket for hash low-byte i.
//  2. Record region — a sequence of (klen u32, vlen u32, key, value)
//     records, big-endian lengths. The key includes a leading tag byte
//     (zero means untagged).
//  3. Index region — for each of the 256 slots, count entries of (khash
//     u32, record-offset u64) for the records whose hash low-byte equals
//     the slot index. Each entry is placed by linear probing from
//     (hash >> 8) mod count, wrapping within the bucket, so entries that
//     share a hash follow insertion order along the probe sequence.
//
// All multi-byte integers are big-endian. The file carries no external
// metadata or version field; the format is fixed.
package cdb

import (
	"errors"
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// NumSlots is the fixed number of top-level hash slots.
const NumSlots = 256

// SlotSize is the on-disk size of one slot descriptor.
const SlotSize = 16

// HeaderSize is the fixed size of the header region: 256 slots * 16 bytes.
const HeaderSize = NumSlots * SlotSize

// IndexEntrySize is the on-disk size of one (khash, offset) index entry.
const IndexEntrySize = 4 + 8

var (
	// ErrUnavailable covers missing files, failed open/mmap/stat, or a
	// coordinator that observed a torn snapshot state.
	ErrUnavailable = errors.New("cdb: unavailable")
	// ErrCorrupt is returned when the header or a slot descriptor fails
	// structural validation at open time.
	ErrCorrupt = errors.New("cdb: corrupt database")
	// ErrNotFound marks a query that reached the end of its bucket
	// without a matching key.
	ErrNotFound = errors.New("cdb: not found")
	// ErrRetry signals that a caller-provided scratch buffer was too
	// small; the caller may enlarge it and retry.
	ErrRetry = errors.New("cdb: retry with larger buffer")
	// ErrInvalidInput marks a builder-side rejection of ill-formed input.
	ErrInvalidInput = errors.New("cdb: invalid input")
)

// slotDescriptor is one entry of the 256-slot header.
type slotDescriptor struct {
	Offset uint64
	Count  uint32
}

func (s slotDescriptor) put(buf []byte) {
	_ = buf[SlotSize-1]
	pack.PutUint64BE(buf[0:8], s.Offset)
	pack.PutUint32BE(buf[8:12], s.Count)
	// bytes 12:16 reserved, always zero.
	buf[12], buf[13], buf[14], buf[15] = 0, 0, 0, 0
}

func loadSlot(buf []byte) slotDescriptor {
	_ = buf[SlotSize-1]
	return slotDescriptor{
		Offset: pack.Uint64BE(buf[0:8]),
		Count:  pack.Uint32BE(buf[8:12]),
	}
}

// slotIndex returns the low byte of a key hash, i.e. its home slot.
func slotIndex(hash uint32) uint8 {
	return uint8(hash)
}

// bucketStart returns the linear-probe starting position within a
// bucket of the given count, per §4.C: (hash >> 8) mod count.
func bucketStart(hash uint32, count uint32) uint32 {
	if count == 0 {
		return 0
	}
	return (hash >> 8) % count
}

func validateSlot(s slotDescriptor, fileSize int64) error {
	if s.Count == 0 {
		return nil
	}
	end := int64(s.Offset) + int64(s.Count)*IndexEntrySize
	if s.Offset < HeaderSize || end < 0 || end > fileSize {
		return fmt.Errorf("%w: slot region [%d,%d) exceeds file size %d", ErrCorrupt, s.Offset, end, fileSize)
	}
	return nil
}
