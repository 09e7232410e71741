package cdb

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/cdbhash"
	"github.com/gstrauss/mcdb-sub001/pack"
)

// Snapshot is a read-only view of one generation of a database file. It
// is the unit the remap coordinator tracks refcounts for; callers reach
// it through a Handle rather than holding it directly.
type Snapshot struct {
	data  []byte // mapped (or loaded) file bytes
	slots [NumSlots]slotDescriptor
}

// openSnapshot validates and indexes the header of a byte region that
// already contains a full database file (mapped or read into memory).
func openSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: file shorter than header (%d bytes)", ErrCorrupt, len(data))
	}
	s := &Snapshot{data: data}
	fileSize := int64(len(data))
	for i := 0; i < NumSlots; i++ {
		off := i * SlotSize
		sd := loadSlot(data[off : off+SlotSize])
		if err := validateSlot(sd, fileSize); err != nil {
			return nil, err
		}
		s.slots[i] = sd
	}
	return s, nil
}

// Cursor holds query state across a find_first/find_next sequence.
type Cursor struct {
	tag   byte
	key   []byte
	hash  uint32
	slot  slotDescriptor
	start uint32 // bucket-relative starting position
	pos   uint32 // number of entries examined so far
	valOff int64
	valLen uint32
}

// FindFirst seeds a cursor for (tag, key) against the snapshot and
// returns true if the slot is non-empty, leaving the cursor positioned
// to be advanced by FindNext. It does not itself yield a match: callers
// call FindNext once to get the first candidate.
func (s *Snapshot) FindFirst(c *Cursor, tag byte, key []byte) bool {
	h := cdbhash.Hash(tag, key)
	sd := s.slots[slotIndex(h)]
	*c = Cursor{
		tag:   tag,
		key:   key,
		hash:  h,
		slot:  sd,
		start: bucketStart(h, sd.Count),
	}
	return sd.Count > 0
}

// FindNext advances the cursor to the next candidate entry in its
// bucket, wrapping once within the bucket, comparing stored hash then
// full (tag, key) on hash match. It returns false once count entries
// have been examined without a match.
func (s *Snapshot) FindNext(c *Cursor) bool {
	for c.pos < c.slot.Count {
		i := (c.start + c.pos) % c.slot.Count
		c.pos++

		entryOff := int64(c.slot.Offset) + int64(i)*IndexEntrySize
		entry := s.data[entryOff : entryOff+IndexEntrySize]
		khash := pack.Uint32BE(entry[0:4])
		recOff := pack.Uint64BE(entry[4:12])

		if khash != c.hash {
			continue
		}
		klen, vlen, keyBytes, valOff, ok := s.readRecordHeader(int64(recOff))
		if !ok {
			continue
		}
		wantLen := uint32(1) + uint32(len(c.key))
		if klen != wantLen {
			continue
		}
		if keyBytes[0] != c.tag {
			continue
		}
		if !bytesEqual(keyBytes[1:], c.key) {
			continue
		}
		c.valOff = valOff
		c.valLen = vlen
		return true
	}
	return false
}

// readRecordHeader decodes the (klen, vlen, key) prefix of a record at
// the given file offset, returning the offset of the value region.
func (s *Snapshot) readRecordHeader(off int64) (klen, vlen uint32, key []byte, valOff int64, ok bool) {
	if off < 0 || off+8 > int64(len(s.data)) {
		return 0, 0, nil, 0, false
	}
	klen = pack.Uint32BE(s.data[off : off+4])
	vlen = pack.Uint32BE(s.data[off+4 : off+8])
	keyStart := off + 8
	keyEnd := keyStart + int64(klen)
	if keyEnd > int64(len(s.data)) {
		return 0, 0, nil, 0, false
	}
	return klen, vlen, s.data[keyStart:keyEnd], keyEnd, true
}

// ReadValue copies the cursor's current value into out, returning a
// slice of out sized to the value. It fails with ErrRetry if out is too
// small.
func (s *Snapshot) ReadValue(c *Cursor, out []byte) ([]byte, error) {
	if uint32(len(out)) < c.valLen {
		return nil, ErrRetry
	}
	end := c.valOff + int64(c.valLen)
	if end > int64(len(s.data)) {
		return nil, fmt.Errorf("%w: value region out of bounds", ErrCorrupt)
	}
	n := copy(out, s.data[c.valOff:end])
	return out[:n], nil
}

// BorrowValue returns the cursor's current value as a zero-copy slice
// into the mapped snapshot bytes. It is only valid for the lifetime of
// the snapshot (i.e. while the caller's handle holds a reference).
func (s *Snapshot) BorrowValue(c *Cursor) ([]byte, error) {
	end := c.valOff + int64(c.valLen)
	if end > int64(len(s.data)) {
		return nil, fmt.Errorf("%w: value region out of bounds", ErrCorrupt)
	}
	return s.data[c.valOff:end], nil
}

// Query performs a find_first+find_next in one step, returning the
// first matching value copied into scratch, or ErrNotFound.
func (s *Snapshot) Query(tag byte, key []byte, scratch []byte) ([]byte, error) {
	var c Cursor
	if !s.FindFirst(&c, tag, key) {
		return nil, ErrNotFound
	}
	if !s.FindNext(&c) {
		return nil, ErrNotFound
	}
	return s.ReadValue(&c, scratch)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
