package cdb

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"github.com/gstrauss/mcdb-sub001/cdbhash"
	"github.com/gstrauss/mcdb-sub001/continuity"
	"github.com/gstrauss/mcdb-sub001/pack"
)

// pendingEntry is one (hash, record-offset) pair awaiting distribution
// into its slot's index table at Commit.
type pendingEntry struct {
	hash uint32
	off  uint64
}

// Builder accumulates records for a new database file and commits them
// atomically: the file is always written to a sibling temp file and
// renamed into place, never mutated in place.
type Builder struct {
	outPath string
	tmpPath string
	tmpFile *os.File

	recordOff uint64 // running write position in the record region
	slots     [NumSlots][]pendingEntry
	nRecords  int
}

// Begin reserves header space at the start of a new temp file sibling
// to outPath and returns a Builder ready for Add calls.
func Begin(outPath string) (*Builder, error) {
	dir := filepath.Dir(outPath)
	tmpPath := filepath.Join(dir, ".cdb-"+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", ErrUnavailable, err)
	}

	var zero [HeaderSize]byte
	if _, err := f.Write(zero[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("reserve header space: %w", err)
	}

	return &Builder{
		outPath:   outPath,
		tmpPath:   tmpPath,
		tmpFile:   f,
		recordOff: HeaderSize,
	}, nil
}

// Add appends one (tag, key, value) record and indexes it under the
// combined tag+key hash. The same logical key may be added multiple
// times; find_next iterates all of them in insertion order.
func (b *Builder) Add(tag byte, key []byte, value []byte) error {
	if len(key) > 0xFFFFFFFF-1 {
		return fmt.Errorf("%w: key too long", ErrInvalidInput)
	}
	klen := uint32(1 + len(key))
	vlen := uint32(len(value))

	hdr := bytebufferpool.Get()
	defer bytebufferpool.Put(hdr)
	hdr.Reset()

	var lens [8]byte
	pack.PutUint32BE(lens[0:4], klen)
	pack.PutUint32BE(lens[4:8], vlen)
	hdr.Write(lens[:])
	hdr.WriteByte(tag)
	hdr.Write(key)

	if _, err := b.tmpFile.Write(hdr.B); err != nil {
		return fmt.Errorf("%w: write record header/key: %v", ErrUnavailable, err)
	}
	if _, err := b.tmpFile.Write(value); err != nil {
		return fmt.Errorf("%w: write record value: %v", ErrUnavailable, err)
	}

	hash := cdbhash.Hash(tag, key)
	slot := slotIndex(hash)
	b.slots[slot] = append(b.slots[slot], pendingEntry{hash: hash, off: b.recordOff})

	b.recordOff += uint64(len(hdr.B)) + uint64(vlen)
	b.nRecords++
	return nil
}

// Commit writes the index region and the 256 slot descriptors, then
// atomically replaces outPath with the completed temp file: fchmod to
// the prior file's permissions (or a secure default), close, rename.
func (b *Builder) Commit() (err error) {
	defer func() {
		if err != nil {
			b.abort()
		}
	}()

	var descriptors [NumSlots]slotDescriptor
	for i := 0; i < NumSlots; i++ {
		entries := b.slots[i]
		if len(entries) == 0 {
			continue
		}
		offset, werr := b.writeBucket(entries)
		if werr != nil {
			return fmt.Errorf("write bucket for slot %d: %w", i, werr)
		}
		descriptors[i] = slotDescriptor{Offset: offset, Count: uint32(len(entries))}
	}

	var headerBuf [HeaderSize]byte
	for i := 0; i < NumSlots; i++ {
		descriptors[i].put(headerBuf[i*SlotSize : (i+1)*SlotSize])
	}
	if _, err = b.tmpFile.WriteAt(headerBuf[:], 0); err != nil {
		return fmt.Errorf("write slot descriptors: %w", err)
	}

	mode := os.FileMode(0o644)
	if fi, statErr := os.Stat(b.outPath); statErr == nil {
		mode = fi.Mode().Perm()
	}

	finalSize, _ := b.tmpFile.Seek(0, io.SeekEnd)

	return continuity.New().
		Thenf("chmod", func() error {
			return b.tmpFile.Chmod(mode)
		}).
		Thenf("sync", func() error {
			return b.tmpFile.Sync()
		}).
		Thenf("close", func() error {
			return b.tmpFile.Close()
		}).
		Thenf("rename", func() error {
			if err := os.Rename(b.tmpPath, b.outPath); err != nil {
				return fmt.Errorf("%w: rename into place: %v", ErrUnavailable, err)
			}
			return nil
		}).
		Thenf("log", func() error {
			slog.Info("cdb: build committed",
				"path", b.outPath,
				"records", b.nRecords,
				"size", humanize.Bytes(uint64(finalSize)),
			)
			return nil
		}).
		Err()
}

// writeBucket distributes entries to their within-bucket positions
// using linear probing — start at (hash>>8) mod count, skip occupied
// slots, wrap within the bucket — and writes the resulting table to the
// file, returning its offset.
func (b *Builder) writeBucket(entries []pendingEntry) (uint64, error) {
	count := uint32(len(entries))
	table := make([]*pendingEntry, count)
	for i := range entries {
		e := entries[i]
		pos := bucketStart(e.hash, count)
		for table[pos] != nil {
			pos = (pos + 1) % count
		}
		table[pos] = &e
	}

	off, err := b.tmpFile.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, int(count)*IndexEntrySize)
	for i, e := range table {
		base := i * IndexEntrySize
		pack.PutUint32BE(buf[base:base+4], e.hash)
		pack.PutUint64BE(buf[base+4:base+12], e.off)
	}
	if _, err := b.tmpFile.Write(buf); err != nil {
		return 0, err
	}
	return uint64(off), nil
}

// abort removes the temp file on any failure path after creation.
func (b *Builder) abort() {
	b.tmpFile.Close()
	os.Remove(b.tmpPath)
}
