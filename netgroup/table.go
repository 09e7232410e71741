package netgroup

import "github.com/cespare/xxhash/v2"

// stringTable is a content-addressed table: given a byte key, it
// returns the same small integer id every time that exact key is
// inserted again. Entries are bucketed by an xxHash64 digest of the
// key; collisions within a bucket are disambiguated by full-byte
// comparison, the same scheme cdb's own header uses the djb hash for.
type stringTable struct {
	buckets map[uint64][]tableEntry
	items   [][]byte // id -> key bytes, in insertion order
}

type tableEntry struct {
	key []byte
	id  int32
}

func newStringTable() *stringTable {
	return &stringTable{buckets: make(map[uint64][]tableEntry)}
}

// insert returns the id for key, allocating a new one if key has not
// been seen before. The returned id is stable: an existing key always
// yields the same id it was first inserted with.
func (t *stringTable) insert(key []byte) int32 {
	h := xxhash.Sum64(key)
	for _, e := range t.buckets[h] {
		if string(e.key) == string(key) {
			return e.id
		}
	}
	id := int32(len(t.items))
	stored := append([]byte(nil), key...)
	t.items = append(t.items, stored)
	t.buckets[h] = append(t.buckets[h], tableEntry{key: stored, id: id})
	return id
}

// get returns the key bytes for an id previously returned by insert.
func (t *stringTable) get(id int32) []byte {
	return t.items[id]
}

func (t *stringTable) len() int {
	return len(t.items)
}
