package nssrecord

// fakeAdder records (tag, key, value) triples passed to Add, standing
// in for a *cdb.Builder in tests that only care about which keys a
// codec emits.
type fakeAdder struct {
	tags   []byte
	keys   [][]byte
	values [][]byte
}

func (f *fakeAdder) Add(tag byte, key []byte, value []byte) error {
	f.tags = append(f.tags, tag)
	k := make([]byte, len(key))
	copy(k, key)
	f.keys = append(f.keys, k)
	f.values = append(f.values, value)
	return nil
}
