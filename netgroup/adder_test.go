package netgroup

// fakeAdder records every Add call for assertion in tests, standing in
// for a *cdb.Builder.
type fakeAdder struct {
	tags   []byte
	keys   [][]byte
	values [][]byte
}

func (f *fakeAdder) Add(tag byte, key, value []byte) error {
	f.tags = append(f.tags, tag)
	f.keys = append(f.keys, append([]byte(nil), key...))
	f.values = append(f.values, append([]byte(nil), value...))
	return nil
}
