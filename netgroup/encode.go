package netgroup

// Adder is the subset of *cdb.Builder the codec needs to emit a
// flattened group's record.
type Adder interface {
	Add(tag byte, key []byte, value []byte) error
}

// EmitAll flattens every named group in d and writes one record per
// non-empty group, keyed by its name with tag '=', each terminated by
// the two-zero-byte end-of-list marker.
func EmitAll(b Adder, d *Database) error {
	for _, name := range d.GroupNames() {
		if err := emitGroup(b, d, name); err != nil {
			return err
		}
	}
	return nil
}

func emitGroup(b Adder, d *Database, name string) error {
	id := d.groupID(name)
	if len(d.rules[id]) == 0 {
		return nil
	}

	var data []byte
	triples, err := d.Expand(name)
	if err != nil {
		return err
	}
	if len(triples) == 0 {
		return nil
	}
	for _, t := range triples {
		enc, err := encodeTriple(t)
		if err != nil {
			return err
		}
		data = append(data, enc...)
	}
	data = append(data, 0, 0) // end-of-list: zero-length triple header

	return b.Add('=', []byte(name), data)
}

// DecodeList reads back a flattened-group record produced by EmitAll,
// returning its triples in encoded order.
func DecodeList(data []byte) ([]Triple, error) {
	var triples []Triple
	off := 0
	for {
		if off+2 > len(data) {
			break
		}
		if data[off] == 0 && data[off+1] == 0 {
			break
		}
		if off+4 > len(data) {
			break
		}
		total := int(data[off])<<8 | int(data[off+1])
		if off+total > len(data) {
			break
		}
		t, err := decodeTriple(data[off : off+total])
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
		off += total
	}
	return triples, nil
}
