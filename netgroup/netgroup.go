// Package netgroup parses netgroup(5)-style definition files and
// flattens each named group, recursively expanding subgroups, into a
// deduplicated list of concrete (host, user, domain) triplets.
package netgroup

import (
	"github.com/gstrauss/mcdb-sub001/cdb"
)

// ErrInvalidInput marks a parse error: a bad token, an oversized field,
// or a length overflow. The whole build aborts; partial output is
// discarded.
var ErrInvalidInput = cdb.ErrInvalidInput

// ErrUnavailable marks a failure decoding previously-encoded data.
var ErrUnavailable = cdb.ErrUnavailable

// emptyGroupID and catchAllTripleID are the two ids reserved at id 0 in
// their respective tables, so that real ids start at 1 and the
// sign-based rule encoding (positive = triplet, negative = subgroup)
// stays unambiguous.
const (
	emptyGroupID     int32 = 0
	catchAllTripleID int32 = 0
)

// Database holds every group parsed from one or more netgroup files,
// ready for Expand.
type Database struct {
	groups  *stringTable // group name -> id
	triples *stringTable // encoded triple bytes -> id
	rules   [][]int32    // group id -> rule list (positive=triple id, negative=subgroup id)
}

// NewDatabase returns an empty Database with the two reserved ids
// (empty group name, catch-all triple) already allocated.
func NewDatabase() (*Database, error) {
	d := &Database{
		groups:  newStringTable(),
		triples: newStringTable(),
	}
	emptyTriple, err := encodeTriple(Triple{})
	if err != nil {
		return nil, err
	}
	if id := d.triples.insert(emptyTriple); id != catchAllTripleID {
		panic("netgroup: catch-all triple did not receive id 0")
	}
	if id := d.groups.insert(nil); id != emptyGroupID {
		panic("netgroup: empty group name did not receive id 0")
	}
	d.rules = append(d.rules, nil) // rule list for the reserved empty-name id
	return d, nil
}

// groupID returns the id for name, allocating a rule-list slot if it's
// new.
func (d *Database) groupID(name string) int32 {
	id := d.groups.insert([]byte(name))
	for int(id) >= len(d.rules) {
		d.rules = append(d.rules, nil)
	}
	return id
}

// tripleID returns the id for t, allocating one if it's new.
func (d *Database) tripleID(t Triple) (int32, error) {
	enc, err := encodeTriple(t)
	if err != nil {
		return 0, err
	}
	return d.triples.insert(enc), nil
}

// GroupNames returns every group name with a non-empty rule list, the
// set Expand can be meaningfully called on. Order is insertion order
// (the order groups first appeared in the source file).
func (d *Database) GroupNames() []string {
	names := make([]string, 0, d.groups.len()-1)
	for id := int32(1); int(id) < d.groups.len(); id++ {
		if len(d.rules[id]) == 0 {
			continue
		}
		names = append(names, string(d.groups.get(id)))
	}
	return names
}
