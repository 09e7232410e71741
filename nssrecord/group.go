package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Group header field offsets (NSS_GR_* in the original C headers).
const (
	groupPasswdOfs     = 0
	groupMembersStrOfs = 4
	groupMembersPtrOfs = 8
	groupMembersCount  = 12
	groupGID           = 16
	groupHdrSize       = 24
)

// Group is a group(5)-style entity.
type Group struct {
	Name    string
	Passwd  string
	GID     uint32
	Members []string
}

// EncodeGroup packs g into its on-disk value representation.
func EncodeGroup(g Group) ([]byte, error) {
	if err := checkField("name", g.Name); err != nil {
		return nil, err
	}
	if err := checkField("passwd", g.Passwd); err != nil {
		return nil, err
	}
	for i, m := range g.Members {
		if err := checkField(fmt.Sprintf("member[%d]", i), m); err != nil {
			return nil, err
		}
	}

	fixedStrs := []string{g.Name, g.Passwd}
	fixedLen := stringsLen(fixedStrs)
	membersLen := stringsLen(g.Members)
	ptrsOfs := groupHdrSize + fixedLen + membersLen
	value := make([]byte, ptrsOfs+2*len(g.Members))

	fixedOffsets := make([]int, len(fixedStrs))
	putStrings(value[groupHdrSize:], fixedOffsets, fixedStrs)

	membersStrOfs := groupHdrSize + fixedLen
	memberOffsets := make([]int, len(g.Members))
	putStrings(value[membersStrOfs:], memberOffsets, g.Members)

	ptrs := value[ptrsOfs:]
	for i, off := range memberOffsets {
		pack.PutUint16BE(ptrs[2*i:], uint16(off))
	}

	pack.PutUint32BE(value[groupPasswdOfs:], uint32(groupHdrSize+fixedOffsets[1]))
	pack.PutUint32BE(value[groupMembersStrOfs:], uint32(membersStrOfs))
	pack.PutUint32BE(value[groupMembersPtrOfs:], uint32(ptrsOfs))
	pack.PutUint32BE(value[groupMembersCount:], uint32(len(g.Members)))
	pack.PutUint32BE(value[groupGID:], g.GID)
	return value, nil
}

// DecodeGroup unpacks value into a Group, using scratch as backing
// storage for the reconstructed strings.
func DecodeGroup(value []byte, scratch []byte) (Group, error) {
	if len(value) < groupHdrSize {
		return Group{}, fmt.Errorf("%w: group value shorter than header", ErrUnavailable)
	}
	passwdOfs := pack.Uint32BE(value[groupPasswdOfs:])
	membersStrOfs := pack.Uint32BE(value[groupMembersStrOfs:])
	membersPtrOfs := pack.Uint32BE(value[groupMembersPtrOfs:])
	membersCount := pack.Uint32BE(value[groupMembersCount:])
	gid := pack.Uint32BE(value[groupGID:])

	if len(value) > len(scratch) {
		return Group{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringRange(region, groupHdrSize, int(passwdOfs))
	if err != nil {
		return Group{}, err
	}
	passwd, err := cstringRange(region, int(passwdOfs), int(membersStrOfs))
	if err != nil {
		return Group{}, err
	}

	members := make([]string, membersCount)
	for i := range members {
		ptrOff := int(membersPtrOfs) + 2*i
		if ptrOff+2 > len(region) {
			return Group{}, fmt.Errorf("%w: member pointer table out of bounds", ErrUnavailable)
		}
		memberOff := int(membersStrOfs) + int(pack.Uint16BE(region[ptrOff:]))
		s, err := cstringUntilNUL(region, memberOff)
		if err != nil {
			return Group{}, err
		}
		members[i] = s
	}

	return Group{Name: name, Passwd: passwd, GID: gid, Members: members}, nil
}

// EmitGroup writes the canonical-name and numeric-gid keys for g, plus
// the shared tag-'~' enumeration sentinel.
func EmitGroup(b Adder, g Group) error {
	value, err := EncodeGroup(g)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(g.Name), value); err != nil {
		return err
	}
	return b.Add(TagNumeric, hexKey(g.GID), value)
}
