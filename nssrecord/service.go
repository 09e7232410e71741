package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Service header field offsets (NSS_S_* in the original C headers).
const (
	svcPort          = 0
	svcNameOfs       = 8
	svcAliasesStr    = 12
	svcAliasesPtr    = 16
	svcAliasesCount  = 20
	svcHdrSize       = 24
)

// Service is a services(5)-style entity: a port/protocol pair with a
// canonical name and aliases.
type Service struct {
	Name    string
	Proto   string
	Port    uint32 // network byte order, per the format
	Aliases []string
}

// EncodeService packs s into its on-disk value representation.
func EncodeService(s Service) ([]byte, error) {
	if err := checkField("name", s.Name); err != nil {
		return nil, err
	}
	if err := checkField("proto", s.Proto); err != nil {
		return nil, err
	}
	for i, a := range s.Aliases {
		if err := checkField(fmt.Sprintf("alias[%d]", i), a); err != nil {
			return nil, err
		}
	}

	nameOfs := svcHdrSize + len(s.Proto) + 1
	aliasesStrOfs := nameOfs + len(s.Name) + 1
	aliasesLen := stringsLen(s.Aliases)
	aliasesPtrOfs := aliasesStrOfs + aliasesLen
	value := make([]byte, aliasesPtrOfs+2*len(s.Aliases))

	if err := checkU16("name-ofs", nameOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-str-ofs", aliasesStrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-ptrs-ofs", aliasesPtrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-count", len(s.Aliases)); err != nil {
		return nil, err
	}

	copy(value[svcHdrSize:], s.Proto)
	value[svcHdrSize+len(s.Proto)] = 0
	copy(value[nameOfs:], s.Name)
	value[nameOfs+len(s.Name)] = 0

	aliasOffsets := make([]int, len(s.Aliases))
	putStrings(value[aliasesStrOfs:], aliasOffsets, s.Aliases)
	for i, off := range aliasOffsets {
		pack.PutUint16BE(value[aliasesPtrOfs+2*i:], uint16(off))
	}

	pack.PutUint32BE(value[svcPort:], s.Port)
	pack.PutUint16BE(value[svcNameOfs:], uint16(nameOfs))
	pack.PutUint16BE(value[svcAliasesStr:], uint16(aliasesStrOfs))
	pack.PutUint16BE(value[svcAliasesPtr:], uint16(aliasesPtrOfs))
	pack.PutUint16BE(value[svcAliasesCount:], uint16(len(s.Aliases)))
	return value, nil
}

// DecodeService unpacks value into a Service. proto, if non-empty,
// filters: ErrUnavailable is returned if value's encoded protocol
// string does not match (callers iterate find_next to try the next
// candidate record, per the secondary-filtered lookup contract).
func DecodeService(value []byte, scratch []byte, proto string) (Service, error) {
	if len(value) < svcHdrSize {
		return Service{}, fmt.Errorf("%w: service value shorter than header", ErrUnavailable)
	}
	port := pack.Uint32BE(value[svcPort:])
	nameOfs := uint32(pack.Uint16BE(value[svcNameOfs:]))
	aliasesStrOfs := uint32(pack.Uint16BE(value[svcAliasesStr:]))
	aliasesPtrOfs := uint32(pack.Uint16BE(value[svcAliasesPtr:]))
	aliasesCount := pack.Uint16BE(value[svcAliasesCount:])

	if len(value) > len(scratch) {
		return Service{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	gotProto, err := cstringRange(region, svcHdrSize, int(nameOfs))
	if err != nil {
		return Service{}, err
	}
	if proto != "" && proto != gotProto {
		return Service{}, fmt.Errorf("%w: protocol mismatch", ErrUnavailable)
	}
	name, err := cstringRange(region, int(nameOfs), int(aliasesStrOfs))
	if err != nil {
		return Service{}, err
	}

	aliases := make([]string, aliasesCount)
	for i := range aliases {
		ptrOff := int(aliasesPtrOfs) + 2*i
		if ptrOff+2 > len(region) {
			return Service{}, fmt.Errorf("%w: alias pointer table out of bounds", ErrUnavailable)
		}
		off := int(aliasesStrOfs) + int(pack.Uint16BE(region[ptrOff:]))
		s, err := cstringUntilNUL(region, off)
		if err != nil {
			return Service{}, err
		}
		aliases[i] = s
	}

	return Service{Name: name, Proto: gotProto, Port: port, Aliases: aliases}, nil
}

// EmitService writes the canonical-name, alias, and numeric-port keys
// for s, plus the shared tag-'~' enumeration sentinel. Port keys are
// shared across protocols (e.g. TCP and UDP port 53); lookup
// disambiguates via DecodeService's proto filter.
func EmitService(b Adder, s Service) error {
	value, err := EncodeService(s)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(s.Name), value); err != nil {
		return err
	}
	for _, alias := range s.Aliases {
		if err := b.Add(TagAlias, []byte(alias), value); err != nil {
			return err
		}
	}
	return b.Add(TagNumeric, hexKey(s.Port), value)
}
