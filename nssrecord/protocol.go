package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Protocol/RPC header field offsets (NSS_P_*/NSS_R_* in the original C
// headers — both entity kinds share one layout: a name, a number, and
// an alias list).
const (
	numEntNumber       = 0
	numEntAliasesStr   = 8
	numEntAliasesPtr   = 12
	numEntAliasesCount = 16
	numEntHdrSize      = 20
)

// NumberedEntity is the shared shape of Protocol and RPC entries: a
// name, a small integer identifier, and an alias list.
type NumberedEntity struct {
	Name    string
	Number  uint32
	Aliases []string
}

// Protocol is a protocols(5)-style entity.
type Protocol = NumberedEntity

// RPC is an rpc(5)-style entity; it shares Protocol's on-disk layout.
type RPC = NumberedEntity

func encodeNumberedEntity(e NumberedEntity) ([]byte, error) {
	if err := checkField("name", e.Name); err != nil {
		return nil, err
	}
	for i, a := range e.Aliases {
		if err := checkField(fmt.Sprintf("alias[%d]", i), a); err != nil {
			return nil, err
		}
	}

	aliasesStrOfs := numEntHdrSize + len(e.Name) + 1
	aliasesLen := stringsLen(e.Aliases)
	aliasesPtrOfs := aliasesStrOfs + aliasesLen
	value := make([]byte, aliasesPtrOfs+2*len(e.Aliases))

	if err := checkU16("aliases-str-ofs", aliasesStrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-ptrs-ofs", aliasesPtrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-count", len(e.Aliases)); err != nil {
		return nil, err
	}

	copy(value[numEntHdrSize:], e.Name)
	value[numEntHdrSize+len(e.Name)] = 0

	aliasOffsets := make([]int, len(e.Aliases))
	putStrings(value[aliasesStrOfs:], aliasOffsets, e.Aliases)
	for i, off := range aliasOffsets {
		pack.PutUint16BE(value[aliasesPtrOfs+2*i:], uint16(off))
	}

	pack.PutUint32BE(value[numEntNumber:], e.Number)
	pack.PutUint16BE(value[numEntAliasesStr:], uint16(aliasesStrOfs))
	pack.PutUint16BE(value[numEntAliasesPtr:], uint16(aliasesPtrOfs))
	pack.PutUint16BE(value[numEntAliasesCount:], uint16(len(e.Aliases)))
	return value, nil
}

func decodeNumberedEntity(value []byte, scratch []byte) (NumberedEntity, error) {
	if len(value) < numEntHdrSize {
		return NumberedEntity{}, fmt.Errorf("%w: value shorter than header", ErrUnavailable)
	}
	number := pack.Uint32BE(value[numEntNumber:])
	aliasesStrOfs := uint32(pack.Uint16BE(value[numEntAliasesStr:]))
	aliasesPtrOfs := uint32(pack.Uint16BE(value[numEntAliasesPtr:]))
	aliasesCount := pack.Uint16BE(value[numEntAliasesCount:])

	if len(value) > len(scratch) {
		return NumberedEntity{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringUntilNUL(region, numEntHdrSize)
	if err != nil {
		return NumberedEntity{}, err
	}

	aliases := make([]string, aliasesCount)
	for i := range aliases {
		ptrOff := int(aliasesPtrOfs) + 2*i
		if ptrOff+2 > len(region) {
			return NumberedEntity{}, fmt.Errorf("%w: alias pointer table out of bounds", ErrUnavailable)
		}
		off := int(aliasesStrOfs) + int(pack.Uint16BE(region[ptrOff:]))
		s, err := cstringUntilNUL(region, off)
		if err != nil {
			return NumberedEntity{}, err
		}
		aliases[i] = s
	}

	return NumberedEntity{Name: name, Number: number, Aliases: aliases}, nil
}

// EncodeProtocol packs p into its on-disk value representation.
func EncodeProtocol(p Protocol) ([]byte, error) { return encodeNumberedEntity(p) }

// DecodeProtocol unpacks value into a Protocol.
func DecodeProtocol(value, scratch []byte) (Protocol, error) { return decodeNumberedEntity(value, scratch) }

// EncodeRPC packs r into its on-disk value representation.
func EncodeRPC(r RPC) ([]byte, error) { return encodeNumberedEntity(r) }

// DecodeRPC unpacks value into an RPC.
func DecodeRPC(value, scratch []byte) (RPC, error) { return decodeNumberedEntity(value, scratch) }

// EmitProtocol writes the canonical-name, alias, and numeric-number
// keys for p, plus the shared tag-'~' enumeration sentinel.
func EmitProtocol(b Adder, p Protocol) error { return emitNumberedEntity(b, p) }

// EmitRPC writes the canonical-name, alias, and numeric-number keys
// for r, plus the shared tag-'~' enumeration sentinel.
func EmitRPC(b Adder, r RPC) error { return emitNumberedEntity(b, r) }

func emitNumberedEntity(b Adder, e NumberedEntity) error {
	value, err := encodeNumberedEntity(e)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(e.Name), value); err != nil {
		return err
	}
	for _, alias := range e.Aliases {
		if err := b.Add(TagAlias, []byte(alias), value); err != nil {
			return err
		}
	}
	return b.Add(TagNumeric, hexKey(e.Number), value)
}
