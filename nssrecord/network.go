package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Network header field offsets (NSS_N_* in the original C headers).
const (
	netNet          = 0
	netAddrType     = 8
	netAliasesStr   = 16
	netAliasesPtr   = 20
	netAliasesCount = 24
	netHdrSize      = 28
)

// Network is a networks(5)-style entity.
type Network struct {
	Name     string
	Aliases  []string
	Net      uint32
	AddrType uint32
}

// EncodeNetwork packs n into its on-disk value representation.
func EncodeNetwork(n Network) ([]byte, error) {
	if err := checkField("name", n.Name); err != nil {
		return nil, err
	}
	for i, a := range n.Aliases {
		if err := checkField(fmt.Sprintf("alias[%d]", i), a); err != nil {
			return nil, err
		}
	}

	aliasesStrOfs := netHdrSize + len(n.Name) + 1
	aliasesLen := stringsLen(n.Aliases)
	aliasesPtrOfs := aliasesStrOfs + aliasesLen
	value := make([]byte, aliasesPtrOfs+2*len(n.Aliases))

	if err := checkU16("aliases-str-ofs", aliasesStrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-ptrs-ofs", aliasesPtrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-count", len(n.Aliases)); err != nil {
		return nil, err
	}

	copy(value[netHdrSize:], n.Name)
	value[netHdrSize+len(n.Name)] = 0

	aliasOffsets := make([]int, len(n.Aliases))
	putStrings(value[aliasesStrOfs:], aliasOffsets, n.Aliases)
	for i, off := range aliasOffsets {
		pack.PutUint16BE(value[aliasesPtrOfs+2*i:], uint16(off))
	}

	pack.PutUint32BE(value[netNet:], n.Net)
	pack.PutUint32BE(value[netAddrType:], n.AddrType)
	pack.PutUint16BE(value[netAliasesStr:], uint16(aliasesStrOfs))
	pack.PutUint16BE(value[netAliasesPtr:], uint16(aliasesPtrOfs))
	pack.PutUint16BE(value[netAliasesCount:], uint16(len(n.Aliases)))
	return value, nil
}

// DecodeNetwork unpacks value into a Network, using scratch as backing
// storage for the reconstructed strings.
func DecodeNetwork(value []byte, scratch []byte) (Network, error) {
	if len(value) < netHdrSize {
		return Network{}, fmt.Errorf("%w: network value shorter than header", ErrUnavailable)
	}
	net_ := pack.Uint32BE(value[netNet:])
	addrType := pack.Uint32BE(value[netAddrType:])
	aliasesStrOfs := uint32(pack.Uint16BE(value[netAliasesStr:]))
	aliasesPtrOfs := uint32(pack.Uint16BE(value[netAliasesPtr:]))
	aliasesCount := pack.Uint16BE(value[netAliasesCount:])

	if len(value) > len(scratch) {
		return Network{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringUntilNUL(region, netHdrSize)
	if err != nil {
		return Network{}, err
	}

	aliases := make([]string, aliasesCount)
	for i := range aliases {
		ptrOff := int(aliasesPtrOfs) + 2*i
		if ptrOff+2 > len(region) {
			return Network{}, fmt.Errorf("%w: alias pointer table out of bounds", ErrUnavailable)
		}
		off := int(aliasesStrOfs) + int(pack.Uint16BE(region[ptrOff:]))
		s, err := cstringUntilNUL(region, off)
		if err != nil {
			return Network{}, err
		}
		aliases[i] = s
	}

	return Network{Name: name, Aliases: aliases, Net: net_, AddrType: addrType}, nil
}

// EmitNetwork writes the canonical-name key, one alias key per alias,
// and the numeric network-address key, plus the shared tag-'~'
// enumeration sentinel.
func EmitNetwork(b Adder, n Network) error {
	value, err := EncodeNetwork(n)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(n.Name), value); err != nil {
		return err
	}
	for _, alias := range n.Aliases {
		if err := b.Add(TagAlias, []byte(alias), value); err != nil {
			return err
		}
	}
	return b.Add(TagNumeric, hexKey(n.Net), value)
}
