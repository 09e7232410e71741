package nssrecord

import (
	"fmt"
	"net"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Host header field offsets (NSS_H_*/NSS_HE_* in the original C headers).
// The *-ofs/-count fields are u16 values embedded in 4-byte slots.
const (
	hostAddrType     = 0
	hostLength       = 8
	hostAliasesStr   = 16
	hostAddrsStr     = 20
	hostAliasesPtr   = 24
	hostAliasesCount = 28
	hostAddrsCount   = 32
	hostHdrSize      = 36
)

// Address family constants, matching the Go net package's conventions
// for the families this codec supports.
const (
	AFInet  = 2  // AF_INET
	AFInet6 = 10 // AF_INET6 (Linux numbering; the value is opaque to this codec)
)

// Host is a hosts(5)-style entity: a canonical name, its aliases, and
// one or more fixed-width binary addresses of a single address family.
type Host struct {
	Name      string
	Aliases   []string
	AddrType  uint32 // AFInet or AFInet6
	AddrLen   uint32 // 4 for IPv4, 16 for IPv6
	Addrs     [][]byte
}

// EncodeHost packs h into its on-disk value representation.
func EncodeHost(h Host) ([]byte, error) {
	if err := checkField("name", h.Name); err != nil {
		return nil, err
	}
	for i, a := range h.Aliases {
		if err := checkField(fmt.Sprintf("alias[%d]", i), a); err != nil {
			return nil, err
		}
	}
	for _, a := range h.Addrs {
		if uint32(len(a)) != h.AddrLen {
			return nil, fmt.Errorf("%w: address length %d does not match header length %d", ErrInvalidInput, len(a), h.AddrLen)
		}
	}

	nameLen := len(h.Name) + 1
	aliasesLen := stringsLen(h.Aliases)
	aliasesStrOfs := hostHdrSize + nameLen
	aliasesPtrOfs := aliasesStrOfs + aliasesLen
	addrsStrOfs := aliasesPtrOfs + 2*len(h.Aliases)
	addrsLen := len(h.Addrs) * int(h.AddrLen)
	value := make([]byte, addrsStrOfs+addrsLen)

	if err := checkU16("aliases-str-ofs", aliasesStrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("addrs-str-ofs", addrsStrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-ptrs-ofs", aliasesPtrOfs); err != nil {
		return nil, err
	}
	if err := checkU16("aliases-count", len(h.Aliases)); err != nil {
		return nil, err
	}
	if err := checkU16("addrs-count", len(h.Addrs)); err != nil {
		return nil, err
	}

	copy(value[hostHdrSize:], h.Name)
	value[hostHdrSize+len(h.Name)] = 0

	aliasOffsets := make([]int, len(h.Aliases))
	putStrings(value[aliasesStrOfs:], aliasOffsets, h.Aliases)
	for i, off := range aliasOffsets {
		pack.PutUint16BE(value[aliasesPtrOfs+2*i:], uint16(off))
	}

	for i, a := range h.Addrs {
		copy(value[addrsStrOfs+i*int(h.AddrLen):], a)
	}

	pack.PutUint32BE(value[hostAddrType:], h.AddrType)
	pack.PutUint32BE(value[hostLength:], h.AddrLen)
	pack.PutUint16BE(value[hostAliasesStr:], uint16(aliasesStrOfs))
	pack.PutUint16BE(value[hostAddrsStr:], uint16(addrsStrOfs))
	pack.PutUint16BE(value[hostAliasesPtr:], uint16(aliasesPtrOfs))
	pack.PutUint16BE(value[hostAliasesCount:], uint16(len(h.Aliases)))
	pack.PutUint16BE(value[hostAddrsCount:], uint16(len(h.Addrs)))
	return value, nil
}

// DecodeHost unpacks value into a Host, using scratch as backing
// storage for the reconstructed strings and address bytes. family, if
// non-zero, filters: ErrUnavailable is returned if value's AddrType
// does not match.
func DecodeHost(value []byte, scratch []byte, family uint32) (Host, error) {
	if len(value) < hostHdrSize {
		return Host{}, fmt.Errorf("%w: host value shorter than header", ErrUnavailable)
	}
	addrType := pack.Uint32BE(value[hostAddrType:])
	addrLen := pack.Uint32BE(value[hostLength:])
	aliasesStrOfs := uint32(pack.Uint16BE(value[hostAliasesStr:]))
	addrsStrOfs := uint32(pack.Uint16BE(value[hostAddrsStr:]))
	aliasesPtrOfs := uint32(pack.Uint16BE(value[hostAliasesPtr:]))
	aliasesCount := pack.Uint16BE(value[hostAliasesCount:])
	addrsCount := pack.Uint16BE(value[hostAddrsCount:])

	if family != 0 && family != addrType {
		return Host{}, fmt.Errorf("%w: address family mismatch", ErrUnavailable)
	}

	if len(value) > len(scratch) {
		return Host{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringUntilNUL(region, hostHdrSize)
	if err != nil {
		return Host{}, err
	}

	aliases := make([]string, aliasesCount)
	for i := range aliases {
		ptrOff := int(aliasesPtrOfs) + 2*i
		if ptrOff+2 > len(region) {
			return Host{}, fmt.Errorf("%w: alias pointer table out of bounds", ErrUnavailable)
		}
		off := int(aliasesStrOfs) + int(pack.Uint16BE(region[ptrOff:]))
		s, err := cstringUntilNUL(region, off)
		if err != nil {
			return Host{}, err
		}
		aliases[i] = s
	}

	addrs := make([][]byte, addrsCount)
	for i := range addrs {
		start := int(addrsStrOfs) + i*int(addrLen)
		end := start + int(addrLen)
		if end > len(region) {
			return Host{}, fmt.Errorf("%w: address region out of bounds", ErrUnavailable)
		}
		addrs[i] = region[start:end]
	}

	return Host{Name: name, Aliases: aliases, AddrType: addrType, AddrLen: addrLen, Addrs: addrs}, nil
}

// EmitHost writes the canonical-name key (tag '='), one alias key per
// alias (tag '~'), and one binary-address key per address (tag 'b'),
// plus the shared tag-'~' enumeration sentinel. For 4-byte (IPv4)
// addresses a numeric address key is also emitted as an 8-hex-char key
// (tag 'x') so callers can look up by address without decoding the
// record first; other address lengths get no 'x' key.
func EmitHost(b Adder, h Host) error {
	value, err := EncodeHost(h)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(h.Name), value); err != nil {
		return err
	}
	for _, alias := range h.Aliases {
		if err := b.Add(TagAlias, []byte(alias), value); err != nil {
			return err
		}
	}
	for _, addr := range h.Addrs {
		if err := b.Add(TagBinary, addr, value); err != nil {
			return err
		}
		if h.AddrLen == 4 {
			ip := net.IP(addr).To4()
			if ip != nil {
				key := hexKey(pack.Uint32BE(ip))
				if err := b.Add(TagNumeric, key, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
