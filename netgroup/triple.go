package netgroup

import (
	"fmt"
	"strings"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Triple is one (host, user, domain) netgroup member. Any field may be
// empty, denoting "any".
type Triple struct {
	Host   string
	User   string
	Domain string
}

// maxFieldLen is the largest a single triple field may be; longer
// fields would overflow the 1-byte length prefixes in the encoded form.
const maxFieldLen = 255

// encodeTriple renders t into the content-addressed wire form: a 4-byte
// header (total length, host length, user length) followed by each
// non-empty field, lowercased for host/domain, NUL-terminated.
func encodeTriple(t Triple) ([]byte, error) {
	if len(t.Host) > maxFieldLen || len(t.User) > maxFieldLen || len(t.Domain) > maxFieldLen {
		return nil, fmt.Errorf("%w: netgroup triple field exceeds %d bytes", ErrInvalidInput, maxFieldLen)
	}
	host := strings.ToLower(t.Host)
	domain := strings.ToLower(t.Domain)

	sum := 4
	if host != "" {
		sum += len(host) + 1
	}
	if t.User != "" {
		sum += len(t.User) + 1
	}
	if domain != "" {
		sum += len(domain) + 1
	}

	buf := make([]byte, sum)
	pack.PutUint16BE(buf[0:2], uint16(sum))
	buf[2] = byte(len(host))
	buf[3] = byte(len(t.User))

	off := 4
	if host != "" {
		off += copy(buf[off:], host)
		buf[off] = 0
		off++
	}
	if t.User != "" {
		off += copy(buf[off:], t.User)
		buf[off] = 0
		off++
	}
	if domain != "" {
		off += copy(buf[off:], domain)
		buf[off] = 0
		off++
	}
	return buf, nil
}

// decodeTriple is the inverse of encodeTriple; used by tests and by
// readers that want the concrete fields back out of a flattened list.
func decodeTriple(buf []byte) (Triple, error) {
	if len(buf) < 4 {
		return Triple{}, fmt.Errorf("%w: truncated triple header", ErrUnavailable)
	}
	total := pack.Uint16BE(buf[0:2])
	hostLen := int(buf[2])
	userLen := int(buf[3])
	if int(total) != len(buf) {
		return Triple{}, fmt.Errorf("%w: triple length mismatch", ErrUnavailable)
	}

	off := 4
	var host, user, domain string
	if hostLen > 0 {
		if off+hostLen+1 > len(buf) {
			return Triple{}, fmt.Errorf("%w: truncated host field", ErrUnavailable)
		}
		host = string(buf[off : off+hostLen])
		off += hostLen + 1
	}
	if userLen > 0 {
		if off+userLen+1 > len(buf) {
			return Triple{}, fmt.Errorf("%w: truncated user field", ErrUnavailable)
		}
		user = string(buf[off : off+userLen])
		off += userLen + 1
	}
	if off < len(buf) {
		domainLen := len(buf) - off - 1
		if domainLen < 0 || buf[len(buf)-1] != 0 {
			return Triple{}, fmt.Errorf("%w: truncated domain field", ErrUnavailable)
		}
		domain = string(buf[off : off+domainLen])
	}
	return Triple{Host: host, User: user, Domain: domain}, nil
}
