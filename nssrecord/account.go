package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Account header field offsets (NSS_PW_* in the original C headers).
const (
	acctPasswdOfs = 0
	acctGecosOfs  = 4
	acctDirOfs    = 8
	acctShellOfs  = 12
	acctUID       = 16
	acctGID       = 24
	acctHdrSize   = 32
)

// Account is a passwd(5)-style entity: a user account.
type Account struct {
	Name   string
	Passwd string
	Gecos  string
	Dir    string
	Shell  string
	UID    uint32
	GID    uint32
}

// EncodeAccount packs a into its on-disk value representation.
func EncodeAccount(a Account) ([]byte, error) {
	for _, f := range []struct{ name, s string }{
		{"name", a.Name}, {"passwd", a.Passwd}, {"gecos", a.Gecos}, {"dir", a.Dir}, {"shell", a.Shell},
	} {
		if err := checkField(f.name, f.s); err != nil {
			return nil, err
		}
	}

	strs := []string{a.Name, a.Passwd, a.Gecos, a.Dir, a.Shell}
	value := make([]byte, acctHdrSize+stringsLen(strs))

	offsets := make([]int, len(strs))
	putStrings(value[acctHdrSize:], offsets, strs)

	pack.PutUint32BE(value[acctPasswdOfs:], uint32(acctHdrSize+offsets[1]))
	pack.PutUint32BE(value[acctGecosOfs:], uint32(acctHdrSize+offsets[2]))
	pack.PutUint32BE(value[acctDirOfs:], uint32(acctHdrSize+offsets[3]))
	pack.PutUint32BE(value[acctShellOfs:], uint32(acctHdrSize+offsets[4]))
	pack.PutUint32BE(value[acctUID:], a.UID)
	pack.PutUint32BE(value[acctGID:], a.GID)
	return value, nil
}

// DecodeAccount unpacks value into an Account, using scratch as backing
// storage for the reconstructed strings. Returns ErrRetry if scratch is
// too small.
func DecodeAccount(value []byte, scratch []byte) (Account, error) {
	if len(value) < acctHdrSize {
		return Account{}, fmt.Errorf("%w: account value shorter than header", ErrUnavailable)
	}
	passwdOfs := pack.Uint32BE(value[acctPasswdOfs:])
	gecosOfs := pack.Uint32BE(value[acctGecosOfs:])
	dirOfs := pack.Uint32BE(value[acctDirOfs:])
	shellOfs := pack.Uint32BE(value[acctShellOfs:])
	uid := pack.Uint32BE(value[acctUID:])
	gid := pack.Uint32BE(value[acctGID:])

	if int(passwdOfs) > len(value) || int(gecosOfs) > len(value) || int(dirOfs) > len(value) || int(shellOfs) > len(value) {
		return Account{}, fmt.Errorf("%w: account offsets out of range", ErrUnavailable)
	}

	if len(value) > len(scratch) {
		return Account{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringRange(region, acctHdrSize, int(passwdOfs))
	if err != nil {
		return Account{}, err
	}
	passwd, err := cstringRange(region, int(passwdOfs), int(gecosOfs))
	if err != nil {
		return Account{}, err
	}
	gecos, err := cstringRange(region, int(gecosOfs), int(dirOfs))
	if err != nil {
		return Account{}, err
	}
	dir, err := cstringRange(region, int(dirOfs), int(shellOfs))
	if err != nil {
		return Account{}, err
	}
	shell, err := cstringUntilNUL(region, int(shellOfs))
	if err != nil {
		return Account{}, err
	}

	return Account{
		Name: name, Passwd: passwd, Gecos: gecos, Dir: dir, Shell: shell,
		UID: uid, GID: gid,
	}, nil
}

// EmitAccount writes the canonical-name and numeric-uid keys for a,
// plus the shared tag-'~' enumeration sentinel, all pointing at the
// same packed value.
func EmitAccount(b Adder, a Account) error {
	value, err := EncodeAccount(a)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	if err := b.Add(TagCanonical, []byte(a.Name), value); err != nil {
		return err
	}
	return b.Add(TagNumeric, hexKey(a.UID), value)
}

func cstringRange(region []byte, start, end int) (string, error) {
	if start < 0 || end > len(region) || start > end {
		return "", fmt.Errorf("%w: field range [%d,%d) out of bounds", ErrUnavailable, start, end)
	}
	s := region[start:end]
	// Trim the trailing NUL terminator, if present.
	if len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s), nil
}

func cstringUntilNUL(region []byte, start int) (string, error) {
	if start < 0 || start > len(region) {
		return "", fmt.Errorf("%w: field start %d out of bounds", ErrUnavailable, start)
	}
	for i := start; i < len(region); i++ {
		if region[i] == 0 {
			return string(region[start:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated field", ErrUnavailable)
}
