package nssrecord

import (
	"fmt"

	"github.com/gstrauss/mcdb-sub001/pack"
)

// Shadow header field offsets (NSS_SP_* in the original C headers).
// The seven numeric fields are 8-byte signed values; pwdp-ofs is a
// trailing u32.
const (
	shadowLstchg  = 0
	shadowMin     = 8
	shadowMax     = 16
	shadowWarn    = 24
	shadowInact   = 32
	shadowExpire  = 40
	shadowFlag    = 48
	shadowPwdpOfs = 56
	shadowHdrSize = 60
)

// EmptyField is the in-memory sentinel callers supply for an absent
// shadow numeric field. Some platforms represent an empty field as
// unsigned max instead of signed -1; EncodeShadow stores whatever
// value the caller sets here and does not normalize it itself, so
// callers populating a Shadow from a platform that uses a different
// absent-field convention must map it to EmptyField before encoding.
const EmptyField int64 = -1

// Shadow is a shadow(5)-style entity.
type Shadow struct {
	Name    string
	Passwd  string
	Lstchg  int64
	Min     int64
	Max     int64
	Warn    int64
	Inact   int64
	Expire  int64
	Flag    int64
}

// EncodeShadow packs s into its on-disk value representation.
func EncodeShadow(s Shadow) ([]byte, error) {
	if err := checkField("name", s.Name); err != nil {
		return nil, err
	}
	if err := checkField("passwd", s.Passwd); err != nil {
		return nil, err
	}

	value := make([]byte, shadowHdrSize+len(s.Name)+1+len(s.Passwd)+1)
	pack.PutInt64BE(value[shadowLstchg:], s.Lstchg)
	pack.PutInt64BE(value[shadowMin:], s.Min)
	pack.PutInt64BE(value[shadowMax:], s.Max)
	pack.PutInt64BE(value[shadowWarn:], s.Warn)
	pack.PutInt64BE(value[shadowInact:], s.Inact)
	pack.PutInt64BE(value[shadowExpire:], s.Expire)
	pack.PutInt64BE(value[shadowFlag:], s.Flag)

	strs := []string{s.Name, s.Passwd}
	offsets := make([]int, len(strs))
	putStrings(value[shadowHdrSize:], offsets, strs)
	pack.PutUint32BE(value[shadowPwdpOfs:], uint32(shadowHdrSize+offsets[1]))
	return value, nil
}

// DecodeShadow unpacks value into a Shadow, using scratch as backing
// storage for the reconstructed strings.
func DecodeShadow(value []byte, scratch []byte) (Shadow, error) {
	if len(value) < shadowHdrSize {
		return Shadow{}, fmt.Errorf("%w: shadow value shorter than header", ErrUnavailable)
	}
	pwdpOfs := pack.Uint32BE(value[shadowPwdpOfs:])

	if len(value) > len(scratch) {
		return Shadow{}, ErrRetry
	}
	n := copy(scratch, value)
	region := scratch[:n]

	name, err := cstringRange(region, shadowHdrSize, int(pwdpOfs))
	if err != nil {
		return Shadow{}, err
	}
	passwd, err := cstringUntilNUL(region, int(pwdpOfs))
	if err != nil {
		return Shadow{}, err
	}

	return Shadow{
		Name:   name,
		Passwd: passwd,
		Lstchg: pack.Int64BE(region[shadowLstchg:]),
		Min:    pack.Int64BE(region[shadowMin:]),
		Max:    pack.Int64BE(region[shadowMax:]),
		Warn:   pack.Int64BE(region[shadowWarn:]),
		Inact:  pack.Int64BE(region[shadowInact:]),
		Expire: pack.Int64BE(region[shadowExpire:]),
		Flag:   pack.Int64BE(region[shadowFlag:]),
	}, nil
}

// EmitShadow writes the canonical-name key for s, plus the shared
// tag-'~' enumeration sentinel.
func EmitShadow(b Adder, s Shadow) error {
	value, err := EncodeShadow(s)
	if err != nil {
		return err
	}
	if err := emitEnumerationSentinel(b, value); err != nil {
		return err
	}
	return b.Add(TagCanonical, []byte(s.Name), value)
}
