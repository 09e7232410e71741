// Package cdbhash implements the 32-bit string hash used to locate
// records in a cdb file: djb's "times 33" hash, seeded at 5381.
//
// Grounded in mcdb's uint32_hash_djb (original_source/uint32.h): the
// recurrence and the 5381 seed constant are part of the on-disk format's
// contract, not an implementation choice, and must be reproduced exactly
// for two cdb files built from the same input to be byte-identical.
package cdbhash

// Init is the seed a fresh hash starts from (UINT32_HASH_DJB_INIT).
const Init uint32 = 5381

// Update folds one byte into an in-progress hash using the djb
// recurrence: h = (h<<5) + h ^ b, i.e. h*33 ^ b, over wrapping uint32
// arithmetic.
func Update(h uint32, b byte) uint32 {
	return ((h << 5) + h) ^ uint32(b)
}

// Bytes folds an entire byte slice into an in-progress hash.
func Bytes(h uint32, buf []byte) uint32 {
	for _, b := range buf {
		h = Update(h, b)
	}
	return h
}

// Hash computes the hash of a tagged key: if tag is non-zero it is
// hashed first, then the key bytes. A tag of zero means "no tag" and is
// not hashed, so untagged and zero-tagged keys are indistinguishable by
// design (spec: "a tag of zero means untagged").
func Hash(tag byte, key []byte) uint32 {
	h := Init
	if tag != 0 {
		h = Update(h, tag)
	}
	return Bytes(h, key)
}
