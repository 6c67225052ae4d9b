// Package idhash provides the one domain-separated hash construction used
// throughout the toolkit for fingerprints, content-addressed Ids, and the
// unmask_random extensible-output hash. It is the sole caller of
// github.com/zeebo/blake3; BLAKE3's key-derivation mode is a direct fit
// for a family of fixed domain tags over variable public input.
package idhash

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
)

// Id is a 32-byte content-addressed identifier.
type Id [32]byte

// Sum hashes the concatenation of parts, each length-prefixed so that the
// mapping from (tag, parts) to output is injective, under the given
// domain tag.
func Sum(tag string, parts ...[]byte) Id {
	h := blake3.NewDeriveKey(tag)
	for _, p := range parts {
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	var out Id
	copy(out[:], h.Sum(nil))
	return out
}

// XOF returns an extensible-output reader seeded from data under the
// given domain tag, used by Vtmf.UnmaskRandom.
func XOF(tag string, data []byte) io.Reader {
	h := blake3.NewDeriveKey(tag)
	h.Write(data)
	return h.Digest()
}
