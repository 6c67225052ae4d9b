// Package pbmxerr defines the closed error taxonomy shared by every layer
// of the toolkit: encoding/decoding, proof verification, malformed input,
// RNG protocol misuse, and random-spec parsing.
package pbmxerr

import "errors"

// Sentinel errors. Callers compare with errors.Is; wrapping with
// fmt.Errorf("...: %w", Err*) is expected at every decode/verify boundary.
var (
	// ErrDecoding covers malformed bytes, non-canonical scalar/point
	// encodings, framing tag mismatches, missing fields and length
	// mismatches.
	ErrDecoding = errors.New("pbmx: decoding error")

	// ErrBadProof is returned verbatim by any NIZK verifier that rejects.
	ErrBadProof = errors.New("pbmx: bad proof")

	// ErrInvalidInput covers out-of-range indices, malformed
	// permutations, stack length mismatches and undefined names.
	ErrInvalidInput = errors.New("pbmx: invalid input")

	// ErrRngMisuse covers duplicate contributors and contributions
	// arriving after a generator has closed generation or reveal.
	ErrRngMisuse = errors.New("pbmx: rng misuse")

	// ErrParse covers invalid random-spec strings.
	ErrParse = errors.New("pbmx: parse error")
)
