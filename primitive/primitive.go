// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package primitive adapts the hash and XOF constructions that the key
// chain strategies consume: HKDF extract/expand and plain digests over
// the SHA-2 and SHA-3 families, and arbitrary-length squeezes over
// SHAKE and KangarooTwelve.
//
// https://datatracker.ietf.org/doc/html/rfc5869
// https://nvlpubs.nist.gov/nistpubs/FIPS/NIST.FIPS.202.pdf
package primitive

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"
	"io"

	"github.com/cloudflare/circl/xof"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// ErrUnsupported is returned when a hash or XOF identifier is not one
// of the supported constructions.
var ErrUnsupported = errors.New("unsupported primitive")

// Hash identifies a fixed-output hash function usable for HKDF
// extract/expand and for direct digests.
type Hash uint8

const (
	SHA256 Hash = iota + 1
	SHA512
	SHA3_256
	SHA3_512
)

// Valid reports whether h is a supported hash identifier.
func (h Hash) Valid() bool {
	return h >= SHA256 && h <= SHA3_512
}

// String returns the conventional name of the hash function.
func (h Hash) String() string {
	switch h {
	case SHA256:
		return "SHA-256"
	case SHA512:
		return "SHA-512"
	case SHA3_256:
		return "SHA3-256"
	case SHA3_512:
		return "SHA3-512"
	default:
		return "unknown"
	}
}

// Size returns the digest size of the hash function in bytes.
//
// Panics on an unsupported identifier; callers are expected to have
// checked Valid beforehand.
func (h Hash) Size() int {
	switch h {
	case SHA256, SHA3_256:
		return 32
	case SHA512, SHA3_512:
		return 64
	default:
		panic("primitive: " + ErrUnsupported.Error())
	}
}

// MaxOutput returns the largest output HKDF expansion under this hash
// may produce, which is 255 digests per RFC 5869.
func (h Hash) MaxOutput() int {
	return 255 * h.Size()
}

// New returns a fresh digest instance of the hash function.
//
// Panics on an unsupported identifier.
func (h Hash) New() hash.Hash {
	switch h {
	case SHA256:
		return sha256.New()
	case SHA512:
		return sha512.New()
	case SHA3_256:
		return sha3.New256()
	case SHA3_512:
		return sha3.New512()
	default:
		panic("primitive: " + ErrUnsupported.Error())
	}
}

// Extract condenses the input key material into a pseudorandom key of
// Size bytes using HKDF-Extract. A nil or empty salt selects the RFC
// 5869 default of Size zero bytes.
func (h Hash) Extract(salt, ikm []byte) []byte {
	return hkdf.Extract(h.New, ikm, salt)
}

// Expand derives n bytes from the pseudorandom key and info string
// using HKDF-Expand.
//
// Panics if n exceeds MaxOutput; the key chains validate requested
// lengths before expanding.
func (h Hash) Expand(prk, info []byte, n int) []byte {
	r := hkdf.Expand(h.New, prk, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		panic("primitive: " + err.Error())
	}
	return out
}

// Sum returns the digest of the concatenation of the given parts.
func (h Hash) Sum(parts ...[]byte) []byte {
	d := h.New()
	for _, p := range parts {
		d.Write(p)
	}
	return d.Sum(nil)
}

// XOF identifies an extendable-output function usable for
// arbitrary-length squeezes.
type XOF uint8

const (
	SHAKE128 XOF = iota + 1
	SHAKE256
	K12
)

// Valid reports whether x is a supported XOF identifier.
func (x XOF) Valid() bool {
	return x >= SHAKE128 && x <= K12
}

// String returns the conventional name of the XOF.
func (x XOF) String() string {
	switch x {
	case SHAKE128:
		return "SHAKE128"
	case SHAKE256:
		return "SHAKE256"
	case K12:
		return "KangarooTwelve"
	default:
		return "unknown"
	}
}

// StateSize returns the chain state size the XOF sustains, twice its
// security strength in bytes.
func (x XOF) StateSize() int {
	switch x {
	case SHAKE128, K12:
		return 32
	case SHAKE256:
		return 64
	default:
		panic("primitive: " + ErrUnsupported.Error())
	}
}

// MaxSqueeze returns the largest total output a single squeeze may
// produce, keeping every squeeze within one backbone invocation's
// security margin.
func (x XOF) MaxSqueeze() int {
	switch x {
	case SHAKE128, K12:
		return 304
	case SHAKE256:
		return 344
	default:
		panic("primitive: " + ErrUnsupported.Error())
	}
}

// Squeeze absorbs the material and reads n bytes of output from the
// XOF.
//
// Panics on an unsupported identifier.
func (x XOF) Squeeze(material []byte, n int) []byte {
	var inst xof.XOF
	switch x {
	case SHAKE128:
		inst = xof.SHAKE128.New()
	case SHAKE256:
		inst = xof.SHAKE256.New()
	case K12:
		inst = xof.K12D10.New()
	default:
		panic("primitive: " + ErrUnsupported.Error())
	}
	inst.Write(material)
	out := make([]byte, n)
	if _, err := io.ReadFull(inst, out); err != nil {
		panic("primitive: " + err.Error())
	}
	return out
}
