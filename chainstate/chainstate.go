// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chainstate implements the fixed-layout encoding for opaque
// chain state blobs. Every blob carries a strategy tag and a parameter
// fingerprint ahead of the state payload, so a state produced under one
// strategy or parameter set can never be silently consumed by another:
//
//	[1-byte strategy tag][1-byte fingerprint length][fingerprint][payload]
package chainstate

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// Strategy tags, part of the wire format.
const (
	TagHKDF  byte = 0x01
	TagPRG   byte = 0x02
	TagXDRBG byte = 0x03
)

// MaxFingerprint is the largest fingerprint length the one-byte length
// field can carry.
const MaxFingerprint = 255

// Error types for chain state decoding and verification failures
var (
	ErrTruncated  = errors.New("truncated chain state")
	ErrUnknownTag = errors.New("unknown strategy tag")
	ErrMismatch   = errors.New("chain state mismatch")
)

// Blob is a decoded chain state: the strategy tag, the parameter
// fingerprint of the producing configuration, and the opaque payload
// the strategy advances.
type Blob struct {
	Tag         byte
	Fingerprint []byte
	Payload     []byte
}

// Encode serializes a chain state blob.
//
// Panics if the fingerprint exceeds MaxFingerprint bytes; fingerprints
// are fixed-width values computed by the key chains, never
// caller-supplied data.
func Encode(tag byte, fingerprint, payload []byte) []byte {
	if len(fingerprint) > MaxFingerprint {
		panic("chainstate: fingerprint too long")
	}
	out := make([]byte, 0, 2+len(fingerprint)+len(payload))
	out = append(out, tag, byte(len(fingerprint)))
	out = append(out, fingerprint...)
	out = append(out, payload...)
	return out
}

// Decode parses a chain state blob, validating the strategy tag and the
// framing. The returned slices alias data.
func Decode(data []byte) (*Blob, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	tag := data[0]
	if tag < TagHKDF || tag > TagXDRBG {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
	}
	n := int(data[1])
	if len(data) < 2+n {
		return nil, fmt.Errorf("%w: fingerprint needs %d bytes, have %d", ErrTruncated, n, len(data)-2)
	}
	return &Blob{
		Tag:         tag,
		Fingerprint: data[2 : 2+n],
		Payload:     data[2+n:],
	}, nil
}

// Verify checks that the blob was produced under the given strategy tag
// and parameter fingerprint. The fingerprint comparison is constant
// time.
func (b *Blob) Verify(tag byte, fingerprint []byte) error {
	if b.Tag != tag {
		return fmt.Errorf("%w: strategy tag 0x%02x, want 0x%02x", ErrMismatch, b.Tag, tag)
	}
	if len(b.Fingerprint) != len(fingerprint) ||
		subtle.ConstantTimeCompare(b.Fingerprint, fingerprint) != 1 {
		return fmt.Errorf("%w: parameter fingerprint", ErrMismatch)
	}
	return nil
}
