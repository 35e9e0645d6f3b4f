// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keychain derives unbounded, forward-secret sequences of keys
// from an initial secret and a caller-supplied sequence of inputs.
//
// Three interchangeable strategies implement the Chain contract: an
// HKDF extract/expand chain, a Barak-Halevi style PRG with
// forward-secure state refresh, and an XDRBG over an extendable-output
// function. A chain holds no state between calls: Instantiate returns
// an opaque state blob, every Update consumes a blob and returns its
// replacement together with the derived output key, and persistence is
// entirely the caller's concern (see the store package). Advancing two
// copies of one state independently is a deliberate fork producing two
// valid chains with a shared prefix, not an error.
//
// https://eprint.iacr.org/2005/029.pdf
// https://tosc.iacr.org/index.php/ToSC/article/view/11399
package keychain

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dark-bio/keychain-go/chainstate"
	"github.com/dark-bio/keychain-go/primitive"
)

// Error types for key chain construction and advancement failures. A
// failed Update yields neither a new state nor an output key.
var (
	ErrInsufficientEntropy = errors.New("initial key material too short")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInvalidOutputLength = errors.New("invalid output length")
	ErrChainExhausted      = errors.New("key chain exhausted")

	// ErrStateMismatch is returned when a state blob's strategy tag or
	// parameter fingerprint does not match the consuming chain.
	ErrStateMismatch = chainstate.ErrMismatch

	// ErrUnsupportedPrimitive is returned when a chain is configured
	// with an unknown hash or XOF identifier.
	ErrUnsupportedPrimitive = primitive.ErrUnsupported
)

const (
	// MaxPersonalization is the largest personalization string a chain
	// accepts; the one-byte length prefix mixed ahead of it fixes the
	// bound.
	MaxPersonalization = 255

	// FingerprintSize is the width of the parameter fingerprint
	// embedded in every state blob.
	FingerprintSize = 8
)

// Domain-separation labels. These are wire constants shared with every
// other implementation of the constructions; changing one changes all
// derived keys.
var (
	labelOutput = []byte("output")
	labelChain  = []byte("chain")
	labelGen    = []byte("out")
	labelNext   = []byte("next")
)

// Chain is the common contract of the three derivation strategies.
//
// State blobs are encoded by the chainstate package and are only ever
// accepted by a chain whose configuration matches the one that produced
// them. Update and UpdateWith never modify the state passed in; the
// caller decides whether discarding the old value is a state advance or
// keeping it is a fork.
type Chain interface {
	// Instantiate consumes the initial secret key material and returns
	// the first chain state. The second argument is the HKDF extract
	// salt, the PRG instantiate seed supplement, or the XDRBG nonce,
	// and may be nil.
	Instantiate(skm, saltOrNonce []byte) ([]byte, error)

	// Update advances the chain by one step, deriving an output key of
	// the configured default length. The input may be empty.
	Update(state, input []byte) ([]byte, []byte, error)

	// UpdateWith advances the chain by one step, additionally folding
	// extra entropy into the transition and deriving n output bytes.
	UpdateWith(state, input, extra []byte, n int) ([]byte, []byte, error)
}

// Config carries the per-chain parameters shared by all strategies.
// A Config is fixed at construction and never mutated.
type Config struct {
	// OutputLen is the default output key length in bytes. Zero selects
	// the strategy's native size (the hash digest size, or the XOF
	// state size).
	OutputLen int

	// Personalization is an optional domain-separation string of at
	// most MaxPersonalization bytes, mixed into every derivation.
	Personalization []byte
}

// fingerprint binds a chain's configuration into the fixed-width value
// embedded in every state blob. Each variable-length field is preceded
// by its length so that distinct configurations cannot collide.
func fingerprint(tag byte, prim byte, outputLen int, personalization []byte) []byte {
	buf := make([]byte, 0, 8+len(personalization))
	buf = append(buf, tag, prim)
	buf = binary.BigEndian.AppendUint32(buf, uint32(outputLen))
	buf = append(buf, byte(len(personalization)))
	buf = append(buf, personalization...)
	sum := sha256.Sum256(buf)
	return sum[:FingerprintSize]
}

// info builds an HKDF info string or hash label suffix from a
// domain-separation label and the personalization, with a fixed-width
// length prefix between them to keep the concatenation unambiguous.
func info(label, personalization []byte) []byte {
	out := make([]byte, 0, len(label)+1+len(personalization))
	out = append(out, label...)
	out = append(out, byte(len(personalization)))
	out = append(out, personalization...)
	return out
}

// decodeState decodes a blob and checks it against the consuming
// chain's tag, fingerprint, and payload length.
func decodeState(state []byte, tag byte, fp []byte, payloadLen int) (*chainstate.Blob, error) {
	blob, err := chainstate.Decode(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
	}
	if err := blob.Verify(tag, fp); err != nil {
		return nil, err
	}
	if len(blob.Payload) != payloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrStateMismatch, len(blob.Payload), payloadLen)
	}
	return blob, nil
}
