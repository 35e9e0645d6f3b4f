// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keychain

import (
	"fmt"

	"github.com/dark-bio/keychain-go/chainstate"
	"github.com/dark-bio/keychain-go/primitive"
)

// HKDF is the extract-then-expand chain strategy.
//
// The state payload is the current chaining key PRK_i of digest size.
// Each update re-extracts with the previous chaining key in the salt
// role, so recovering a later chaining key reveals nothing about
// earlier ones, then expands the output key and the next chaining seed
// under distinct labels, so an exposed output key reveals nothing about
// future chain state. Updates are deterministic: identical arguments
// yield identical results.
//
// https://datatracker.ietf.org/doc/html/rfc5869
type HKDF struct {
	hash      primitive.Hash
	outputLen int
	person    []byte
	fp        []byte
}

var _ Chain = (*HKDF)(nil)

// NewHKDF creates an HKDF chain over the given hash function.
func NewHKDF(h primitive.Hash, cfg Config) (*HKDF, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: hash %d", ErrUnsupportedPrimitive, h)
	}
	if len(cfg.Personalization) > MaxPersonalization {
		return nil, fmt.Errorf("%w: personalization is %d bytes, max %d", ErrInvalidParameter, len(cfg.Personalization), MaxPersonalization)
	}
	outputLen := cfg.OutputLen
	if outputLen == 0 {
		outputLen = h.Size()
	}
	if outputLen < 0 || outputLen > h.MaxOutput() {
		return nil, fmt.Errorf("%w: %d bytes, max %d for %v", ErrInvalidOutputLength, outputLen, h.MaxOutput(), h)
	}
	return &HKDF{
		hash:      h,
		outputLen: outputLen,
		person:    append([]byte(nil), cfg.Personalization...),
		fp:        fingerprint(chainstate.TagHKDF, byte(h), outputLen, cfg.Personalization),
	}, nil
}

// Instantiate extracts the initial chaining key PRK_0 from the secret
// key material and returns it as the first chain state. The salt may be
// nil, selecting the RFC 5869 default; it must not exceed the digest
// size.
func (c *HKDF) Instantiate(skm, salt []byte) ([]byte, error) {
	if len(skm) < c.hash.Size() {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %v", ErrInsufficientEntropy, len(skm), c.hash.Size(), c.hash)
	}
	if len(salt) > c.hash.Size() {
		return nil, fmt.Errorf("%w: salt is %d bytes, max %d for %v", ErrInvalidParameter, len(salt), c.hash.Size(), c.hash)
	}
	prk := c.hash.Extract(salt, skm)
	return chainstate.Encode(chainstate.TagHKDF, c.fp, prk), nil
}

// Update advances the chain, deriving an output key of the configured
// default length.
func (c *HKDF) Update(state, input []byte) ([]byte, []byte, error) {
	return c.UpdateWith(state, input, nil, c.outputLen)
}

// UpdateWith advances the chain by re-extracting the chaining key over
// the input and extra entropy, then expanding n output bytes and the
// next chaining seed under separate labels.
func (c *HKDF) UpdateWith(state, input, extra []byte, n int) ([]byte, []byte, error) {
	blob, err := decodeState(state, chainstate.TagHKDF, c.fp, c.hash.Size())
	if err != nil {
		return nil, nil, err
	}
	if n <= 0 || n > c.hash.MaxOutput() {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d for %v", ErrInvalidOutputLength, n, c.hash.MaxOutput(), c.hash)
	}

	ikm := make([]byte, 0, len(input)+len(extra))
	ikm = append(ikm, input...)
	ikm = append(ikm, extra...)
	prk := c.hash.Extract(blob.Payload, ikm)

	out := c.hash.Expand(prk, info(labelOutput, c.person), n)
	next := c.hash.Expand(prk, info(labelChain, c.person), c.hash.Size())
	return chainstate.Encode(chainstate.TagHKDF, c.fp, next), out, nil
}
