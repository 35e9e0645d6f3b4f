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

// XDRBG is the XOF-based chain strategy, following the XDRBG
// construction of Kelsey, Lucks, and Mueller.
//
// The state payload is a fixed-length string V of twice the XOF's
// security strength. Each update is one XDRBG generate call: a single
// squeeze over V, the domain string alpha, and the encoded operation
// tag yields the next state and the output key in one pass. The
// single-squeeze split is part of the construction; producing state and
// output from two separate squeezes would change every derived byte.
// Updates are deterministic: identical arguments yield identical
// results.
//
// https://tosc.iacr.org/index.php/ToSC/article/view/11399
type XDRBG struct {
	xof       primitive.XOF
	outputLen int
	person    []byte
	fp        []byte
}

var _ Chain = (*XDRBG)(nil)

// MaxAlpha is the largest domain string an XDRBG call accepts. The
// construction encodes 85*n + len(alpha) in a single byte, with the
// operation tag n at most 2. Longer caller inputs must be pre-hashed
// before use as alpha.
const MaxAlpha = 84

// XDRBG operation tags for the domain encoding.
const (
	xdrbgInstantiate = 0
	xdrbgReseed      = 1
	xdrbgGenerate    = 2
)

// NewXDRBG creates an XDRBG chain over the given XOF. The configured
// personalization is used as the alpha string of the instantiate call
// and is bounded by MaxAlpha.
func NewXDRBG(x primitive.XOF, cfg Config) (*XDRBG, error) {
	if !x.Valid() {
		return nil, fmt.Errorf("%w: xof %d", ErrUnsupportedPrimitive, x)
	}
	if len(cfg.Personalization) > MaxAlpha {
		return nil, fmt.Errorf("%w: personalization is %d bytes, max %d", ErrInvalidParameter, len(cfg.Personalization), MaxAlpha)
	}
	outputLen := cfg.OutputLen
	if outputLen == 0 {
		outputLen = x.StateSize()
	}
	if outputLen < 0 || outputLen+x.StateSize() > x.MaxSqueeze() {
		return nil, fmt.Errorf("%w: %d bytes, max %d for %v", ErrInvalidOutputLength, outputLen, x.MaxSqueeze()-x.StateSize(), x)
	}
	return &XDRBG{
		xof:       x,
		outputLen: outputLen,
		person:    append([]byte(nil), cfg.Personalization...),
		fp:        fingerprint(chainstate.TagXDRBG, byte(x), outputLen, cfg.Personalization),
	}, nil
}

// minSeed returns the minimum seed length for instantiate, three
// quarters of the state size (1.5x the security strength).
func (c *XDRBG) minSeed() int {
	return c.xof.StateSize() * 3 / 4
}

// minReseed returns the minimum seed length for reseed, half the state
// size (the security strength).
func (c *XDRBG) minReseed() int {
	return c.xof.StateSize() / 2
}

// Instantiate derives the initial state V0 with a single squeeze over
// the secret key material, the optional nonce, and the personalization
// as alpha under the instantiate tag.
func (c *XDRBG) Instantiate(skm, nonce []byte) ([]byte, error) {
	if len(skm) < c.minSeed() {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %v", ErrInsufficientEntropy, len(skm), c.minSeed(), c.xof)
	}
	seed := make([]byte, 0, len(skm)+len(nonce))
	seed = append(seed, skm...)
	seed = append(seed, nonce...)
	v := c.squeeze(seed, c.person, xdrbgInstantiate, c.xof.StateSize())
	return chainstate.Encode(chainstate.TagXDRBG, c.fp, v), nil
}

// Update advances the chain, deriving an output key of the configured
// default length.
func (c *XDRBG) Update(state, input []byte) ([]byte, []byte, error) {
	return c.UpdateWith(state, input, nil, c.outputLen)
}

// UpdateWith advances the chain with one generate call. The caller
// input and extra entropy are combined into the alpha string, bounded
// by MaxAlpha; a single squeeze yields the next state followed by n
// output bytes.
func (c *XDRBG) UpdateWith(state, input, extra []byte, n int) ([]byte, []byte, error) {
	size := c.xof.StateSize()
	blob, err := decodeState(state, chainstate.TagXDRBG, c.fp, size)
	if err != nil {
		return nil, nil, err
	}
	alpha := make([]byte, 0, len(input)+len(extra))
	alpha = append(alpha, input...)
	alpha = append(alpha, extra...)
	if len(alpha) > MaxAlpha {
		return nil, nil, fmt.Errorf("%w: alpha is %d bytes, max %d", ErrInvalidParameter, len(alpha), MaxAlpha)
	}
	if n <= 0 || n+size > c.xof.MaxSqueeze() {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d for %v", ErrInvalidOutputLength, n, c.xof.MaxSqueeze()-size, c.xof)
	}

	total := c.squeeze(blob.Payload, alpha, xdrbgGenerate, size+n)
	next, out := total[:size], total[size:]
	return chainstate.Encode(chainstate.TagXDRBG, c.fp, next), out, nil
}

// Reseed folds fresh seed material into the state without producing
// output, under the reseed tag. The seed must carry at least the
// security strength in bytes; alpha is bounded by MaxAlpha.
func (c *XDRBG) Reseed(state, seed, alpha []byte) ([]byte, error) {
	size := c.xof.StateSize()
	blob, err := decodeState(state, chainstate.TagXDRBG, c.fp, size)
	if err != nil {
		return nil, err
	}
	if len(seed) < c.minReseed() {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %v", ErrInsufficientEntropy, len(seed), c.minReseed(), c.xof)
	}
	if len(alpha) > MaxAlpha {
		return nil, fmt.Errorf("%w: alpha is %d bytes, max %d", ErrInvalidParameter, len(alpha), MaxAlpha)
	}
	material := make([]byte, 0, size+len(seed))
	material = append(material, blob.Payload...)
	material = append(material, seed...)
	v := c.squeeze(material, alpha, xdrbgReseed, size)
	return chainstate.Encode(chainstate.TagXDRBG, c.fp, v), nil
}

// squeeze performs one XOF call over material || alpha || encoded
// domain byte. The trailing byte encodes 85*op + len(alpha), the XDRBG
// domain-separation rule; with alpha bounded by MaxAlpha it always
// fits a single byte.
func (c *XDRBG) squeeze(material, alpha []byte, op int, n int) []byte {
	buf := make([]byte, 0, len(material)+len(alpha)+1)
	buf = append(buf, material...)
	buf = append(buf, alpha...)
	buf = append(buf, byte(85*op+len(alpha)))
	return c.xof.Squeeze(buf, n)
}
