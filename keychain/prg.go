// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keychain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/dark-bio/keychain-go/chainstate"
	"github.com/dark-bio/keychain-go/primitive"
)

// PRG is the Barak-Halevi style chain strategy.
//
// The state payload is a digest-sized accumulator V followed by a
// big-endian 64-bit step counter. Each update first refreshes the
// accumulator by hashing it together with the caller input, any extra
// entropy, and a digest-sized read from the chain's entropy source, so
// one refresh with good entropy restores security even after a full
// state exposure. The output key and the next accumulator are then
// derived from the refreshed value under distinct labels.
//
// Because every update reads the entropy source, updates are NOT
// deterministic: two calls with identical explicit arguments yield
// different results unless the source itself is deterministic. Supply a
// deterministic reader to NewPRG to reproduce chains under test.
//
// https://eprint.iacr.org/2005/029.pdf
type PRG struct {
	hash      primitive.Hash
	outputLen int
	person    []byte
	entropy   io.Reader
	fp        []byte
}

var _ Chain = (*PRG)(nil)

// prgCounterSize is the width of the step counter in the state payload.
const prgCounterSize = 8

// NewPRG creates a Barak-Halevi chain over the given hash function.
// The entropy reader is consulted on every instantiate and update; nil
// selects crypto/rand.
func NewPRG(h primitive.Hash, cfg Config, entropy io.Reader) (*PRG, error) {
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
	if entropy == nil {
		entropy = rand.Reader
	}
	return &PRG{
		hash:      h,
		outputLen: outputLen,
		person:    append([]byte(nil), cfg.Personalization...),
		entropy:   entropy,
		fp:        fingerprint(chainstate.TagPRG, byte(h), outputLen, cfg.Personalization),
	}, nil
}

// Instantiate seeds the accumulator with a refresh pass over a zero
// accumulator, the secret key material, the optional seed supplement,
// and a fresh entropy read. The counter starts at zero.
func (c *PRG) Instantiate(skm, seed []byte) ([]byte, error) {
	if len(skm) < c.hash.Size() {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %v", ErrInsufficientEntropy, len(skm), c.hash.Size(), c.hash)
	}
	rnd, err := c.readEntropy()
	if err != nil {
		return nil, err
	}
	v := c.hash.Sum(make([]byte, c.hash.Size()), skm, seed, rnd)
	return chainstate.Encode(chainstate.TagPRG, c.fp, c.payload(v, 0)), nil
}

// Update advances the chain, deriving an output key of the configured
// default length.
func (c *PRG) Update(state, input []byte) ([]byte, []byte, error) {
	return c.UpdateWith(state, input, nil, c.outputLen)
}

// UpdateWith refreshes the accumulator over the input, the extra
// entropy, and a fresh entropy read, then derives n output bytes and
// the next accumulator under separate labels and increments the
// counter. A chain whose counter has reached its maximum is exhausted
// and must be re-instantiated.
func (c *PRG) UpdateWith(state, input, extra []byte, n int) ([]byte, []byte, error) {
	size := c.hash.Size()
	blob, err := decodeState(state, chainstate.TagPRG, c.fp, size+prgCounterSize)
	if err != nil {
		return nil, nil, err
	}
	counter := binary.BigEndian.Uint64(blob.Payload[size:])
	if counter == math.MaxUint64 {
		return nil, nil, fmt.Errorf("%w: step counter at maximum", ErrChainExhausted)
	}
	if n <= 0 || n > c.hash.MaxOutput() {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d for %v", ErrInvalidOutputLength, n, c.hash.MaxOutput(), c.hash)
	}
	rnd, err := c.readEntropy()
	if err != nil {
		return nil, nil, err
	}

	refreshed := c.hash.Sum(blob.Payload[:size], input, extra, rnd)

	var ctr [prgCounterSize]byte
	binary.BigEndian.PutUint64(ctr[:], counter)
	out := c.generate(refreshed, ctr[:], n)
	next := c.hash.Sum(refreshed, ctr[:], info(labelNext, c.person))

	return chainstate.Encode(chainstate.TagPRG, c.fp, c.payload(next, counter+1)), out, nil
}

// generate produces n output bytes by iterating the hash over the
// refreshed accumulator with an internal block index.
func (c *PRG) generate(refreshed, ctr []byte, n int) []byte {
	label := info(labelGen, c.person)
	out := make([]byte, 0, n)
	var block [4]byte
	for i := 0; len(out) < n; i++ {
		binary.BigEndian.PutUint32(block[:], uint32(i))
		out = append(out, c.hash.Sum(refreshed, ctr, block[:], label)...)
	}
	return out[:n]
}

func (c *PRG) payload(v []byte, counter uint64) []byte {
	p := make([]byte, 0, len(v)+prgCounterSize)
	p = append(p, v...)
	return binary.BigEndian.AppendUint64(p, counter)
}

// readEntropy reads one digest-sized block from the entropy source. The
// bytes are consumed by exactly one transition and never reused.
func (c *PRG) readEntropy() ([]byte, error) {
	rnd := make([]byte, c.hash.Size())
	if _, err := io.ReadFull(c.entropy, rnd); err != nil {
		return nil, fmt.Errorf("keychain: entropy source: %w", err)
	}
	return rnd, nil
}
