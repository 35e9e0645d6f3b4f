// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store defines the persistence capability for chain states.
//
// The key chains never persist anything themselves; callers that want a
// chain to survive the process implement Store and put the latest state
// blob after every update. A store backed by shared storage is also the
// only place an at-most-one-advance-per-state guarantee can live, if
// the application needs one; the engine does not provide it.
//
// Mem is an in-memory implementation for prototyping and tests.
// Persisted records are wrapped in a versioned CBOR envelope so that
// on-disk implementations can evolve the record format independently of
// the chain state wire layout.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// ErrNotFound is returned by Get and Delete for an unknown chain id.
var ErrNotFound = errors.New("no stored state for chain")

// Store persists chain state blobs keyed by a caller-chosen chain id.
type Store interface {
	// Get returns the latest state blob stored for the chain.
	Get(chainID string) ([]byte, error)

	// Put stores the state blob as the chain's latest, replacing any
	// previous value.
	Put(chainID string, state []byte) error

	// Delete removes the chain's stored state, ending its lifecycle.
	Delete(chainID string) error
}

// recordVersion is the current envelope format version.
const recordVersion = 1

// record is the persisted envelope around a state blob.
type record struct {
	Version uint8  `cbor:"1,keyasint"`
	State   []byte `cbor:"2,keyasint"`
}

// encMode is the deterministic CBOR encoder for records.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: " + err.Error())
	}
}

// Mem is an in-memory Store for prototyping and tests. It is safe for
// concurrent use. It does not guard against two callers advancing from
// the same fetched state; last Put wins.
type Mem struct {
	mu      sync.RWMutex
	records map[string][]byte
}

var _ Store = (*Mem)(nil)

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{records: make(map[string][]byte)}
}

// Get returns the latest state blob stored for the chain.
func (m *Mem) Get(chainID string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.records[chainID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, chainID)
	}
	var rec record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("store: decoding record for %q: %w", chainID, err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("store: record version %d for %q, want %d", rec.Version, chainID, recordVersion)
	}
	return rec.State, nil
}

// Put stores the state blob as the chain's latest, replacing any
// previous value.
func (m *Mem) Put(chainID string, state []byte) error {
	data, err := encMode.Marshal(record{
		Version: recordVersion,
		State:   append([]byte(nil), state...),
	})
	if err != nil {
		return fmt.Errorf("store: encoding record for %q: %w", chainID, err)
	}
	m.mu.Lock()
	m.records[chainID] = data
	m.mu.Unlock()
	return nil
}

// Delete removes the chain's stored state.
func (m *Mem) Delete(chainID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[chainID]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, chainID)
	}
	delete(m.records, chainID)
	return nil
}
