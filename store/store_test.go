// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dark-bio/keychain-go/keychain"
	"github.com/dark-bio/keychain-go/primitive"
)

func TestMemRoundtrip(t *testing.T) {
	m := NewMem()
	state := []byte{0x01, 0x08, 1, 2, 3, 4, 5, 6, 7, 8, 0xaa, 0xbb}

	if err := m.Put("chain-1", state); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get("chain-1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, state) {
		t.Errorf("Get() = %x, want %x", got, state)
	}

	// Put replaces the previous value.
	replacement := []byte{0x02, 0x00, 0xcc}
	if err := m.Put("chain-1", replacement); err != nil {
		t.Fatal(err)
	}
	got, err = m.Get("chain-1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, replacement) {
		t.Errorf("Get() after replace = %x, want %x", got, replacement)
	}

	if err := m.Delete("chain-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("chain-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want %v", err, ErrNotFound)
	}
}

func TestMemNotFound(t *testing.T) {
	m := NewMem()
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want %v", err, ErrNotFound)
	}
	if err := m.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want %v", err, ErrNotFound)
	}
}

// A chain persisted between updates continues exactly where it left
// off.
func TestMemPersistedChain(t *testing.T) {
	chain, err := keychain.NewHKDF(primitive.SHA256, keychain.Config{})
	if err != nil {
		t.Fatal(err)
	}
	m := NewMem()

	state, err := chain.Instantiate(make([]byte, 32), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Put("session", state); err != nil {
		t.Fatal(err)
	}

	var keys [][]byte
	for i := 0; i < 3; i++ {
		stored, err := m.Get("session")
		if err != nil {
			t.Fatal(err)
		}
		next, key, err := chain.Update(stored, []byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Put("session", next); err != nil {
			t.Fatal(err)
		}
		keys = append(keys, key)
	}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if bytes.Equal(keys[i], keys[j]) {
				t.Errorf("persisted chain repeated a key at steps %d and %d", i, j)
			}
		}
	}
}
