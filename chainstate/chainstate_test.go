// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chainstate

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundtrip(t *testing.T) {
	tests := []struct {
		tag         byte
		fingerprint []byte
		payload     []byte
	}{
		{TagHKDF, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte("payload bytes")},
		{TagPRG, []byte{0xff}, nil},
		{TagXDRBG, nil, bytes.Repeat([]byte{0xaa}, 64)},
	}
	for _, tc := range tests {
		data := Encode(tc.tag, tc.fingerprint, tc.payload)
		blob, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(Encode(0x%02x)) = %v", tc.tag, err)
		}
		if blob.Tag != tc.tag {
			t.Errorf("Tag = 0x%02x, want 0x%02x", blob.Tag, tc.tag)
		}
		if !bytes.Equal(blob.Fingerprint, tc.fingerprint) {
			t.Errorf("Fingerprint = %x, want %x", blob.Fingerprint, tc.fingerprint)
		}
		if !bytes.Equal(blob.Payload, tc.payload) {
			t.Errorf("Payload = %x, want %x", blob.Payload, tc.payload)
		}
		if err := blob.Verify(tc.tag, tc.fingerprint); err != nil {
			t.Errorf("Verify() = %v", err)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrTruncated},
		{"header only", []byte{TagHKDF}, ErrTruncated},
		{"zero tag", []byte{0x00, 0x00}, ErrUnknownTag},
		{"high tag", []byte{0x7f, 0x00}, ErrUnknownTag},
		{"short fingerprint", []byte{TagPRG, 0x04, 0x01, 0x02}, ErrTruncated},
	}
	for _, tc := range tests {
		if _, err := Decode(tc.data); !errors.Is(err, tc.err) {
			t.Errorf("%s: Decode() = %v, want %v", tc.name, err, tc.err)
		}
	}
}

func TestVerifyMismatch(t *testing.T) {
	fingerprint := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	blob, err := Decode(Encode(TagHKDF, fingerprint, []byte("payload")))
	if err != nil {
		t.Fatal(err)
	}
	if err := blob.Verify(TagPRG, fingerprint); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(wrong tag) = %v, want %v", err, ErrMismatch)
	}
	if err := blob.Verify(TagHKDF, fingerprint[:4]); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(short fingerprint) = %v, want %v", err, ErrMismatch)
	}
	// Flipping any single fingerprint byte must be rejected.
	for i := range fingerprint {
		tampered := append([]byte(nil), fingerprint...)
		tampered[i] ^= 0x01
		if err := blob.Verify(TagHKDF, tampered); !errors.Is(err, ErrMismatch) {
			t.Errorf("Verify(fingerprint tampered at %d) = %v, want %v", i, err, ErrMismatch)
		}
	}
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{TagHKDF, 0x00})
	f.Add(Encode(TagPRG, []byte{1, 2, 3, 4}, []byte("state")))
	f.Add(Encode(TagXDRBG, nil, nil))

	f.Fuzz(func(t *testing.T, data []byte) {
		blob, err := Decode(data)
		if err != nil {
			return
		}
		// Whatever decodes must re-encode to the same bytes.
		if again := Encode(blob.Tag, blob.Fingerprint, blob.Payload); !bytes.Equal(again, data) {
			t.Errorf("Encode(Decode(%x)) = %x", data, again)
		}
	})
}
