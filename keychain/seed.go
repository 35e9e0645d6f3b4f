// keychain-go: forward-secret key chain derivation
// Copyright 2026 Dark Bio AG. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keychain

import "golang.org/x/crypto/argon2"

// SeedFromPassphrase conditions a low-entropy passphrase into n bytes
// of initial key material using Argon2id, suitable as the skm argument
// of Instantiate. The salt must be random and unique per chain.
//
// RFC 9106 Section 7.4 recommends time=1 and memory=2048*1024 KiB; if
// that much memory is not available, increase time to compensate.
//
// https://datatracker.ietf.org/doc/html/rfc9106
func SeedFromPassphrase(passphrase, salt []byte, time, memory uint32, threads uint8, n int) []byte {
	return argon2.IDKey(passphrase, salt, time, memory, threads, uint32(n))
}
