// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package codec holds the small, leaf-level encodings the state-proof
// engine depends on: base58, base64, hex, a minimal RLP item reader, a
// canonical MessagePack map encoder, and the two hash functions (SHA-256,
// Keccak-256) used to identify trie nodes and hash ledger payloads.
package codec

import "errors"

// ErrInvalidRLP is returned when a byte string cannot be parsed as a
// well-formed RLP item. Callers in this module treat it as "no proof",
// never as a crash.
var ErrInvalidRLP = errors.New("codec: invalid RLP encoding")

// ErrTrailingBytes is returned when decoding a top-level RLP list leaves
// unconsumed bytes after the list's own length.
var ErrTrailingBytes = errors.New("codec: trailing bytes after RLP item")
