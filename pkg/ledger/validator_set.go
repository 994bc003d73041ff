// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// ValidatorKeySet is the caller-supplied mapping of participant alias to
// BLS public key, along with the Byzantine tolerance it was formed
// under. The engine never discovers or mutates this set; it is injected
// once per call and treated as read-only.
type ValidatorKeySet struct {
	keys map[string]*bls12381.G2Affine
	f    int
}

// NewValidatorKeySet builds a key set from alias -> public key and a
// Byzantine tolerance f. N (len(keys)) must satisfy N >= 3f+1; this is a
// caller-configuration invariant, checked here so a misconfigured set
// fails fast rather than silently under-requiring participants.
func NewValidatorKeySet(keys map[string]*bls12381.G2Affine, f int) (*ValidatorKeySet, error) {
	if f < 0 {
		return nil, fmt.Errorf("ledger: byzantine tolerance f must be non-negative, got %d", f)
	}
	n := len(keys)
	if n < 3*f+1 {
		return nil, fmt.Errorf("ledger: validator set size %d does not satisfy N >= 3f+1 for f=%d", n, f)
	}
	cp := make(map[string]*bls12381.G2Affine, n)
	for alias, key := range keys {
		cp[alias] = key
	}
	return &ValidatorKeySet{keys: cp, f: f}, nil
}

// N is the total number of validators in the set.
func (v *ValidatorKeySet) N() int {
	return len(v.keys)
}

// F is the Byzantine tolerance the set was configured with.
func (v *ValidatorKeySet) F() int {
	return v.f
}

// MinParticipants is the minimum number of distinct participant
// signatures (N - f) a multi-signature must carry to be acceptable.
func (v *ValidatorKeySet) MinParticipants() int {
	return v.N() - v.f
}

// Lookup returns the public key registered for alias, or false if the
// alias is not a known participant.
func (v *ValidatorKeySet) Lookup(alias string) (*bls12381.G2Affine, bool) {
	key, ok := v.keys[alias]
	return key, ok
}
