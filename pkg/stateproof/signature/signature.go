// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package signature verifies the BLS multi-signature over a proof's
// signed value against a subset of a known validator set, subject to a
// Byzantine-tolerance participation threshold.
package signature

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/mr-tron/base58"

	"github.com/smqik/indy-vdr/pkg/codec"
	"github.com/smqik/indy-vdr/pkg/ledger"
	"github.com/smqik/indy-vdr/pkg/stateproof/verifier"
)

// ErrUnknownParticipant is returned when the envelope names a
// participant absent from the injected validator set.
var ErrUnknownParticipant = errors.New("signature: unknown participant")

// ErrInsufficientParticipants is returned when the envelope lists fewer
// than N-f participants.
var ErrInsufficientParticipants = errors.New("signature: insufficient participants for Byzantine threshold")

// Generator is the BLS G2 generator point used for the pairing check.
// Callers inject it rather than this package hardcoding one, matching
// the source's "supplied BLS generator parameter".
type Generator = bls12381.G2Affine

// Verify checks env's multi-signature against validators, requiring at
// least validators.MinParticipants() known participant keys. ok=false
// with a non-empty reason is a cryptographic or participation failure
// (§7: BLS signature fails verification / insufficient participants);
// err is reserved for malformed input that should never occur once
// extraction/verification upstream have already succeeded.
func Verify(env verifier.MultiSigEnvelope, validators *ledger.ValidatorKeySet, generator Generator) (ok bool, reason string, err error) {
	if validators == nil {
		return false, "", errors.New("signature: nil validator set")
	}
	if len(env.Participants) < validators.MinParticipants() {
		return false, ErrInsufficientParticipants.Error(), nil
	}

	keys := make([]*bls12381.G2Affine, 0, len(env.Participants))
	for _, alias := range env.Participants {
		key, found := validators.Lookup(alias)
		if !found {
			return false, fmt.Sprintf("%s: %q", ErrUnknownParticipant, alias), nil
		}
		keys = append(keys, key)
	}

	aggPK, err := aggregatePublicKeys(keys)
	if err != nil {
		return false, "", fmt.Errorf("signature: aggregating public keys: %w", err)
	}

	sigBytes, err := base58.Decode(env.Signature)
	if err != nil {
		return false, "malformed multi-signature encoding", nil
	}
	var sig bls12381.G1Affine
	if _, err := sig.SetBytes(sigBytes); err != nil {
		return false, "malformed multi-signature point", nil
	}

	message, err := codec.CanonicalMessagePackFromJSON(env.Value)
	if err != nil {
		return false, "", fmt.Errorf("signature: encoding signed value: %w", err)
	}

	if !verifyPairing(sig, aggPK, message, generator) {
		return false, "BLS multi-signature failed pairing check", nil
	}
	return true, "", nil
}

func aggregatePublicKeys(keys []*bls12381.G2Affine) (*bls12381.G2Affine, error) {
	if len(keys) == 0 {
		return nil, errors.New("no public keys to aggregate")
	}
	var agg bls12381.G2Jac
	agg.FromAffine(keys[0])
	for _, k := range keys[1:] {
		var jac bls12381.G2Jac
		jac.FromAffine(k)
		agg.AddAssign(&jac)
	}
	var result bls12381.G2Affine
	result.FromJacobian(&agg)
	return &result, nil
}

// verifyPairing checks e(sig, generator) == e(H(message), pubKey), the
// same construction as the teacher's single-key Verify, generalized to
// an already-aggregated public key over the listed participants.
func verifyPairing(sig bls12381.G1Affine, pubKey *bls12381.G2Affine, message []byte, generator Generator) bool {
	h := hashToG1(message)

	var negPK bls12381.G2Affine
	negPK.Neg(pubKey)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{sig, h},
		[]bls12381.G2Affine{generator, negPK},
	)
	if err != nil {
		return false
	}
	return ok
}
