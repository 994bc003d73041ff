// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package signature

import (
	"encoding/json"
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/mr-tron/base58"

	"github.com/smqik/indy-vdr/pkg/codec"
	"github.com/smqik/indy-vdr/pkg/ledger"
	"github.com/smqik/indy-vdr/pkg/stateproof/verifier"
)

func generator() Generator {
	_, _, _, g2 := bls12381.Generators()
	return g2
}

type testValidator struct {
	alias string
	sk    fr.Element
	pk    bls12381.G2Affine
}

func newTestValidator(alias string, seed int64) testValidator {
	var sk fr.Element
	sk.SetBigInt(big.NewInt(seed))
	var skBig big.Int
	sk.BigInt(&skBig)
	_, _, _, g2 := bls12381.Generators()
	var pk bls12381.G2Affine
	pk.ScalarMultiplication(&g2, &skBig)
	return testValidator{alias: alias, sk: sk, pk: pk}
}

func sign(v testValidator, message []byte) bls12381.G1Affine {
	h := hashToG1(message)
	var skBig big.Int
	v.sk.BigInt(&skBig)
	var sig bls12381.G1Affine
	sig.ScalarMultiplication(&h, &skBig)
	return sig
}

func aggregateSigs(sigs []bls12381.G1Affine) bls12381.G1Affine {
	var agg bls12381.G1Jac
	agg.FromAffine(&sigs[0])
	for _, s := range sigs[1:] {
		var jac bls12381.G1Jac
		jac.FromAffine(&s)
		agg.AddAssign(&jac)
	}
	var result bls12381.G1Affine
	result.FromJacobian(&agg)
	return result
}

func envelopeFor(t *testing.T, participants []string, signers []testValidator, value json.RawMessage) verifier.MultiSigEnvelope {
	t.Helper()
	message, err := codec.CanonicalMessagePackFromJSON(value)
	if err != nil {
		t.Fatalf("encoding value: %v", err)
	}
	sigs := make([]bls12381.G1Affine, 0, len(signers))
	for _, v := range signers {
		sigs = append(sigs, sign(v, message))
	}
	agg := aggregateSigs(sigs)
	return verifier.MultiSigEnvelope{
		Signature:    base58.Encode(agg.Bytes()[:]),
		Participants: participants,
		Value:        value,
	}
}

func keySet(t *testing.T, validators []testValidator, f int) *ledger.ValidatorKeySet {
	t.Helper()
	keys := make(map[string]*bls12381.G2Affine, len(validators))
	for _, v := range validators {
		pk := v.pk
		keys[v.alias] = &pk
	}
	set, err := ledger.NewValidatorKeySet(keys, f)
	if err != nil {
		t.Fatalf("NewValidatorKeySet: %v", err)
	}
	return set
}

func TestVerifySucceedsWithFullQuorum(t *testing.T) {
	vs := []testValidator{
		newTestValidator("v1", 11),
		newTestValidator("v2", 22),
		newTestValidator("v3", 33),
		newTestValidator("v4", 44),
	}
	value := json.RawMessage(`{"ledgerId":1,"state_root_hash":"abc","timestamp":1000}`)
	env := envelopeFor(t, []string{"v1", "v2", "v3"}, vs[:3], value)
	set := keySet(t, vs, 1)

	ok, reason, err := Verify(env, set, generator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected verification to succeed, got reason: %s", reason)
	}
}

func TestVerifyFailsOnWrongSigner(t *testing.T) {
	vs := []testValidator{
		newTestValidator("v1", 11),
		newTestValidator("v2", 22),
		newTestValidator("v3", 33),
		newTestValidator("v4", 44),
	}
	impostor := newTestValidator("v1", 999)
	value := json.RawMessage(`{"ledgerId":1,"state_root_hash":"abc","timestamp":1000}`)

	message, err := codec.CanonicalMessagePackFromJSON(value)
	if err != nil {
		t.Fatalf("encoding value: %v", err)
	}
	badSig := sign(impostor, message)
	env := verifier.MultiSigEnvelope{
		Signature:    base58.Encode(badSig.Bytes()[:]),
		Participants: []string{"v1", "v2", "v3"},
		Value:        value,
	}
	set := keySet(t, vs, 1)

	ok, reason, err := Verify(env, set, generator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail for a signature from the wrong key")
	}
	if reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestVerifyRejectsUnknownParticipant(t *testing.T) {
	vs := []testValidator{
		newTestValidator("v1", 11),
		newTestValidator("v2", 22),
		newTestValidator("v3", 33),
		newTestValidator("v4", 44),
	}
	value := json.RawMessage(`{"ledgerId":1}`)
	env := envelopeFor(t, []string{"v1", "v2", "ghost"}, vs[:2], value)
	set := keySet(t, vs, 1)

	ok, reason, err := Verify(env, set, generator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail for an unknown participant alias")
	}
	if reason == "" {
		t.Error("expected a failure reason naming the unknown participant")
	}
}

func TestVerifyRejectsInsufficientParticipants(t *testing.T) {
	vs := []testValidator{
		newTestValidator("v1", 11),
		newTestValidator("v2", 22),
		newTestValidator("v3", 33),
		newTestValidator("v4", 44),
	}
	value := json.RawMessage(`{"ledgerId":1}`)
	env := envelopeFor(t, []string{"v1", "v2"}, vs[:2], value)
	set := keySet(t, vs, 1)

	ok, reason, err := Verify(env, set, generator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail below the N-f threshold")
	}
	if reason != ErrInsufficientParticipants.Error() {
		t.Errorf("reason = %q, want %q", reason, ErrInsufficientParticipants.Error())
	}
}
