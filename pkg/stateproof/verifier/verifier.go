// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package verifier implements the three proof-verification algorithms —
// Simple Patricia inclusion/absence, numerical-suffix range coverage,
// and Merkle audit-path — plus the root-hash-to-signature consistency
// check that must pass before any of them runs.
package verifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/smqik/indy-vdr/pkg/codec"
	"github.com/smqik/indy-vdr/pkg/ledger"
	"github.com/smqik/indy-vdr/pkg/trie"
)

// MultiSigEnvelope is the decoded (unauthenticated) shape of a proof's
// multi_signature field — signature and participants to be checked by
// pkg/stateproof/signature, and the signed value already decoded once
// here so the engine need not re-parse it.
type MultiSigEnvelope struct {
	Signature    string          `json:"signature"`
	Participants []string        `json:"participants"`
	Value        json.RawMessage `json:"value"`
}

// Verify runs the structural verification phase over every proof item
// produced for one reply. It returns the decoded (not yet
// signature-authenticated) assertions on success, along with a failure
// reason string matching §7's error taxonomy on failure.
func Verify(proofs []ledger.ParsedStateProof) (asserts ledger.StateProofAssertions, sig MultiSigEnvelope, ok bool, reason string) {
	if len(proofs) == 0 {
		return ledger.StateProofAssertions{}, MultiSigEnvelope{}, false, "no proof items to verify"
	}

	var sharedSig json.RawMessage
	for i, p := range proofs {
		env, a, rootOK := checkRootConsistency(p)
		if !rootOK {
			return ledger.StateProofAssertions{}, MultiSigEnvelope{}, false, "signature's claimed root does not match proof root"
		}
		if i == 0 {
			asserts = a
			sig = env
			sharedSig = p.MultiSignature
		} else if !canonicallyEqual(sharedSig, p.MultiSignature) {
			return ledger.StateProofAssertions{}, MultiSigEnvelope{}, false, "inconsistent multi-signatures across multi-proof items"
		}

		if ok, reason := verifyOne(p); !ok {
			return ledger.StateProofAssertions{}, MultiSigEnvelope{}, false, reason
		}
	}

	return asserts, sig, true, ""
}

func checkRootConsistency(p ledger.ParsedStateProof) (MultiSigEnvelope, ledger.StateProofAssertions, bool) {
	var env MultiSigEnvelope
	if err := json.Unmarshal(p.MultiSignature, &env); err != nil {
		return env, ledger.StateProofAssertions{}, false
	}
	var a ledger.StateProofAssertions
	if err := json.Unmarshal(env.Value, &a); err != nil {
		return env, a, false
	}
	stateRoot, err1 := codec.Base58Decode(a.StateRootHash)
	txnRoot, err2 := codec.Base58Decode(a.TxnRootHash)
	if err1 != nil && err2 != nil {
		return env, a, false
	}
	matches := (err1 == nil && bytes.Equal(p.RootHash, stateRoot)) || (err2 == nil && bytes.Equal(p.RootHash, txnRoot))
	return env, a, matches
}

func canonicallyEqual(a, b json.RawMessage) bool {
	var av, bv interface{}
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	ac, _ := json.Marshal(av)
	bc, _ := json.Marshal(bv)
	return bytes.Equal(ac, bc)
}

func verifyOne(p ledger.ParsedStateProof) (bool, string) {
	switch p.Verification.Kind {
	case ledger.VerificationSimple:
		return verifySimple(p)
	case ledger.VerificationNumericalSuffixRange:
		return verifyNumericalSuffixRange(p)
	case ledger.VerificationMerkleTree:
		return verifyMerkleTree(p)
	default:
		return false, fmt.Sprintf("unknown verification kind %v", p.Verification.Kind)
	}
}

func verifySimple(p ledger.ParsedStateProof) (bool, string) {
	store, err := trie.BuildStore(p.ProofNodes)
	if err != nil {
		return false, fmt.Sprintf("decoding proof nodes: %v", err)
	}
	for _, kv := range p.KVsToVerify {
		value, found, err := store.GetValue(p.RootHash, kv.Key)
		if err != nil {
			return false, fmt.Sprintf("trie walk: %v", err)
		}
		if kv.HasValue {
			if !found || !bytes.Equal(value, kv.Value) {
				return false, "trie walk yielded wrong value for key"
			}
		} else if found {
			return false, "expected absence but key is present in the trie"
		}
	}
	return true, ""
}

type rangeEntry struct {
	suffix uint64
	kv     trie.KV
}

func verifyNumericalSuffixRange(p ledger.ParsedStateProof) (bool, string) {
	store, err := trie.BuildStore(p.ProofNodes)
	if err != nil {
		return false, fmt.Sprintf("decoding proof nodes: %v", err)
	}
	vt := p.Verification
	prefix := []byte(vt.Prefix)

	found, err := store.GetAllValues(p.RootHash, prefix)
	if err != nil {
		return false, fmt.Sprintf("range enumeration: %v", err)
	}

	entries := make([]rangeEntry, 0, len(found))
	for _, kv := range found {
		if !bytes.HasPrefix(kv.Key, prefix) {
			continue
		}
		tail := kv.Key[len(prefix):]
		n, err := strconv.ParseUint(string(tail), 10, 64)
		if err != nil {
			return false, "off-schema key under range prefix"
		}
		entries = append(entries, rangeEntry{suffix: n, kv: kv})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].suffix < entries[j].suffix })

	if vt.From != nil {
		idx := sort.Search(len(entries), func(i int) bool { return entries[i].suffix >= *vt.From })
		entries = entries[idx:]
	}
	if vt.Next != nil {
		idx := sort.Search(len(entries), func(i int) bool { return entries[i].suffix >= *vt.Next })
		if idx >= len(entries) || entries[idx].suffix != *vt.Next {
			return false, "range upper bound 'next' not found in the trie"
		}
		entries = entries[:idx]
	}

	if len(entries) != len(p.KVsToVerify) {
		return false, "range result count does not match expected kvs"
	}
	for i, e := range entries {
		want := p.KVsToVerify[i]
		if !bytes.Equal(e.kv.Key, want.Key) || !want.HasValue || !bytes.Equal(e.kv.Value, want.Value) {
			return false, "range result does not match expected kvs element-wise"
		}
	}
	return true, ""
}

func verifyMerkleTree(p ledger.ParsedStateProof) (bool, string) {
	if len(p.KVsToVerify) != 1 || !p.KVsToVerify[0].HasValue {
		return false, "merkle audit requires exactly one present leaf value"
	}
	kv := p.KVsToVerify[0]

	seqNo, err := strconv.ParseUint(string(kv.Key), 10, 64)
	if err != nil || seqNo == 0 {
		return false, "merkle audit leaf key is not a valid sequence number"
	}
	idx := seqNo - 1
	length := p.Verification.Length
	if length == 0 || idx >= length {
		return false, "merkle audit sequence number out of range"
	}

	var siblingsB58 []string
	if err := json.Unmarshal(p.ProofNodes, &siblingsB58); err != nil {
		return false, fmt.Sprintf("decoding audit path: %v", err)
	}

	turns := auditTurns(length, idx)
	if len(turns) != len(siblingsB58) {
		return false, "audit path length does not match computed turn count"
	}

	leafMsgpack, err := codec.CanonicalMessagePackFromJSON(kv.Value)
	if err != nil {
		return false, fmt.Sprintf("encoding leaf value: %v", err)
	}
	acc := codec.SHA256(append([]byte{0x00}, leafMsgpack...))

	for i, right := range turns {
		sibling, err := codec.Base58Decode(siblingsB58[i])
		if err != nil {
			return false, fmt.Sprintf("decoding sibling hash: %v", err)
		}
		var combined []byte
		if right {
			combined = append(append([]byte{0x01}, acc[:]...), sibling...)
		} else {
			combined = append(append([]byte{0x01}, sibling...), acc[:]...)
		}
		acc = codec.SHA256(combined)
	}

	if !bytes.Equal(acc[:], p.RootHash) {
		return false, "audit fold result does not match root hash"
	}
	return true, ""
}
