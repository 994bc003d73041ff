// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import "encoding/json"

// VerificationKind discriminates the three proof-verification
// algorithms a ParsedStateProof may require.
type VerificationKind int

const (
	// VerificationSimple is plain Patricia inclusion/absence.
	VerificationSimple VerificationKind = iota
	// VerificationNumericalSuffixRange is range coverage over
	// numerically-suffixed keys under a shared prefix.
	VerificationNumericalSuffixRange
	// VerificationMerkleTree is an RFC6962-style audit path proof.
	VerificationMerkleTree
)

// VerificationType carries the verification algorithm plus whatever
// parameters that algorithm needs.
type VerificationType struct {
	Kind VerificationKind

	// NumericalSuffixRange fields.
	Prefix string
	From   *uint64
	Next   *uint64

	// MerkleTree field: length of the ledger (total leaf count).
	Length uint64
}

// KV is a single base64-decoded key with its optional expected value.
// HasValue=false is a claim that the key is absent from the proved state.
type KV struct {
	Key   []byte
	Value []byte
	// HasValue distinguishes "value is empty bytes" from "value is
	// none" — both are representable JSON values upstream.
	HasValue bool
}

// ParsedStateProof is the normalized proof payload passed from
// extraction to verification: a root hash, the raw proof material, the
// multi-signature that attests the root, and the keys/values it must
// account for.
type ParsedStateProof struct {
	RootHash       []byte // decoded from base58
	ProofNodes     []byte // decoded from base64; interpretation fixed by Verification.Kind
	MultiSignature json.RawMessage
	KVsToVerify    []KV
	Verification   VerificationType
}

// StateProofAssertions is the decoded multi_signature.value recovered
// once the signature has verified: the signed ledger-state header.
type StateProofAssertions struct {
	LedgerID       int             `json:"ledgerId"`
	PoolStateRootHash string       `json:"pool_state_root_hash"`
	StateRootHash  string          `json:"state_root_hash"`
	TxnRootHash    string          `json:"txn_root_hash"`
	Timestamp      int64           `json:"timestamp"`
}
