// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ledger holds the shared vocabulary of the state-proof pipeline:
// transaction-type constants, the protocol-version marker duality, the
// validator key set, the normalized proof payload, and the terminal
// Result variant every phase eventually produces.
package ledger

// Transaction types that may carry a built-in state proof.
const (
	GetNym              = "105"
	GetAttr              = "104"
	GetCredDef           = "108"
	GetSchema            = "107"
	GetRevocRegDef       = "115"
	GetRevocReg          = "116"
	GetRevocRegDelta     = "117"
	GetAuthRule          = "121"
	GetTxnAuthrAgrmt     = "6"
	GetTxnAuthrAgrmtAML  = "7"
	GetTxn               = "3"
)

// requestsForStateProofs is the set of transaction types the extractor
// recognizes as built-in; anything else either goes through a custom
// parser or is reported Missing.
var requestsForStateProofs = map[string]bool{
	GetNym:              true,
	GetAttr:              true,
	GetCredDef:           true,
	GetSchema:            true,
	GetRevocRegDef:       true,
	GetRevocReg:          true,
	GetRevocRegDelta:     true,
	GetAuthRule:          true,
	GetTxnAuthrAgrmt:     true,
	GetTxnAuthrAgrmtAML:  true,
	GetTxn:               true,
}

// IsBuiltinStateProofType reports whether txnType has a built-in
// key-derivation and value-construction rule.
func IsBuiltinStateProofType(txnType string) bool {
	return requestsForStateProofs[txnType]
}

// requestsForMultiStateProofs may yield a second ParsedStateProof from the
// same reply (only GET_REVOC_REG_DELTA, and only conditionally).
var requestsForMultiStateProofs = map[string]bool{
	GetRevocRegDelta: true,
}

// IsMultiStateProofType reports whether txnType may produce a second
// proof item from the same reply.
func IsMultiStateProofType(txnType string) bool {
	return requestsForMultiStateProofs[txnType]
}

// requestsForStateProofsInThePast may legitimately query a past ledger
// state and so carry a (from, to) timestamp range instead of "now".
var requestsForStateProofsInThePast = map[string]bool{
	GetRevocReg:         true,
	GetRevocRegDelta:    true,
	GetTxnAuthrAgrmt:    true,
	GetTxnAuthrAgrmtAML: true,
	GetTxn:              true,
}

// IsRequestForStateProofInThePast reports whether txnType is allowed to
// look into ledger history rather than only the current state.
func IsRequestForStateProofInThePast(txnType string) bool {
	return requestsForStateProofsInThePast[txnType]
}

// ProtocolVersion selects the marker-byte convention used when deriving
// state keys locally. Replies from either generation must still be
// readable, but keys this engine constructs follow the negotiated
// version.
type ProtocolVersion int

const (
	// ProtocolNodeLegacy uses raw control bytes \x01..\x06 as markers.
	ProtocolNodeLegacy ProtocolVersion = iota
	// ProtocolNodeModern uses the ASCII digits '1'..'6' as markers.
	ProtocolNodeModern
)

// Marker returns the byte this protocol version uses for the given
// logical marker digit (1 through 6).
func (v ProtocolVersion) Marker(digit byte) byte {
	if v == ProtocolNodeLegacy {
		return digit - '0'
	}
	return digit
}
