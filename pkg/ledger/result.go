// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

// Outcome is the terminal verdict of a verification pass. None of the
// four outcomes is retried or escalated internally; the caller decides
// what to do with anything other than Verified.
type Outcome int

const (
	// Verified: proof valid, signature valid, fresh.
	Verified Outcome = iota
	// Expired: proof and signature valid, but stale.
	Expired
	// Invalid: structural or cryptographic failure.
	Invalid
	// Missing: the reply carries no proof and no custom parser matched.
	Missing
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "Verified"
	case Expired:
		return "Expired"
	case Invalid:
		return "Invalid"
	case Missing:
		return "Missing"
	default:
		return "Unknown"
	}
}

// Result is the Engine Facade's terminal output. Asserts is populated on
// Verified and Expired always, and on Invalid only when the fault was
// isolated to signature verification (the proof's key/value bindings
// were structurally sound but the attestation failed) — in every other
// Invalid case Asserts is nil, matching the error taxonomy in which most
// structural faults are caught before the signed value is even decoded.
type Result struct {
	Outcome Outcome
	Asserts *StateProofAssertions
	Reason  string
}

// VerifiedResult builds a Verified result.
func VerifiedResult(asserts *StateProofAssertions) Result {
	return Result{Outcome: Verified, Asserts: asserts}
}

// ExpiredResult builds an Expired result.
func ExpiredResult(asserts *StateProofAssertions) Result {
	return Result{Outcome: Expired, Asserts: asserts}
}

// InvalidResult builds an Invalid result with an optional assertions
// payload (non-nil only for a signature-verification-only failure).
func InvalidResult(reason string, asserts *StateProofAssertions) Result {
	return Result{Outcome: Invalid, Reason: reason, Asserts: asserts}
}

// MissingResult builds a Missing result.
func MissingResult() Result {
	return Result{Outcome: Missing}
}
