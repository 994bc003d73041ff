// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package extractor

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/smqik/indy-vdr/pkg/ledger"
)

func reply(txnType, data, seqNo, txnTime, proofNodesB64, rootHashB58 string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": %q,
		"seqNo": %s,
		"txnTime": %s,
		"data": %s,
		"state_proof": {
			"proof_nodes": %q,
			"root_hash": %q,
			"multi_signature": {"value": {}, "signature": "sig", "participants": []}
		}
	}`, txnType, seqNo, txnTime, data, proofNodesB64, rootHashB58))
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
func b58(b []byte) string { return base58.Encode(b) }

func TestExtractGetNym(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0xaa}, 32)
	data := `{"identifier":"Th7MpTaRZVRYnPiabds81Y","role":"0","verkey":"~abc"}`
	r := reply(ledger.GetNym, data, "42", "1000", b64("dummy-proof"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetNym, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if len(proofs) != 1 {
		t.Fatalf("expected 1 proof, got %d", len(proofs))
	}
	kv := proofs[0].KVsToVerify[0]
	if !kv.HasValue {
		t.Fatal("expected a value")
	}
	want := `{"seqNo":42,"txnTime":1000,"identifier":"Th7MpTaRZVRYnPiabds81Y","role":"0","verkey":"~abc"}`
	if string(kv.Value) != want {
		t.Errorf("got %s, want %s", kv.Value, want)
	}
}

func TestExtractGetAttrHashesRawDataString(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0xbb}, 32)
	r := reply(ledger.GetAttr, `"endpoint-payload"`, "7", "500", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetAttr, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	sum := sha256.Sum256([]byte("endpoint-payload"))
	want := fmt.Sprintf(`{"lsn":7,"lut":500,"val":"%s"}`, hex.EncodeToString(sum[:]))
	if got := string(proofs[0].KVsToVerify[0].Value); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestExtractGetSchemaStripsNameVersion(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0xcc}, 32)
	data := `{"name":"schema-name","version":"1.0","attr_names":["a","b"]}`
	r := reply(ledger.GetSchema, data, "1", "2", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetSchema, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	want := `{"lsn":1,"lut":2,"val":{"attr_names":["a","b"]}}`
	if got := string(proofs[0].KVsToVerify[0].Value); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestExtractGetSchemaEmptyResidueIsAbsent(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0xdd}, 32)
	data := `{"name":"schema-name","version":"1.0"}`
	r := reply(ledger.GetSchema, data, "1", "2", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetSchema, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if proofs[0].KVsToVerify[0].HasValue {
		t.Error("expected HasValue=false for an empty schema residue")
	}
}

func TestExtractGetAuthRuleUsesFirstConstraint(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0xee}, 32)
	data := `[{"constraint":{"constraint_id":"ROLE","role":"0"}}]`
	r := reply(ledger.GetAuthRule, data, "1", "2", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetAuthRule, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	want := `{"constraint_id":"ROLE","role":"0"}`
	if got := string(proofs[0].KVsToVerify[0].Value); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestExtractGetTxnRedactsAttribRaw(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0x11}, 32)
	auditPath := `["h1","h2"]`
	data := fmt.Sprintf(`{
		"auditPath": %s,
		"rootHash": %q,
		"ledgerSize": 9,
		"txn": {"type":"100","data":{"raw":"secret-endpoint"}},
		"ver": "1"
	}`, auditPath, b58(rootHash))
	r := reply(ledger.GetTxn, data, "1", "2", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetTxn, []byte("9"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if proofs[0].Verification.Kind != ledger.VerificationMerkleTree {
		t.Errorf("expected Merkle verification kind, got %v", proofs[0].Verification.Kind)
	}
	if proofs[0].Verification.Length != 9 {
		t.Errorf("expected ledger length 9, got %d", proofs[0].Verification.Length)
	}
	sum := sha256.Sum256([]byte("secret-endpoint"))
	wantFragment := fmt.Sprintf(`"raw":"%s"`, hex.EncodeToString(sum[:]))
	if !bytes.Contains(proofs[0].KVsToVerify[0].Value, []byte(wantFragment)) {
		t.Errorf("expected redacted raw fragment %s in %s", wantFragment, proofs[0].KVsToVerify[0].Value)
	}
}

func TestExtractNullDataIsAbsence(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0x22}, 32)
	r := reply(ledger.GetNym, "null", "1", "2", b64("p"), b58(rootHash))

	proofs, ok := Extract(r, ledger.GetNym, []byte("key"), nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if proofs[0].KVsToVerify[0].HasValue {
		t.Error("expected HasValue=false for null data")
	}
}

func TestExtractUnknownTypeFallsBackToCustomParser(t *testing.T) {
	called := false
	custom := ParserFunc(func(txnType string, raw []byte) ([]ledger.ParsedStateProof, bool) {
		called = true
		return []ledger.ParsedStateProof{}, true
	})
	proofs, ok := Extract([]byte(`{}`), "9999", []byte("key"), custom)
	if !ok || !called {
		t.Fatal("expected the custom parser to be consulted and handle the type")
	}
	if len(proofs) != 0 {
		t.Errorf("expected an empty proof slice, got %d", len(proofs))
	}
}

func TestExtractUnknownTypeNoParserIsMissing(t *testing.T) {
	_, ok := Extract([]byte(`{}`), "9999", []byte("key"), nil)
	if ok {
		t.Fatal("expected Missing (ok=false) with no custom parser")
	}
}

func TestExtractGetRevocRegDeltaWithFromProducesTwoProofsSharingTheKey(t *testing.T) {
	rootHash := bytes.Repeat([]byte{0x33}, 32)
	fromRootHash := bytes.Repeat([]byte{0x44}, 32)
	data := fmt.Sprintf(`{
		"value": {
			"accum_to": {"accum": "to-value"},
			"accum_from": {"seqNo": 3, "txnTime": 100, "accum": "from-value"}
		},
		"stateProofFrom": {
			"proof_nodes": %q,
			"root_hash": %q,
			"multi_signature": {"value": {}, "signature": "sig2", "participants": []}
		}
	}`, b64("from-proof"), b58(fromRootHash))
	r := reply(ledger.GetRevocRegDelta, data, "5", "1000", b64("to-proof"), b58(rootHash))

	key := []byte("6:RevocRegDefId1")
	proofs, ok := Extract(r, ledger.GetRevocRegDelta, key, nil)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if len(proofs) != 2 {
		t.Fatalf("expected 2 proofs (accum_to + accum_from), got %d", len(proofs))
	}

	to := proofs[0]
	if !bytes.Equal(to.KVsToVerify[0].Key, key) {
		t.Errorf("primary proof key = %q, want %q", to.KVsToVerify[0].Key, key)
	}

	from := proofs[1]
	if !bytes.Equal(from.KVsToVerify[0].Key, key) {
		t.Errorf("accum_from proof key = %q, want %q (same derived key as the primary proof, per mod.rs's _parse_reply_for_multi_sp)", from.KVsToVerify[0].Key, key)
	}
	wantFromValue := `{"lsn":3,"lut":100,"val":{"seqNo":3,"txnTime":100,"accum":"from-value"}}`
	if got := string(from.KVsToVerify[0].Value); got != wantFromValue {
		t.Errorf("accum_from value = %s, want %s", got, wantFromValue)
	}
}

func TestExtractMissingStateProofIsMissing(t *testing.T) {
	r := []byte(`{"type":"105","seqNo":1,"txnTime":2,"data":{"identifier":"x"}}`)
	_, ok := Extract(r, ledger.GetNym, []byte("key"), nil)
	if ok {
		t.Fatal("expected Missing when state_proof is absent")
	}
}
