// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package extractor locates the proof payload(s) inside a ledger reply
// and normalizes them into ledger.ParsedStateProof, either via the
// built-in per-transaction-type rules or a caller-supplied parser.
package extractor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/smqik/indy-vdr/pkg/codec"
	"github.com/smqik/indy-vdr/pkg/ledger"
)

// Parser is the pluggable capability "parse a reply for proof" a caller
// may supply for transaction types this package does not know about.
// Returning handled=false means "I do not recognize this type"; handled
// =true with an empty slice means "this type carries no proof". The
// implementation must be side-effect-free.
type Parser interface {
	Parse(txnType string, rawReplyText []byte) (proofs []ledger.ParsedStateProof, handled bool)
}

// ParserFunc adapts a plain function to the Parser interface, mirroring
// the source's boxed-closure convenience for callers who do not want to
// define a named type.
type ParserFunc func(txnType string, rawReplyText []byte) ([]ledger.ParsedStateProof, bool)

// Parse implements Parser.
func (f ParserFunc) Parse(txnType string, rawReplyText []byte) ([]ledger.ParsedStateProof, bool) {
	return f(txnType, rawReplyText)
}

type replyStateProof struct {
	ProofNodes     string          `json:"proof_nodes"`
	RootHash       string          `json:"root_hash"`
	MultiSignature json.RawMessage `json:"multi_signature"`
}

type replyEnvelope struct {
	Type       string           `json:"type"`
	SeqNo      json.RawMessage  `json:"seqNo"`
	TxnTime    json.RawMessage  `json:"txnTime"`
	Data       json.RawMessage  `json:"data"`
	StateProof *replyStateProof `json:"state_proof"`
}

// Extract locates the proof payload(s) for a reply. ok=false means
// Missing: no proof and no custom parser matched.
func Extract(rawReplyText []byte, txnType string, key []byte, custom Parser) ([]ledger.ParsedStateProof, bool) {
	if ledger.IsBuiltinStateProofType(txnType) {
		proofs, ok := extractBuiltin(rawReplyText, txnType, key)
		if ok {
			return proofs, true
		}
		return nil, false
	}
	if custom != nil {
		return custom.Parse(txnType, rawReplyText)
	}
	return nil, false
}

func extractBuiltin(rawReplyText []byte, txnType string, key []byte) ([]ledger.ParsedStateProof, bool) {
	var env replyEnvelope
	if err := json.Unmarshal(rawReplyText, &env); err != nil {
		return nil, false
	}

	dataStr, parsedData, ok := normalizeData(env.Data)
	if !ok {
		return nil, false
	}

	proof, ok := buildParsedStateProof(env, txnType, key, dataStr, parsedData)
	if !ok {
		return nil, false
	}
	proofs := []ledger.ParsedStateProof{*proof}

	if ledger.IsMultiStateProofType(txnType) && needsAccumFromProof(key) {
		second, present, ok := buildAccumFromProof(parsedData, key)
		if !ok {
			return nil, false
		}
		if present {
			proofs = append(proofs, *second)
		}
	}

	return proofs, true
}

// normalizeData implements §4.4's "data shape polymorphism": data may
// arrive as a JSON string (itself parseable JSON), an object, or an
// array. dataStr preserves the exact string form used for GET_ATTR
// hashing; parsedData is always the parsed value, used for field
// extraction (compacted when data arrives as an object or array, so the
// expected values built from it are compact JSON). A null data field is not an error: it yields (nil, null,
// true), signalling "prove absence" to the value builder.
func normalizeData(data json.RawMessage) (dataStr *string, parsedData json.RawMessage, ok bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil, true
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, nil, false
		}
		// The inner string is the raw data used for GET_ATTR hashing; it
		// is only additionally valid JSON for types whose expected value
		// is built from parsed fields (e.g. double-encoded data blobs).
		// If it doesn't parse as JSON, parsedData stays usable only by
		// the raw-string path.
		parsed := json.RawMessage(s)
		if !json.Valid([]byte(s)) {
			parsed = nil
		}
		return &s, parsed, true
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, nil, false
		}
		s := buf.String()
		return &s, json.RawMessage(s), true
	}
	return nil, nil, false
}

func buildParsedStateProof(env replyEnvelope, txnType string, key []byte, dataStr *string, parsedData json.RawMessage) (*ledger.ParsedStateProof, bool) {
	var (
		proofNodesB64  string
		rootHashB58    string
		verification   ledger.VerificationType
		multiSignature json.RawMessage
	)

	if txnType != ledger.GetTxn {
		if env.StateProof == nil || env.StateProof.ProofNodes == "" || env.StateProof.RootHash == "" {
			return nil, false
		}
		proofNodesB64 = env.StateProof.ProofNodes
		rootHashB58 = env.StateProof.RootHash
		verification = ledger.VerificationType{Kind: ledger.VerificationSimple}
		multiSignature = env.StateProof.MultiSignature
	} else {
		var txn struct {
			AuditPath  json.RawMessage `json:"auditPath"`
			RootHash   string          `json:"rootHash"`
			LedgerSize *uint64         `json:"ledgerSize"`
			MultiSig   json.RawMessage `json:"multi_signature"`
		}
		if err := json.Unmarshal(parsedData, &txn); err != nil {
			return nil, false
		}
		if len(txn.AuditPath) == 0 || txn.RootHash == "" || txn.LedgerSize == nil {
			return nil, false
		}
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, txn.AuditPath); err != nil {
			return nil, false
		}
		proofNodesB64 = base64.StdEncoding.EncodeToString(compacted.Bytes())
		rootHashB58 = txn.RootHash
		verification = ledger.VerificationType{Kind: ledger.VerificationMerkleTree, Length: *txn.LedgerSize}
		if env.StateProof != nil && len(env.StateProof.MultiSignature) > 0 {
			multiSignature = env.StateProof.MultiSignature
		} else {
			multiSignature = txn.MultiSig
		}
	}

	value, hasValue, err := buildExpectedValue(txnType, key, env.SeqNo, env.TxnTime, dataStr, parsedData)
	if err != nil {
		return nil, false
	}

	rootHash, err := codec.Base58Decode(rootHashB58)
	if err != nil {
		return nil, false
	}
	proofNodes, err := codec.Base64Decode(proofNodesB64)
	if err != nil {
		return nil, false
	}

	return &ledger.ParsedStateProof{
		RootHash:       rootHash,
		ProofNodes:     proofNodes,
		MultiSignature: multiSignature,
		Verification:   verification,
		KVsToVerify: []ledger.KV{
			{Key: key, Value: value, HasValue: hasValue},
		},
	}, true
}

// needsAccumFromProof reports whether the derived key carries the "6:"
// marker (in either marker-byte generation) that only appears when the
// request named a `from` bound, per the keyderiver's GET_REVOC_REG_DELTA
// rule.
func needsAccumFromProof(key []byte) bool {
	return bytes.HasPrefix(key, []byte("6:")) || bytes.HasPrefix(key, []byte{0x06, ':'})
}

func buildAccumFromProof(parsedData json.RawMessage, key []byte) (proof *ledger.ParsedStateProof, present bool, ok bool) {
	var outer struct {
		StateProofFrom *replyStateProof `json:"stateProofFrom"`
		Value          struct {
			AccumFrom json.RawMessage `json:"accum_from"`
		} `json:"value"`
	}
	if err := json.Unmarshal(parsedData, &outer); err != nil {
		return nil, false, false
	}
	if isJSONNull(outer.Value.AccumFrom) {
		return nil, false, true
	}
	if outer.StateProofFrom == nil || outer.StateProofFrom.ProofNodes == "" || outer.StateProofFrom.RootHash == "" {
		return nil, false, false
	}

	var accumFrom struct {
		SeqNo   json.RawMessage `json:"seqNo"`
		TxnTime json.RawMessage `json:"txnTime"`
	}
	if err := json.Unmarshal(outer.Value.AccumFrom, &accumFrom); err != nil {
		return nil, false, false
	}

	b := newObjBuilder()
	b.put("lsn", orNull(accumFrom.SeqNo))
	b.put("lut", orNull(accumFrom.TxnTime))
	b.put("val", orNull(outer.Value.AccumFrom))
	value := b.bytes()

	rootHash, err := codec.Base58Decode(outer.StateProofFrom.RootHash)
	if err != nil {
		return nil, false, false
	}
	proofNodes, err := codec.Base64Decode(outer.StateProofFrom.ProofNodes)
	if err != nil {
		return nil, false, false
	}

	return &ledger.ParsedStateProof{
		RootHash:       rootHash,
		ProofNodes:     proofNodes,
		MultiSignature: outer.StateProofFrom.MultiSignature,
		Verification:   ledger.VerificationType{Kind: ledger.VerificationSimple},
		KVsToVerify: []ledger.KV{
			{Key: key, Value: value, HasValue: true},
		},
	}, true, true
}

// objBuilder emits a compact JSON object with a caller-chosen,
// guaranteed field order — needed because the value the engine builds
// must byte-match the value the ledger signed, and Go's encoding/json
// reorders map keys alphabetically.
type objBuilder struct {
	buf   bytes.Buffer
	count int
}

func newObjBuilder() *objBuilder {
	b := &objBuilder{}
	b.buf.WriteByte('{')
	return b
}

func (b *objBuilder) put(key string, rawValue []byte) {
	if b.count > 0 {
		b.buf.WriteByte(',')
	}
	b.count++
	keyJSON, _ := json.Marshal(key)
	b.buf.Write(keyJSON)
	b.buf.WriteByte(':')
	b.buf.Write(rawValue)
}

func (b *objBuilder) bytes() []byte {
	out := make([]byte, b.buf.Len()+1)
	copy(out, b.buf.Bytes())
	out[len(out)-1] = '}'
	return out
}

func isJSONNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || string(t) == "null"
}

func orNull(raw json.RawMessage) []byte {
	if isJSONNull(raw) {
		return []byte("null")
	}
	return raw
}

func jsonString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func marshalSorted(m map[string]json.RawMessage) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(m[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
