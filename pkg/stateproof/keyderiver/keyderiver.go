// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package keyderiver maps an outgoing request's operation object, plus
// the negotiated protocol version, to the storage key the ledger's state
// trie uses for that request — and, in parallel, to the requested
// timestamp range for types allowed to look into ledger history.
package keyderiver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/smqik/indy-vdr/pkg/ledger"
)

// Request is the subset of an outgoing request's JSON the deriver needs:
// the transaction type and its operation object.
type Request struct {
	Type      string
	Operation map[string]interface{}
}

// DeriveKey builds the state-trie key for req under the given protocol
// version. A nil, non-nil-error-free return with ok=false means "no
// state-proof key derivable for this request" — the engine's contract is
// to skip verification (Missing) rather than treat it as a hard error.
func DeriveKey(req Request, version ledger.ProtocolVersion) (key []byte, ok bool) {
	op := req.Operation
	suffix, ok := deriveSuffix(req.Type, op, version)
	if !ok {
		return nil, false
	}
	prefix, ok := derivePrefix(req.Type, op)
	if !ok {
		return nil, false
	}
	return append(append([]byte{}, prefix...), suffix...), true
}

func derivePrefix(txnType string, op map[string]interface{}) ([]byte, bool) {
	switch txnType {
	case ledger.GetNym:
		dest, ok := stringField(op, "dest")
		if !ok {
			dest, ok = stringField(op, "origin")
		}
		if !ok {
			return nil, false
		}
		sum := sha256.Sum256([]byte(dest))
		return sum[:], true
	case ledger.GetRevocReg, ledger.GetRevocRegDelta, ledger.GetTxnAuthrAgrmt,
		ledger.GetTxnAuthrAgrmtAML, ledger.GetAuthRule, ledger.GetTxn:
		return nil, true
	case ledger.GetRevocRegDef:
		id, ok := stringField(op, "id")
		if !ok {
			return nil, false
		}
		return []byte(id), true
	default:
		dest, ok := stringField(op, "dest")
		if !ok {
			dest, ok = stringField(op, "origin")
		}
		if !ok {
			return nil, false
		}
		return []byte(dest), true
	}
}

func deriveSuffix(txnType string, op map[string]interface{}, version ledger.ProtocolVersion) ([]byte, bool) {
	switch txnType {
	case ledger.GetNym, ledger.GetRevocRegDef:
		return nil, true
	case ledger.GetAttr:
		attrName, ok := stringField(op, "raw")
		if !ok {
			attrName, ok = stringField(op, "enc")
		}
		if !ok {
			attrName, ok = stringField(op, "hash")
		}
		if !ok {
			return nil, false
		}
		sum := sha256.Sum256([]byte(attrName))
		marker := version.Marker('1')
		return []byte(fmt.Sprintf(":%c:%s", marker, hex.EncodeToString(sum[:]))), true
	case ledger.GetCredDef:
		signatureType, ok := stringField(op, "signature_type")
		if !ok {
			return nil, false
		}
		refSeqNo, ok := numberField(op, "ref")
		if !ok {
			return nil, false
		}
		marker := version.Marker('3')
		tag := ""
		if version != ledger.ProtocolNodeLegacy {
			if t, ok := stringField(op, "tag"); ok {
				tag = ":" + t
			}
		}
		return []byte(fmt.Sprintf(":%c:%s:%d%s", marker, signatureType, refSeqNo, tag)), true
	case ledger.GetSchema:
		data, ok := objectField(op, "data")
		if !ok {
			return nil, false
		}
		name, ok := stringField(data, "name")
		if !ok {
			return nil, false
		}
		version_, ok := stringField(data, "version")
		if !ok {
			return nil, false
		}
		marker := version.Marker('2')
		return []byte(fmt.Sprintf(":%c:%s:%s", marker, name, version_)), true
	case ledger.GetRevocReg:
		id, ok := stringField(op, "revocRegDefId")
		if !ok {
			return nil, false
		}
		marker := version.Marker('6')
		return []byte(fmt.Sprintf("%c:%s", marker, id)), true
	case ledger.GetRevocRegDelta:
		id, ok := stringField(op, "revocRegDefId")
		if !ok {
			return nil, false
		}
		var marker byte
		if _, hasFrom := op["from"]; hasFrom && op["from"] != nil {
			marker = version.Marker('6')
		} else {
			marker = version.Marker('5')
		}
		return []byte(fmt.Sprintf("%c:%s", marker, id)), true
	case ledger.GetAuthRule:
		authType, ok := stringField(op, "auth_type")
		if !ok {
			return nil, false
		}
		authAction, ok := stringField(op, "auth_action")
		if !ok {
			return nil, false
		}
		field, ok := stringField(op, "field")
		if !ok {
			return nil, false
		}
		defaultOld := ""
		if authAction == "ADD" {
			defaultOld = "*"
		}
		oldValue, ok := stringField(op, "old_value")
		if !ok {
			oldValue = defaultOld
		}
		newValue, _ := stringField(op, "new_value")
		return []byte(fmt.Sprintf("1:%s--%s--%s--%s--%s", authType, authAction, field, oldValue, newValue)), true
	case ledger.GetTxnAuthrAgrmt:
		version_, hasVersion := stringField(op, "version")
		digest, hasDigest := stringField(op, "digest")
		_, hasTimestamp := numberField(op, "timestamp")
		switch {
		case !hasVersion && !hasDigest:
			return []byte("2:latest"), true
		case !hasVersion && hasDigest && !hasTimestamp:
			return []byte(fmt.Sprintf("2:d:%s", digest)), true
		case hasVersion && !hasDigest && !hasTimestamp:
			return []byte(fmt.Sprintf("2:v:%s", version_)), true
		default:
			return nil, false
		}
	case ledger.GetTxnAuthrAgrmtAML:
		if version_, ok := stringField(op, "version"); ok {
			return []byte(fmt.Sprintf("3:v:%s", version_)), true
		}
		return []byte("3:latest"), true
	case ledger.GetTxn:
		seqNo, ok := numberField(op, "data")
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf("%d", seqNo)), true
	default:
		return nil, false
	}
}

// TimestampRange is the requested-timestamp pair extracted in parallel
// with key derivation: From/To are nil when the request does not name
// that bound. AnyPast is set only for GET_TXN, which may audit any past
// sequence number and so carries no explicit bound at all.
type TimestampRange struct {
	From    *uint64
	To      *uint64
	AnyPast bool
}

// DeriveTimestampRange extracts the requested-timestamp pair for req.
// Types not in the "may query the past" set always return a zero-value,
// unbounded range (both bounds nil, AnyPast false), matching "this
// request is about current state, not history".
func DeriveTimestampRange(req Request) TimestampRange {
	if !ledger.IsRequestForStateProofInThePast(req.Type) {
		return TimestampRange{}
	}
	if req.Type == ledger.GetTxn {
		return TimestampRange{AnyPast: true}
	}
	switch req.Type {
	case ledger.GetRevocReg, ledger.GetTxnAuthrAgrmt, ledger.GetTxnAuthrAgrmtAML:
		if ts, ok := numberField(req.Operation, "timestamp"); ok {
			v := uint64(ts)
			return TimestampRange{To: &v}
		}
		return TimestampRange{}
	case ledger.GetRevocRegDelta:
		var tr TimestampRange
		if from, ok := numberField(req.Operation, "from"); ok {
			v := uint64(from)
			tr.From = &v
		}
		if to, ok := numberField(req.Operation, "to"); ok {
			v := uint64(to)
			tr.To = &v
		}
		return tr
	default:
		return TimestampRange{}
	}
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func objectField(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
