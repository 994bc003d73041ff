// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/smqik/indy-vdr/pkg/codec"
	"github.com/smqik/indy-vdr/pkg/ledger"
)

// buildExpectedValue constructs the JSON bytes the Patricia trie leaf
// must contain for (txnType, key) to be considered proven present, per
// the per-type field tables. hasValue=false with a nil error means the
// reply legitimately claims the key is absent; err is only non-nil for
// a malformed shape the caller should fold into Missing.
func buildExpectedValue(txnType string, key []byte, seqNo, txnTime json.RawMessage, dataStr *string, parsedData json.RawMessage) ([]byte, bool, error) {
	if dataStr == nil {
		return nil, false, nil
	}

	switch txnType {
	case ledger.GetNym:
		var fields struct {
			Identifier json.RawMessage `json:"identifier"`
			Role       json.RawMessage `json:"role"`
			Verkey     json.RawMessage `json:"verkey"`
		}
		if err := json.Unmarshal(parsedData, &fields); err != nil {
			return nil, false, fmt.Errorf("decoding GET_NYM data: %w", err)
		}
		b := newObjBuilder()
		b.put("seqNo", orNull(seqNo))
		b.put("txnTime", orNull(txnTime))
		b.put("identifier", orNull(fields.Identifier))
		b.put("role", orNull(fields.Role))
		b.put("verkey", orNull(fields.Verkey))
		return b.bytes(), true, nil

	case ledger.GetAttr:
		b := newObjBuilder()
		b.put("lsn", orNull(seqNo))
		b.put("lut", orNull(txnTime))
		b.put("val", jsonString(codec.SHA256Hex([]byte(*dataStr))))
		return b.bytes(), true, nil

	case ledger.GetCredDef, ledger.GetRevocRegDef, ledger.GetRevocReg, ledger.GetTxnAuthrAgrmtAML:
		b := newObjBuilder()
		b.put("lsn", orNull(seqNo))
		b.put("lut", orNull(txnTime))
		b.put("val", parsedData)
		return b.bytes(), true, nil

	case ledger.GetSchema:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(parsedData, &obj); err != nil {
			return nil, false, fmt.Errorf("decoding GET_SCHEMA data: %w", err)
		}
		delete(obj, "name")
		delete(obj, "version")
		if len(obj) == 0 {
			// Upstream oddity: a schema whose data object carries only
			// name/version leaves nothing to prove; treat as absent
			// rather than fail the whole reply.
			return nil, false, nil
		}
		b := newObjBuilder()
		b.put("lsn", orNull(seqNo))
		b.put("lut", orNull(txnTime))
		b.put("val", marshalSorted(obj))
		return b.bytes(), true, nil

	case ledger.GetRevocRegDelta:
		var outer struct {
			Value struct {
				AccumTo json.RawMessage `json:"accum_to"`
			} `json:"value"`
		}
		if err := json.Unmarshal(parsedData, &outer); err != nil {
			return nil, false, fmt.Errorf("decoding GET_REVOC_REG_DELTA data: %w", err)
		}
		if isJSONNull(outer.Value.AccumTo) {
			return nil, false, nil
		}
		b := newObjBuilder()
		b.put("lsn", orNull(seqNo))
		b.put("lut", orNull(txnTime))
		b.put("val", outer.Value.AccumTo)
		return b.bytes(), true, nil

	case ledger.GetAuthRule:
		var arr []json.RawMessage
		if err := json.Unmarshal(parsedData, &arr); err != nil {
			return nil, false, fmt.Errorf("decoding GET_AUTH_RULE data: %w", err)
		}
		if len(arr) == 0 {
			return nil, false, nil
		}
		var first struct {
			Constraint json.RawMessage `json:"constraint"`
		}
		if err := json.Unmarshal(arr[0], &first); err != nil {
			return nil, false, fmt.Errorf("decoding GET_AUTH_RULE constraint: %w", err)
		}
		if isJSONNull(first.Constraint) {
			return nil, false, nil
		}
		return first.Constraint, true, nil

	case ledger.GetTxnAuthrAgrmt:
		if bytes.HasPrefix(key, []byte("2:d:")) {
			b := newObjBuilder()
			b.put("lsn", orNull(seqNo))
			b.put("lut", orNull(txnTime))
			b.put("val", parsedData)
			return b.bytes(), true, nil
		}
		var fields struct {
			Text    string `json:"text"`
			Version string `json:"version"`
		}
		if err := json.Unmarshal(parsedData, &fields); err != nil {
			return nil, false, fmt.Errorf("decoding GET_TXN_AUTHR_AGRMT data: %w", err)
		}
		digest := codec.SHA256Hex([]byte(fields.Version + fields.Text))
		return jsonString(digest), true, nil

	case ledger.GetTxn:
		return buildTxnValue(parsedData)

	default:
		return nil, false, fmt.Errorf("no expected-value rule for transaction type %q", txnType)
	}
}

// buildTxnValue implements GET_TXN's value reconstruction: an object
// with whichever of txn/txnMetadata/ver/reqSignature the reply actually
// carries, with ATTRIB (type "100") txn.data.raw/enc redacted to their
// hash the same way the ledger redacts them before signing.
func buildTxnValue(parsedData json.RawMessage) ([]byte, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(parsedData, &fields); err != nil {
		return nil, false, fmt.Errorf("decoding GET_TXN data: %w", err)
	}

	present := func(k string) bool {
		v, ok := fields[k]
		return ok && !isJSONNull(v)
	}
	if !present("txn") && !present("txnMetadata") && !present("ver") && !present("reqSignature") {
		return nil, false, nil
	}

	if present("txn") {
		redacted, err := redactAttribTxn(fields["txn"])
		if err != nil {
			return nil, false, err
		}
		fields["txn"] = redacted
	}

	b := newObjBuilder()
	for _, k := range []string{"txn", "txnMetadata", "ver", "reqSignature"} {
		if present(k) {
			b.put(k, fields[k])
		}
	}
	return b.bytes(), true, nil
}

func redactAttribTxn(txnRaw json.RawMessage) (json.RawMessage, error) {
	var txn map[string]json.RawMessage
	if err := json.Unmarshal(txnRaw, &txn); err != nil {
		return nil, fmt.Errorf("decoding txn: %w", err)
	}
	var typ string
	if t, ok := txn["type"]; ok {
		_ = json.Unmarshal(t, &typ)
	}
	if typ != "100" {
		return txnRaw, nil
	}
	dataRaw, ok := txn["data"]
	if !ok {
		return txnRaw, nil
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(dataRaw, &data); err != nil {
		return nil, fmt.Errorf("decoding ATTRIB txn data: %w", err)
	}
	if rawField, ok := data["raw"]; ok {
		var s string
		_ = json.Unmarshal(rawField, &s)
		if s == "" {
			data["raw"] = jsonString("")
		} else {
			data["raw"] = jsonString(codec.SHA256Hex([]byte(s)))
		}
	} else if encField, ok := data["enc"]; ok {
		var s string
		_ = json.Unmarshal(encField, &s)
		if s == "" {
			data["enc"] = jsonString("")
		} else {
			data["enc"] = jsonString(codec.SHA256Hex([]byte(s)))
		}
	}
	txn["data"] = marshalSorted(data)
	return marshalSorted(txn), nil
}
