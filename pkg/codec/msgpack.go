package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// CanonicalMessagePack encodes a JSON-decoded value as MessagePack using
// "map named" encoding with map keys written in alphabetical order at
// every nesting level. This is the canonical form validators sign: the
// value object's JSON key order is not significant, but MessagePack
// encodes maps positionally, so signer and verifier must agree on an
// order or signatures will mismatch. Alphabetical-by-key is the order
// the source ledger's validators use.
//
// v must be built from encoding/json with UseNumber (so integers are not
// silently widened to float64, which would change their encoding).
func CanonicalMessagePack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeCanonical(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalMessagePackFromJSON parses raw JSON text with UseNumber and
// encodes the result canonically. This is the entry point used by the
// signature verifier, which receives the multi-signature's "value" field
// as a json.RawMessage.
func CanonicalMessagePackFromJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode json for canonical msgpack: %w", err)
	}
	return CanonicalMessagePack(v)
}

func encodeCanonical(enc *msgpack.Encoder, v interface{}) error {
	switch val := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(val)
	case string:
		return enc.EncodeString(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return enc.EncodeInt(i)
		}
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("codec: not a number: %q", val)
		}
		return enc.EncodeFloat64(f)
	case []interface{}:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := encodeCanonical(enc, item); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := enc.EncodeMapLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encodeCanonical(enc, val[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("codec: unsupported value type %T for canonical msgpack", v)
	}
}
