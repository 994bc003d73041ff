// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package codec

import (
	"bytes"
	"testing"
)

func TestBase58RoundTrip(t *testing.T) {
	data := []byte("state-proof-root-hash")
	encoded := Base58Encode(data)
	decoded, err := Base58Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("round trip mismatch: got %x, want %x", decoded, data)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xff}
	encoded := Base64Encode(data)
	decoded, err := Base64Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("round trip mismatch: got %x, want %x", decoded, data)
	}
}

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("sha256 hex mismatch: got %s, want %s", got, want)
	}
}

func TestDecodeRLPListSimple(t *testing.T) {
	// RLP list containing two byte-strings: "cat" and "dog"
	// c8 83 636174 83 646f67
	data := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	items, err := DecodeRLPList(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if string(items[0].Bytes) != "cat" || string(items[1].Bytes) != "dog" {
		t.Errorf("unexpected items: %q %q", items[0].Bytes, items[1].Bytes)
	}
}

func TestDecodeRLPListInvalid(t *testing.T) {
	_, err := DecodeRLPList([]byte{0xff, 0xff})
	if err == nil {
		t.Fatal("expected error for malformed RLP")
	}
}

func TestCanonicalMessagePackKeyOrder(t *testing.T) {
	a, err := CanonicalMessagePackFromJSON([]byte(`{"b":1,"a":2,"c":{"z":1,"y":2}}`))
	if err != nil {
		t.Fatalf("encode a: %v", err)
	}
	b, err := CanonicalMessagePackFromJSON([]byte(`{"c":{"y":2,"z":1},"a":2,"b":1}`))
	if err != nil {
		t.Fatalf("encode b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("canonical encoding should be independent of source JSON key order: %x != %x", a, b)
	}
}

func TestCanonicalMessagePackIntegers(t *testing.T) {
	out, err := CanonicalMessagePackFromJSON([]byte(`{"timestamp":1234567890}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}
