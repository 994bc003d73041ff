package codec

import "github.com/mr-tron/base58"

// Base58Encode encodes data using the Bitcoin base58 alphabet, the
// encoding every root hash, sibling audit hash, and BLS multi-signature
// is carried in over the wire.
func Base58Encode(data []byte) string {
	return base58.Encode(data)
}

// Base58Decode decodes a base58 string produced by Base58Encode.
func Base58Decode(s string) ([]byte, error) {
	return base58.Decode(s)
}
