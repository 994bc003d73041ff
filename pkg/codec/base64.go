package codec

import "encoding/base64"

// Base64Encode encodes data using standard base64 with padding, the form
// proof_nodes and kvs_to_verify entries arrive in.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode decodes a standard, padded base64 string.
func Base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
