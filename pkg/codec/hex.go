package codec

import "encoding/hex"

// HexEncode returns the lowercase hex encoding of data, the form used for
// GET_ATTR/GET_TXN_AUTHR_AGRMT digests and ATTRIB audit-leaf adjustment.
func HexEncode(data []byte) string {
	return hex.EncodeToString(data)
}

// HexDecode decodes a lowercase (or uppercase) hex string.
func HexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
