package codec

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
)

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Hex returns the lowercase hex SHA-256 digest of data, the form
// used for GET_ATTR and ATTRIB-adjustment digests.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return HexEncode(h[:])
}

// Keccak256 returns the 32-byte Keccak (pre-NIST SHA-3) digest of data.
// Trie node identity is the Keccak hash of a node's RLP encoding — the
// same hash construction go-ethereum uses for its own Merkle Patricia
// trie, which is why this module reuses go-ethereum's implementation
// rather than rolling its own.
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}
