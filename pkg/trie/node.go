// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package trie models the hex-keyed Patricia/Merkle trie used as the
// ledger's state index: the variant-typed node shapes (leaf, extension,
// branch), their hex-prefix path encoding, and a hash-indexed lookup
// table used to walk a proof's node set without holding the whole trie.
package trie

import (
	"errors"
	"fmt"

	"github.com/smqik/indy-vdr/pkg/codec"
)

// ErrStructural is returned when a proof references a hash that is not
// present in the supplied node set. This is a structural defect in the
// proof, distinct from a well-formed absence proof.
var ErrStructural = errors.New("trie: referenced node hash not found in proof")

// Kind discriminates the shape of a trie Node.
type Kind int

const (
	KindLeaf Kind = iota
	KindExtension
	KindBranch
)

// Child is a branch slot or an extension's target: either a reference to
// a node elsewhere in the proof's node set (by hash) or, when the target
// node's encoding is short enough, the node embedded inline.
type Child struct {
	Hash   []byte // 32 bytes when set
	Inline *Node  // set instead of Hash for short inline children
}

// Node is a decoded trie node. Exactly one of the field groups below is
// meaningful, selected by Kind.
type Node struct {
	Kind Kind

	// Leaf / Extension
	PathNibbles []byte

	// Leaf only
	Value []byte

	// Extension only
	Child *Child

	// Branch only: 16 nibble-indexed children plus an optional value
	// stored at the branch itself (the terminal slot).
	Children [16]*Child
	Terminal []byte
}

// DecodeNode decodes a single RLP list item into a Node. Two-element
// lists are leaves or extensions, discriminated by the hex-prefix flag
// embedded in the first element; seventeen-element lists are branches.
// Any other shape is malformed and rejected.
func DecodeNode(item codec.RLPItem) (*Node, error) {
	if !item.IsList {
		return nil, fmt.Errorf("trie: node is not an RLP list")
	}
	switch len(item.Items) {
	case 2:
		return decodeLeafOrExtension(item.Items[0], item.Items[1])
	case 17:
		return decodeBranch(item.Items)
	default:
		return nil, fmt.Errorf("trie: unexpected node arity %d", len(item.Items))
	}
}

func decodeLeafOrExtension(pathItem, valueItem codec.RLPItem) (*Node, error) {
	if pathItem.IsList {
		return nil, fmt.Errorf("trie: node path must be a byte string")
	}
	nibbles, isLeaf := decodeHexPrefix(pathItem.Bytes)
	if isLeaf {
		if valueItem.IsList {
			return nil, fmt.Errorf("trie: leaf value must be a byte string")
		}
		return &Node{Kind: KindLeaf, PathNibbles: nibbles, Value: valueItem.Bytes}, nil
	}
	child, err := decodeChild(valueItem)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindExtension, PathNibbles: nibbles, Child: child}, nil
}

func decodeBranch(items []codec.RLPItem) (*Node, error) {
	n := &Node{Kind: KindBranch}
	for i := 0; i < 16; i++ {
		child, err := decodeChild(items[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	terminal := items[16]
	if terminal.IsList {
		return nil, fmt.Errorf("trie: branch terminal must be a byte string")
	}
	if len(terminal.Bytes) > 0 {
		n.Terminal = terminal.Bytes
	}
	return n, nil
}

// decodeChild decodes a branch slot or extension target: empty string
// means no child, a list is an inline sub-node, a 32-byte string is a
// hash reference. Anything else is malformed.
func decodeChild(item codec.RLPItem) (*Child, error) {
	if item.IsList {
		inline, err := DecodeNode(item)
		if err != nil {
			return nil, err
		}
		return &Child{Inline: inline}, nil
	}
	if len(item.Bytes) == 0 {
		return nil, nil
	}
	if len(item.Bytes) != 32 {
		return nil, fmt.Errorf("trie: child reference must be empty, a list, or 32 bytes; got %d", len(item.Bytes))
	}
	hash := make([]byte, 32)
	copy(hash, item.Bytes)
	return &Child{Hash: hash}, nil
}

// decodeHexPrefix decodes the standard hex-prefix path encoding: bit
// 0x2 of the leading flag nibble marks leaf vs. extension, bit 0x1
// marks odd vs. even remaining-nibble count.
func decodeHexPrefix(path []byte) (nibbles []byte, isLeaf bool) {
	if len(path) == 0 {
		return nil, false
	}
	flag := path[0] >> 4
	isLeaf = flag&0x2 != 0
	isOdd := flag&0x1 != 0

	nibbles = bytesToNibbles(path[1:])
	if isOdd {
		nibbles = append([]byte{path[0] & 0x0f}, nibbles...)
	}
	return nibbles, isLeaf
}

func bytesToNibbles(b []byte) []byte {
	nibbles := make([]byte, 0, len(b)*2)
	for _, by := range b {
		nibbles = append(nibbles, by>>4, by&0x0f)
	}
	return nibbles
}

func nibblesToBytes(n []byte) ([]byte, error) {
	if len(n)%2 != 0 {
		return nil, fmt.Errorf("trie: odd nibble count %d cannot form bytes", len(n))
	}
	out := make([]byte, len(n)/2)
	for i := 0; i < len(out); i++ {
		out[i] = n[2*i]<<4 | n[2*i+1]
	}
	return out, nil
}

func hasPrefix(nibbles, prefix []byte) bool {
	if len(nibbles) < len(prefix) {
		return false
	}
	for i := range prefix {
		if nibbles[i] != prefix[i] {
			return false
		}
	}
	return true
}
