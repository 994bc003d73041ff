package trie

import (
	"bytes"
	"fmt"

	"github.com/smqik/indy-vdr/pkg/codec"
)

// Store is a hash-indexed lookup table over the nodes supplied by a
// single proof. It is built once per verification call and discarded
// afterward — the engine never retains trie state across replies.
type Store struct {
	byHash map[[32]byte]*Node
}

// KV is a (full key bytes, value bytes) pair produced by range
// enumeration.
type KV struct {
	Key   []byte
	Value []byte
}

// BuildStore decodes proofNodesRLP as a top-level RLP list of trie nodes
// and indexes each by the Keccak256 hash of its own encoding — the
// identity the ledger node used when it referenced the node from its
// parent.
func BuildStore(proofNodesRLP []byte) (*Store, error) {
	items, err := codec.DecodeRLPList(proofNodesRLP)
	if err != nil {
		return nil, err
	}
	s := &Store{byHash: make(map[[32]byte]*Node, len(items))}
	for _, item := range items {
		node, err := DecodeNode(item)
		if err != nil {
			return nil, err
		}
		s.byHash[codec.Keccak256(item.Raw)] = node
	}
	return s, nil
}

func (s *Store) lookup(hash []byte) (*Node, bool) {
	var key [32]byte
	if len(hash) != 32 {
		return nil, false
	}
	copy(key[:], hash)
	n, ok := s.byHash[key]
	return n, ok
}

// resolve returns the node a Child points to, following a hash reference
// through the store if necessary. A hash reference absent from the
// store is a structural proof defect, not an absence proof.
func (s *Store) resolve(c *Child) (*Node, error) {
	if c == nil {
		return nil, nil
	}
	if c.Inline != nil {
		return c.Inline, nil
	}
	n, ok := s.lookup(c.Hash)
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrStructural, c.Hash)
	}
	return n, nil
}

// GetValue walks the trie rooted at rootHash looking for key. A nil
// value with found=false and a nil error is a valid proof of absence; an error means the proof
// itself is structurally broken (a referenced node is missing).
func (s *Store) GetValue(rootHash, key []byte) ([]byte, bool, error) {
	root, ok := s.lookup(rootHash)
	if !ok {
		return nil, false, fmt.Errorf("%w: root %x", ErrStructural, rootHash)
	}
	return s.walkValue(root, bytesToNibbles(key))
}

func (s *Store) walkValue(node *Node, nibbles []byte) ([]byte, bool, error) {
	if node == nil {
		return nil, false, nil
	}
	switch node.Kind {
	case KindLeaf:
		if bytes.Equal(nibbles, node.PathNibbles) {
			return node.Value, true, nil
		}
		return nil, false, nil
	case KindExtension:
		if !hasPrefix(nibbles, node.PathNibbles) {
			return nil, false, nil
		}
		child, err := s.resolve(node.Child)
		if err != nil {
			return nil, false, err
		}
		return s.walkValue(child, nibbles[len(node.PathNibbles):])
	case KindBranch:
		if len(nibbles) == 0 {
			if node.Terminal != nil {
				return node.Terminal, true, nil
			}
			return nil, false, nil
		}
		child, err := s.resolve(node.Children[nibbles[0]])
		if err != nil {
			return nil, false, err
		}
		if child == nil {
			return nil, false, nil
		}
		return s.walkValue(child, nibbles[1:])
	default:
		return nil, false, fmt.Errorf("trie: unknown node kind %d", node.Kind)
	}
}

// GetAllValues walks to the subtree rooted at prefix and depth-first
// enumerates every leaf beneath it, in ascending branch-slot order. The
// returned keys are the full key bytes (prefix plus the nibbles walked
// to reach each leaf).
func (s *Store) GetAllValues(rootHash, prefix []byte) ([]KV, error) {
	root, ok := s.lookup(rootHash)
	if !ok {
		return nil, fmt.Errorf("%w: root %x", ErrStructural, rootHash)
	}
	prefixNibbles := bytesToNibbles(prefix)
	subtreeRoot, consumed, err := s.descendToSubtree(root, prefixNibbles)
	if err != nil {
		return nil, err
	}
	if subtreeRoot == nil {
		return nil, nil
	}
	var out []KV
	if err := s.enumerate(subtreeRoot, consumed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// descendToSubtree walks down from node consuming nibbles until the
// requested prefix is fully consumed (node is now the subtree root) or
// the prefix cannot be matched (nil, nil, nil — empty result).
func (s *Store) descendToSubtree(node *Node, remaining []byte) (*Node, []byte, error) {
	if node == nil {
		return nil, nil, nil
	}
	if len(remaining) == 0 {
		return node, nil, nil
	}
	switch node.Kind {
	case KindLeaf:
		if hasPrefix(node.PathNibbles, remaining) {
			return node, nil, nil
		}
		return nil, nil, nil
	case KindExtension:
		if hasPrefix(node.PathNibbles, remaining) {
			// the requested prefix ends inside (or exactly at) this
			// extension's own path: everything below shares it.
			return node, nil, nil
		}
		if !hasPrefix(remaining, node.PathNibbles) {
			return nil, nil, nil
		}
		child, err := s.resolve(node.Child)
		if err != nil {
			return nil, nil, err
		}
		sub, tail, err := s.descendToSubtree(child, remaining[len(node.PathNibbles):])
		if err != nil {
			return nil, nil, err
		}
		return sub, append(append([]byte{}, node.PathNibbles...), tail...), nil
	case KindBranch:
		child, err := s.resolve(node.Children[remaining[0]])
		if err != nil {
			return nil, nil, err
		}
		if child == nil {
			return nil, nil, nil
		}
		sub, tail, err := s.descendToSubtree(child, remaining[1:])
		if err != nil {
			return nil, nil, err
		}
		if sub == nil {
			return nil, nil, nil
		}
		return sub, append([]byte{remaining[0]}, tail...), nil
	default:
		return nil, nil, fmt.Errorf("trie: unknown node kind %d", node.Kind)
	}
}

func (s *Store) enumerate(node *Node, pathNibbles []byte, out *[]KV) error {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case KindLeaf:
		full := append(append([]byte{}, pathNibbles...), node.PathNibbles...)
		key, err := nibblesToBytes(full)
		if err != nil {
			return err
		}
		*out = append(*out, KV{Key: key, Value: node.Value})
		return nil
	case KindExtension:
		child, err := s.resolve(node.Child)
		if err != nil {
			return err
		}
		return s.enumerate(child, append(append([]byte{}, pathNibbles...), node.PathNibbles...), out)
	case KindBranch:
		if node.Terminal != nil {
			key, err := nibblesToBytes(pathNibbles)
			if err != nil {
				return err
			}
			*out = append(*out, KV{Key: key, Value: node.Terminal})
		}
		for i := 0; i < 16; i++ {
			child, err := s.resolve(node.Children[i])
			if err != nil {
				return err
			}
			if child == nil {
				continue
			}
			if err := s.enumerate(child, append(append([]byte{}, pathNibbles...), byte(i)), out); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("trie: unknown node kind %d", node.Kind)
	}
}
