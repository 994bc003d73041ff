package codec

import (
	gethrlp "github.com/ethereum/go-ethereum/rlp"
)

// RLPItem is a decoded Ethereum-style RLP value: either a byte string
// (including the empty string and single bytes) or a list of items.
// Trie nodes are RLP lists; a list's two forms (2-element / 17-element)
// are told apart by the caller, not by this package.
type RLPItem struct {
	IsList bool
	Bytes  []byte    // valid when !IsList
	Items  []RLPItem // valid when IsList

	// Raw is the exact encoded byte range this item occupied (header
	// included). Trie node identity is Keccak256(Raw) for list items.
	Raw []byte
}

// DecodeRLPList decodes data as a single top-level RLP list and returns
// its elements. This is the shape state_proof.proof_nodes arrives in:
// an RLP-encoded list of trie nodes. Invalid RLP yields ErrInvalidRLP,
// which callers treat as "zero proof nodes" (a verification failure,
// never a panic), matching spec.md §4.1.
func DecodeRLPList(data []byte) ([]RLPItem, error) {
	item, rest, err := decodeRLPItem(data)
	if err != nil {
		return nil, ErrInvalidRLP
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}
	if !item.IsList {
		return nil, ErrInvalidRLP
	}
	return item.Items, nil
}

// decodeRLPItem decodes exactly one RLP item from the front of data and
// returns it along with the unconsumed remainder.
func decodeRLPItem(data []byte) (RLPItem, []byte, error) {
	kind, content, rest, err := gethrlp.Split(data)
	if err != nil {
		return RLPItem{}, nil, ErrInvalidRLP
	}
	raw := data[:len(data)-len(rest)]

	if kind != gethrlp.List {
		return RLPItem{IsList: false, Bytes: content, Raw: raw}, rest, nil
	}

	var items []RLPItem
	remaining := content
	for len(remaining) > 0 {
		child, childRest, err := decodeRLPItem(remaining)
		if err != nil {
			return RLPItem{}, nil, err
		}
		items = append(items, child)
		remaining = childRest
	}
	return RLPItem{IsList: true, Items: items, Raw: raw}, rest, nil
}
