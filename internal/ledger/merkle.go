package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// merkleNode is a node in the tree. Only leaves carry data.
type merkleNode struct {
	Left  *merkleNode
	Right *merkleNode
	Hash  string
}

// hashData returns SHA256 hex string
func hashData(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

// merkleRoot rebuilds the tree over leaves and returns the root hash, or ""
// when there are no leaves. Odd nodes are paired with themselves.
func merkleRoot(leaves []*merkleNode) string {
	if len(leaves) == 0 {
		return ""
	}

	nodes := leaves
	for len(nodes) > 1 {
		var nextLevel []*merkleNode

		for i := 0; i < len(nodes); i += 2 {
			left := nodes[i]
			right := left
			if i+1 < len(nodes) {
				right = nodes[i+1]
			}

			nextLevel = append(nextLevel, &merkleNode{
				Left:  left,
				Right: right,
				Hash:  hashData(left.Hash + right.Hash),
			})
		}
		nodes = nextLevel
	}

	return nodes[0].Hash
}
