package graphdb

import "golang.org/x/crypto/blake2b"

// Key prefixes, single-byte like the teacher's pkg/storage/badger.go, one
// added prefix pair (type index, adjacency) per direction generalized from
// the teacher's label/outgoing/incoming scheme to per-edge-type buckets.
const (
	prefixNode     = byte(0x01) // node:     nodeID -> JSON(Node)
	prefixEdge     = byte(0x02) // edge:     edgeID -> JSON(Edge)
	prefixNodeType = byte(0x03) // ntype:    typeName 0x00 nodeID -> empty
	prefixEdgeType = byte(0x04) // etype:    typeName 0x00 edgeID -> empty
	prefixOutAdj   = byte(0x05) // out-adj:  nodeID 0x00 edgeTypeHash 0x00 edgeID -> empty
	prefixInAdj    = byte(0x06) // in-adj:   nodeID 0x00 edgeTypeHash 0x00 edgeID -> empty
)

const sep = byte(0x00)

func nodeKey(id string) []byte {
	return append([]byte{prefixNode}, []byte(id)...)
}

func edgeKey(id string) []byte {
	return append([]byte{prefixEdge}, []byte(id)...)
}

func nodeTypeKey(typeName, nodeID string) []byte {
	k := make([]byte, 0, 1+len(typeName)+1+len(nodeID))
	k = append(k, prefixNodeType)
	k = append(k, typeName...)
	k = append(k, sep)
	return append(k, nodeID...)
}

func nodeTypePrefix(typeName string) []byte {
	k := make([]byte, 0, 1+len(typeName)+1)
	k = append(k, prefixNodeType)
	k = append(k, typeName...)
	return append(k, sep)
}

func edgeTypeKey(typeName, edgeID string) []byte {
	k := make([]byte, 0, 1+len(typeName)+1+len(edgeID))
	k = append(k, prefixEdgeType)
	k = append(k, typeName...)
	k = append(k, sep)
	return append(k, edgeID...)
}

func edgeTypePrefix(typeName string) []byte {
	k := make([]byte, 0, 1+len(typeName)+1)
	k = append(k, prefixEdgeType)
	k = append(k, typeName...)
	return append(k, sep)
}

// edgeTypeHash bounds the adjacency key's per-edge-type bucket to a fixed
// 8 bytes, so a schema with many distinct, long edge type names doesn't
// blow up adjacency key length. Same fixed-width hashing idiom the teacher
// uses blake2b for in pkg/auth, applied here to edge type names instead of
// credentials. Collisions are possible (64 bits of a 256-bit hash); callers
// must still verify the decoded Edge.Type before trusting a type-scoped
// adjacency scan.
func edgeTypeHash(edgeType string) [8]byte {
	sum := blake2b.Sum256([]byte(edgeType))
	var h [8]byte
	copy(h[:], sum[:8])
	return h
}

func adjKey(prefix byte, nodeID string, edgeType, edgeID string) []byte {
	h := edgeTypeHash(edgeType)
	k := make([]byte, 0, 1+len(nodeID)+1+8+1+len(edgeID))
	k = append(k, prefix)
	k = append(k, nodeID...)
	k = append(k, sep)
	k = append(k, h[:]...)
	k = append(k, sep)
	return append(k, edgeID...)
}

func outAdjKey(nodeID, edgeType, edgeID string) []byte { return adjKey(prefixOutAdj, nodeID, edgeType, edgeID) }
func inAdjKey(nodeID, edgeType, edgeID string) []byte  { return adjKey(prefixInAdj, nodeID, edgeType, edgeID) }

// adjAnyTypePrefix matches every adjacency entry for nodeID regardless of
// edge type bucket.
func adjAnyTypePrefix(prefix byte, nodeID string) []byte {
	k := make([]byte, 0, 1+len(nodeID)+1)
	k = append(k, prefix)
	k = append(k, nodeID...)
	return append(k, sep)
}

// adjTypePrefix matches only the bucket for edgeType.
func adjTypePrefix(prefix byte, nodeID, edgeType string) []byte {
	h := edgeTypeHash(edgeType)
	k := make([]byte, 0, 1+len(nodeID)+1+8+1)
	k = append(k, prefix)
	k = append(k, nodeID...)
	k = append(k, sep)
	k = append(k, h[:]...)
	return append(k, sep)
}

// extractTrailingID returns the last component of a key that ends in
// 0x00 + id, i.e. everything after the final separator byte.
func extractTrailingID(key []byte) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == sep {
			return string(key[i+1:])
		}
	}
	return ""
}
