package hash

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"
)

// Ring implements a consistent hash ring over worker ranks with virtual nodes.
//
// Block ordinals hash onto the ring and walk clockwise to the next virtual
// node. The mapping is a pure function of the member list, the virtual node
// count, and the seed, so every worker of a group computes the same picture
// without communication. It is also sticky: changing the member set moves
// only the blocks whose nearest virtual node changed.
type Ring struct {
	// nodes contains all virtual nodes on the ring, sorted by hash
	nodes []virtualNode

	// ranks holds the unique member ranks present on the ring
	ranks []int

	// seed for the hash function (0 means unseeded)
	seed uint64
}

// virtualNode is one placement of a rank on the ring.
type virtualNode struct {
	hash uint64 // Position on the ring
	rank int    // Member rank owning this virtual node
}

// NewRing creates a consistent hash ring over the given ranks.
//
// Parameters:
//   - ranks: Member ranks to place on the ring (duplicates are dropped)
//   - virtualNodes: Number of virtual nodes per rank (higher = better distribution)
//   - seed: Hash seed (0 for the unseeded hash; any fixed value is deterministic)
//
// Returns:
//   - *Ring: Initialized hash ring
//
// Example:
//
//	ring := hash.NewRing([]int{0, 1, 2}, 150, 0)
//	owner := ring.RankFor(blockID)
func NewRing(ranks []int, virtualNodes int, seed uint64) *Ring {
	ring := &Ring{seed: seed}

	// Deduplicate ranks while preserving order
	seen := make(map[int]struct{}, len(ranks))
	uniq := make([]int, 0, len(ranks))
	for _, r := range ranks {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		uniq = append(uniq, r)
	}
	ring.ranks = uniq

	ring.nodes = make([]virtualNode, 0, len(uniq)*virtualNodes)
	for _, rank := range uniq {
		ring.addRank(rank, virtualNodes)
	}

	// Sort nodes by hash for binary search
	slices.SortFunc(ring.nodes, func(a, b virtualNode) int {
		if a.hash < b.hash {
			return -1
		}
		if a.hash > b.hash {
			return 1
		}

		return 0
	})

	return ring
}

// RankFor returns the member rank owning the given block ordinal.
//
// Uses binary search to find the first virtual node whose hash is >= the
// block hash, wrapping around to the first node past the end of the ring.
//
// Parameters:
//   - block: Block ordinal to place
//
// Returns:
//   - int: Owning member rank, or -1 for an empty ring
func (r *Ring) RankFor(block int) int {
	if len(r.nodes) == 0 {
		return -1
	}

	h := r.hashKey(uint64(block)) //nolint:gosec

	idx, found := slices.BinarySearchFunc(r.nodes, h, func(node virtualNode, t uint64) int {
		if node.hash < t {
			return -1
		}
		if node.hash > t {
			return 1
		}

		return 0
	})
	if !found && idx >= len(r.nodes) {
		idx = 0
	}

	return r.nodes[idx].rank
}

// Ranks returns the unique member ranks on the ring.
func (r *Ring) Ranks() []int {
	// Return a copy to avoid external mutation
	return slices.Clone(r.ranks)
}

// Size returns the total number of virtual nodes on the ring.
func (r *Ring) Size() int {
	return len(r.nodes)
}

// addRank adds virtual nodes for a member rank to the ring.
func (r *Ring) addRank(rank, virtualNodes int) {
	// Fold the rank first, then each virtual node index using the previous
	// hash as seed, so placements stay stable without building key strings.
	base := r.hashKey(uint64(rank)) //nolint:gosec

	for i := range virtualNodes {
		var ib [8]byte
		binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec

		r.nodes = append(r.nodes, virtualNode{hash: xxh3.HashSeed(ib[:], base), rank: rank})
	}
}

// hashKey computes the 64-bit XXH3 hash of an integer key.
func (r *Ring) hashKey(key uint64) uint64 {
	var kb [8]byte
	binary.LittleEndian.PutUint64(kb[:], key)
	if r.seed != 0 {
		return xxh3.HashSeed(kb[:], r.seed)
	}

	return xxh3.Hash(kb[:])
}
