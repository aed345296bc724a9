package tree

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
)

// Key returns a canonical identity for the topology of t.
//
// The key is built from the nontrivial leaf bipartitions induced by the
// internal edges, so it ignores both slot order and internal node numbering.
// Leaf indices are significant.
func (t *Unrooted) Key() string {
	n, leaves := t.N(), t.Leaves
	words := (leaves + 63) / 64

	// Walk outward from leaf 0 so every split is recorded on the side that
	// excludes it.
	parent := make([]int, n)
	seen := make([]bool, n)
	order := make([]int, 0, n)
	parent[0], seen[0] = -1, true
	order = append(order, 0)
	for head := 0; head < len(order); head++ {
		v := order[head]
		for _, u := range t.Adj(v) {
			if !seen[u] {
				seen[u] = true
				parent[u] = v
				order = append(order, u)
			}
		}
	}

	bits := make([]uint64, n*words)
	splits := make([]string, 0, max(leaves-3, 0))
	buf := make([]byte, 8*words)
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		own := bits[v*words : (v+1)*words]
		if v < leaves {
			own[v/64] |= 1 << (v % 64)
		} else if parent[v] != 0 {
			for w, x := range own {
				binary.LittleEndian.PutUint64(buf[8*w:], x)
			}
			splits = append(splits, string(buf))
		}
		if p := parent[v]; p >= 0 {
			dst := bits[p*words : (p+1)*words]
			for w, x := range own {
				dst[w] |= x
			}
		}
	}
	slices.Sort(splits)

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(leaves))
	sb.WriteByte('|')
	for _, s := range splits {
		sb.WriteString(s)
	}
	return sb.String()
}
