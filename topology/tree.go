// Package topology holds the fixed, known-at-startup tree shape the
// protocol assumes: a fixed set of N nodes connected as an undirected
// tree known to every node at startup. It deliberately does not generate
// random trees — that stays an external collaborator — it only builds
// and validates one from an explicit edge list, and loads that edge list
// from a config file for the demo harness.
package topology

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Tree is a validated undirected tree over integer node ids 0..N-1.
type Tree struct {
	neighbors map[int]mapset.Set[int]
}

// Build constructs a Tree from an edge list and validates that it is
// connected, acyclic, and covers ids 0..N-1 with no gaps — the holder
// graph the protocol maintains is only acyclic if the underlying
// neighbour graph is acyclic to begin with.
func Build(edges [][2]int) (*Tree, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("topology: empty edge list")
	}
	ids := mapset.NewSet[int]()
	for _, e := range edges {
		ids.Add(e[0])
		ids.Add(e[1])
	}
	n := ids.Cardinality()
	for i := 0; i < n; i++ {
		if !ids.Contains(i) {
			return nil, fmt.Errorf("topology: node ids must be a contiguous range 0..%d, missing %d", n-1, i)
		}
	}
	if len(edges) != n-1 {
		return nil, fmt.Errorf("topology: %d nodes require exactly %d edges for a tree, got %d", n, n-1, len(edges))
	}

	neighbors := make(map[int]mapset.Set[int], n)
	for i := 0; i < n; i++ {
		neighbors[i] = mapset.NewSet[int]()
	}
	for _, e := range edges {
		u, v := e[0], e[1]
		if u == v {
			return nil, fmt.Errorf("topology: self-loop at node %d", u)
		}
		if neighbors[u].Contains(v) {
			return nil, fmt.Errorf("topology: duplicate edge (%d,%d)", u, v)
		}
		neighbors[u].Add(v)
		neighbors[v].Add(u)
	}

	t := &Tree{neighbors: neighbors}
	if !t.connected() {
		return nil, fmt.Errorf("topology: edge list does not form a connected tree")
	}
	return t, nil
}

func (t *Tree) connected() bool {
	if len(t.neighbors) == 0 {
		return false
	}
	visited := mapset.NewSet[int]()
	stack := []int{0}
	visited.Add(0)
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.neighbors[u].Each(func(v int) bool {
			if !visited.Contains(v) {
				visited.Add(v)
				stack = append(stack, v)
			}
			return false
		})
	}
	return visited.Cardinality() == len(t.neighbors)
}

// N returns the number of nodes in the tree.
func (t *Tree) N() int {
	return len(t.neighbors)
}

// Neighbors returns the sorted neighbour ids of node id.
func (t *Tree) Neighbors(id int) []int {
	out := t.neighbors[id].ToSlice()
	sort.Ints(out)
	return out
}

// NeighborSet returns the neighbour set of node id, for callers that want
// set semantics (membership tests) rather than a slice.
func (t *Tree) NeighborSet(id int) mapset.Set[int] {
	return t.neighbors[id].Clone()
}
