package topology

import (
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestBuildLineOfThree(t *testing.T) {
	tr, err := Build([][2]int{{0, 1}, {1, 2}})
	assert.Equal(t, err, nil)
	assert.Equal(t, tr.N(), 3)
	assert.Equal(t, tr.Neighbors(0), []int{1})
	assert.Equal(t, tr.Neighbors(1), []int{0, 2})
	assert.Equal(t, tr.Neighbors(2), []int{1})
}

func TestBuildStar(t *testing.T) {
	tr, err := Build([][2]int{{0, 1}, {0, 2}, {0, 3}})
	assert.Equal(t, err, nil)
	assert.Equal(t, tr.Neighbors(0), []int{1, 2, 3})
	assert.Equal(t, tr.NeighborSet(1).Contains(0), true)
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(nil)
	if err == nil {
		t.Fatal("expected error for empty edge list")
	}
}

func TestBuildRejectsGapInIDs(t *testing.T) {
	_, err := Build([][2]int{{0, 2}})
	if err == nil {
		t.Fatal("expected error for non-contiguous ids")
	}
}

func TestBuildRejectsWrongEdgeCount(t *testing.T) {
	_, err := Build([][2]int{{0, 1}, {1, 2}, {0, 2}})
	if err == nil {
		t.Fatal("expected error: a cycle is not a tree")
	}
}

func TestBuildRejectsSelfLoop(t *testing.T) {
	_, err := Build([][2]int{{0, 0}})
	if err == nil {
		t.Fatal("expected error for self-loop")
	}
}

func TestBuildRejectsDisconnected(t *testing.T) {
	// {0,1} is one tree component; {2,3,4} is a triangle, not a tree, but
	// contributes enough edges (3) that the total (4) still equals n-1 for
	// n=5 — so only the connectivity walk, not the edge-count check, can
	// catch this one.
	_, err := Build([][2]int{{0, 1}, {2, 3}, {3, 4}, {2, 4}})
	if err == nil {
		t.Fatal("expected error for disconnected edge list")
	}
}
