package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"raytree/topology"
)

// Contention tie-break. Star with centre 0 and leaves 1,2,3. Leaves
// request strictly in order 1, then 2, then 3, each REQUEST reaching the
// centre before the next leaf asks; centre's request_Q is FIFO so the
// grant order must be 1, 2, 3.
func TestContentionTieBreakIsFIFO(t *testing.T) {
	tr, err := topology.Build([][2]int{{0, 1}, {0, 2}, {0, 3}})
	assert.NoError(t, err)
	c := newCluster(t, tr)
	c.bootstrap()
	waitFor(t, func() bool { return c.nodes[3].Snapshot().Holder == 0 })

	for _, leaf := range []int{1, 2, 3} {
		assert.NoError(t, c.nodes[leaf].EnterCriticalSection(0))
		// Strict order: give each REQUEST time to reach the centre and be
		// enqueued before the next leaf asks, so request_Q order is
		// deterministic rather than a race between sends.
		time.Sleep(20 * time.Millisecond)
	}

	// Record the order in which each leaf actually transitions to Using,
	// quitting as soon as observed so the next grant can happen.
	var grantOrder []int
	remaining := map[int]bool{1: true, 2: true, 3: true}
	deadline := time.Now().Add(2 * time.Second)
	for len(remaining) > 0 && time.Now().Before(deadline) {
		for leaf := range remaining {
			if c.nodes[leaf].Snapshot().Using {
				grantOrder = append(grantOrder, leaf)
				delete(remaining, leaf)
				assert.NoError(t, c.nodes[leaf].QuitCriticalSection())
				waitFor(t, func() bool { return !c.nodes[leaf].Snapshot().Using })
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, []int{1, 2, 3}, grantOrder)
}
