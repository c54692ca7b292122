package node

import (
	"testing"
	"time"

	"raytree/network"
	"raytree/network/memtransport"
	"raytree/topology"
)

// cluster wires a topology over a shared memtransport.Hub and starts every
// node's event loop, mirroring the teacher's TestKit helper in
// network/participant/utils.go but over the in-memory transport instead of
// real sockets.
type cluster struct {
	nodes map[int]*Node
}

func newCluster(t *testing.T, tr *topology.Tree) *cluster {
	t.Helper()
	hub := memtransport.NewHub()
	c := &cluster{nodes: make(map[int]*Node, tr.N())}
	for i := 0; i < tr.N(); i++ {
		transport := hub.Register(network.MailboxName(i))
		n := New(i, tr.Neighbors(i), transport)
		c.nodes[i] = n
		go n.Run()
	}
	t.Cleanup(func() {
		for _, n := range c.nodes {
			n.Close()
		}
	})
	return c
}

func (c *cluster) bootstrap() {
	c.nodes[0].Bootstrap()
}

// waitFor polls cond, mirroring the retry-until-true pattern of the
// teacher's CheckVal helper, since protocol convergence here happens across
// goroutines with no single synchronous call to block on.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before deadline")
	}
}
