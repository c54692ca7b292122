// Package node implements the per-node Raymond-tree mutual-exclusion
// protocol state machine with Chang-Singhal/Naimi-Tréhel crash recovery.
// Everything outside this package (the transport, the topology, the
// workload driver that calls into it) is a collaborator, not the core.
package node

import (
	"sort"
	"sync"
	"time"

	lock "github.com/viney-shih/go-lock"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"raytree/configs"
	"raytree/network"
)

// Node is one participant in the tree mutex protocol. All of its fields
// except those explicitly guarded below are owned exclusively by the
// goroutine running Node.Run — a single-consumer event loop per node — so
// the rest of this package never needs a mutex around protocol state
// itself.
type Node struct {
	number       int
	neighborList []int
	neighborSet  mapset.Set[int]

	transport network.Transport
	log       *logrus.Entry

	// Protocol state. Owned by Run(); never touched from another
	// goroutine.
	holder        int
	using         bool
	asked         bool
	requestQ      []int
	iasked        bool
	recovering    bool
	adviseAnswers []adviseEntry

	quiescence time.Duration
	quitTimer  *time.Timer

	events chan event

	// snapMu/snap back Snapshot(): the only node state visible to a
	// second goroutine (the workload driver). Updated by Run() after
	// every event it processes.
	snapMu lock.CASMutex // constructed via lock.NewCASMutex() in New
	snap   Snapshot

	done      chan struct{}
	closeOnce sync.Once
}

// event is the driver-originated half of the node's single inbound
// queue; delivered messages arrive separately via the transport's own
// Inbox channel and are merged into the same select in Run.
type event struct {
	driver   driverKind
	reply    chan error
	duration time.Duration // EnterCriticalSection's optional auto-quit delay
}

type driverKind int

const (
	driverNone driverKind = iota
	driverEnterCS
	driverQuitCS
	driverRestart
	driverBootstrap
)

// New constructs a Node bound to transport, with the given fixed
// neighbour list. The node starts Unknown/not-using, exactly the state
// crash() resets to — a fresh node and a just-crashed node begin recovery
// from the same place conceptually, except a fresh node is oriented by
// INITIALIZE rather than by ADVISE.
func New(number int, neighbors []int, transport network.Transport) *Node {
	configs.Assert(number >= 0, "node number must be non-negative")
	nl := append([]int(nil), neighbors...)
	sort.Ints(nl)
	set := mapset.NewSet[int](nl...)
	configs.Assert(!set.Contains(number), "node cannot list itself as its own neighbour")

	n := &Node{
		number:       number,
		neighborList: nl,
		neighborSet:  set,
		transport:    transport,
		log:          configs.NodeLog(number),
		holder:       Unknown,
		quiescence:   configs.QuiescenceInterval,
		events:       make(chan event, 64),
		snapMu:       lock.NewCASMutex(),
		done:         make(chan struct{}),
	}
	n.snap = n.computeSnapshot()
	return n
}

// Run starts the node's single-consumer event loop. It blocks until
// Close is called or the transport's inbox is closed; callers typically
// run it in its own goroutine.
func (n *Node) Run() {
	inbox := n.transport.Inbox()
	for {
		select {
		case env, ok := <-inbox:
			if !ok {
				return
			}
			n.handleMessage(env.Msg)
			n.publishSnapshot()
		case ev := <-n.events:
			n.handleDriverEvent(ev)
			n.publishSnapshot()
		case <-n.done:
			return
		}
	}
}

// Close stops the node's event loop. It does not close the transport,
// which callers may share across nodes (e.g. memtransport.Hub).
func (n *Node) Close() {
	n.closeOnce.Do(func() { close(n.done) })
}

func (n *Node) publishSnapshot() {
	snap := n.computeSnapshot()
	n.snapMu.Lock()
	n.snap = snap
	n.snapMu.Unlock()
}

func (n *Node) computeSnapshot() Snapshot {
	return Snapshot{
		Number:     n.number,
		Neighbors:  append([]int(nil), n.neighborList...),
		Holder:     n.holder,
		Using:      n.using,
		Asked:      n.asked,
		IAsked:     n.iasked,
		Recovering: n.recovering,
		RequestQ:   append([]int(nil), n.requestQ...),
	}
}

// Snapshot returns the node's current externally-visible state. Safe to
// call from any goroutine; it is advisory only, the node re-validates any
// precondition in its own event loop before acting.
func (n *Node) Snapshot() Snapshot {
	n.snapMu.Lock()
	defer n.snapMu.Unlock()
	return n.snap
}

// Number returns this node's immutable id.
func (n *Node) Number() int { return n.number }

// send delivers msg to neighbour id's mailbox, logging and swallowing a
// TransportError: the node logs and continues rather than retrying.
func (n *Node) send(to int, kind network.Kind, payload string) {
	msg := network.Message{Kind: kind, Sender: n.number, Payload: payload}
	if err := n.transport.Send(network.MailboxName(to), msg); err != nil {
		tErr := &TransportError{Mailbox: network.MailboxName(to), Err: err}
		n.log.WithError(tErr).Warn("send failed")
	}
}

func (n *Node) abort(detail string) {
	err := &InvariantViolationError{Detail: detail}
	n.log.WithError(err).Error("aborting node")
	panic(err)
}
