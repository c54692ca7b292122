package node

import (
	"strconv"

	"raytree/network"
)

// Bootstrap sends the initial INITIALIZE orientation from node 0. Exactly
// one node in a tree — conventionally id 0 — should call this once,
// before any traffic flows; every other node discovers its holder from
// the INITIALIZE it receives. It is routed through the same
// single-consumer event queue as every other state transition.
func (n *Node) Bootstrap() {
	reply := make(chan error, 1)
	n.events <- event{driver: driverBootstrap, reply: reply}
	<-reply
}

func (n *Node) handleMessage(msg network.Message) {
	// Any message other than ADVISE arriving while recovering is
	// discarded silently; a node mid-recovery has no valid protocol state
	// to react with until its own ADVISE reduction completes.
	if n.recovering && msg.Kind != network.Advise {
		n.log.WithField("kind", msg.Kind).WithField("from", msg.Sender).
			Debug("discarding message while recovering")
		return
	}

	if !n.neighborSet.Contains(msg.Sender) {
		err := &ProtocolViolationError{Detail: "message from non-neighbour " + strconv.Itoa(msg.Sender)}
		n.log.WithError(err).Warn("dropping message")
		return
	}

	switch msg.Kind {
	case network.Initialize:
		n.receiveInitialize(msg.Sender)
	case network.Request:
		n.receiveRequest(msg.Sender)
	case network.Privilege:
		n.receivePrivilege()
	case network.Restart:
		n.receiveRestart(msg.Sender)
	case network.Advise:
		n.receiveAdvise(msg.Sender, msg.Payload)
	default:
		err := &ProtocolViolationError{Detail: "unknown kind " + string(msg.Kind)}
		n.log.WithError(err).Warn("dropping message")
	}
}

func (n *Node) doBootstrap() {
	if n.number != 0 {
		n.log.Debug("Bootstrap called on non-root node; ignored")
		return
	}
	n.holder = Self
	for _, nb := range n.neighborList {
		n.send(nb, network.Initialize, "")
	}
}

// receiveInitialize orients toward the sender, resets transient state,
// and forwards to every other neighbour so the orientation propagates
// outward from node 0.
func (n *Node) receiveInitialize(sender int) {
	n.holder = sender
	n.requestQ = n.requestQ[:0]
	n.using = false
	n.asked = false
	for _, nb := range n.neighborList {
		if nb != sender {
			n.send(nb, network.Initialize, "")
		}
	}
}

// assignPrivilege is Raymond's assign_privilege(). Precondition: not
// recovering, holder == Self, not using, request_Q non-empty.
func (n *Node) assignPrivilege() {
	if n.recovering || n.holder != Self || n.using || len(n.requestQ) == 0 {
		return
	}
	r := n.requestQ[0]
	n.requestQ = n.requestQ[1:]
	n.asked = false
	if r == n.number {
		n.using = true
		n.iasked = false
		n.cancelQuitTimer()
		n.log.Info("entering critical section")
	} else {
		n.holder = r
		n.send(r, network.Privilege, "")
	}
}

// makeRequest is Raymond's make_request(). Precondition: not recovering,
// holder != Self, request_Q non-empty, asked == false.
func (n *Node) makeRequest() {
	if n.recovering || n.holder == Self || len(n.requestQ) == 0 || n.asked {
		return
	}
	n.send(n.holder, network.Request, "")
	n.asked = true
}

func (n *Node) receiveRequest(sender int) {
	n.enqueueRequest(sender)
	n.assignPrivilege()
	n.makeRequest()
}

func (n *Node) receivePrivilege() {
	n.holder = Self
	n.assignPrivilege()
	n.makeRequest()
}

// enqueueRequest appends id to request_Q, never inserting a duplicate.
// A duplicate append is itself a sign of driver or protocol misuse (the
// local case is guarded in workload.go; the remote case — a neighbour
// re-sending a REQUEST we already queued — is tolerated here by simply
// not re-adding it, since FIFO position is unaffected either way).
func (n *Node) enqueueRequest(id int) {
	for _, q := range n.requestQ {
		if q == id {
			return
		}
	}
	n.requestQ = append(n.requestQ, id)
}
