package node

import (
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"raytree/network"
)

// doCrash implements the Chang-Singhal/Naimi-Tréhel crash(): reset
// protocol state, sleep the fixed quiescence interval (the event loop
// legitimately blocks here; nothing else can be processed for this node
// meanwhile, by design), then broadcast RESTART to every neighbour.
func (n *Node) doCrash() {
	n.log.Warn("crash: resetting protocol state")
	n.cancelQuitTimer()

	n.holder = Unknown
	n.using = false
	n.asked = false
	n.iasked = false
	n.requestQ = n.requestQ[:0]
	n.adviseAnswers = n.adviseAnswers[:0]
	n.recovering = true

	time.Sleep(n.quiescence)

	n.broadcastRestart()
}

// broadcastRestart fans RESTART out to every neighbour concurrently
// (mirroring the teacher's fire-and-forget goroutine broadcast in
// network/participant/msg.go's broadCastVote), aggregating per-neighbour
// send failures with a multierror instead of dropping them silently.
// A send failure here is an ordinary transport error: the affected
// neighbour simply won't contribute an ADVISE answer. Reduction runs only
// once an answer has arrived from every neighbour, so recovery does not
// complete while one is missing — recovery from concurrent crashes on the
// same edge is explicitly out of scope.
func (n *Node) broadcastRestart() {
	var g errgroup.Group
	var mu multiErrCollector
	for _, nb := range n.neighborList {
		nb := nb
		g.Go(func() error {
			msg := network.Message{Kind: network.Restart, Sender: n.number}
			if err := n.transport.Send(network.MailboxName(nb), msg); err != nil {
				mu.add(&TransportError{Mailbox: network.MailboxName(nb), Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := mu.result(); err != nil {
		n.log.WithError(err).Warn("some RESTART sends failed")
	}
}

// multiErrCollector is a tiny concurrency-safe wrapper around
// multierror.Append for goroutines that only ever report errors, never
// need to block on each other.
type multiErrCollector struct {
	mu  sync.Mutex
	err *multierror.Error
}

func (m *multiErrCollector) add(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = multierror.Append(m.err, err)
}

func (m *multiErrCollector) result() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		return nil
	}
	return m.err.ErrorOrNil()
}

// receiveRestart implements the RESTART responder table: a non-recovering
// neighbour answers RESTART with exactly one ADVISE code describing the
// relationship observed from its side of the edge.
func (n *Node) receiveRestart(sender int) {
	var code int
	switch {
	case n.holder == sender && n.asked:
		code = 1
	case n.holder == sender && !n.asked:
		code = 2
	case n.holder != sender && n.inRequestQ(sender):
		code = 4
	default: // n.holder != sender && sender not in request_Q
		code = 3
	}
	n.send(sender, network.Advise, strconv.Itoa(code))
}

func (n *Node) inRequestQ(id int) bool {
	for _, q := range n.requestQ {
		if q == id {
			return true
		}
	}
	return false
}

// receiveAdvise implements the ADVISE collector and reducer.
func (n *Node) receiveAdvise(sender int, payload string) {
	if !n.recovering {
		n.log.WithField("from", sender).Debug("discarding stray ADVISE while not recovering")
		return
	}
	code, err := strconv.Atoi(payload)
	if err != nil || code < 1 || code > 4 {
		pErr := &ProtocolViolationError{Detail: "ADVISE payload out of range: " + payload}
		n.log.WithError(pErr).Warn("dropping message")
		return
	}
	n.adviseAnswers = append(n.adviseAnswers, adviseEntry{neighbor: sender, code: code})

	if len(n.adviseAnswers) < len(n.neighborList) {
		return
	}
	n.reduceAdviseAnswers()
}

// reduceAdviseAnswers runs once every neighbour has answered RESTART with
// an ADVISE code: it derives the new holder (or Self if none claims the
// crashed node) and rebuilds request_Q from the code-2 answers.
func (n *Node) reduceAdviseAnswers() {
	var h []adviseEntry
	for _, a := range n.adviseAnswers {
		if a.code == 3 || a.code == 4 {
			h = append(h, a)
		}
	}
	// The holder graph is acyclic, so at most one neighbour can claim to
	// point at the crashed node; more than one is an invariant violation,
	// not a tie to break.
	if len(h) > 1 {
		n.abort("more than one neighbour claims to point at this node after recovery")
	}

	if len(h) == 0 {
		n.holder = Self
		n.asked = false
	} else {
		n.holder = h[0].neighbor
		n.asked = h[0].code == 4
	}

	for _, a := range n.adviseAnswers {
		if a.code == 2 {
			n.requestQ = append(n.requestQ, a.neighbor)
		}
	}

	n.recovering = false
	n.log.Info("recovery complete")
	n.assignPrivilege()
	n.makeRequest()
}
