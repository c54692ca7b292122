// Package memtransport is an in-process implementation of network.Transport
// used by tests and the demo harness (cmd/raytreesim). It is grounded on
// the connection cache in the teacher's network/participant/conn.go —
// replacing the TCP dial-and-cache map with a shared in-memory hub of
// per-mailbox channels, since tests have no need for real sockets.
package memtransport

import (
	"fmt"
	"sync"

	"raytree/configs"
	"raytree/network"
)

// Hub is a shared in-process switchboard: every node registered on the
// same Hub can reach every other by mailbox name. A Hub stands in for the
// reliable FIFO point-to-point channel per ordered pair of neighbours that
// a production transport would provide over real sockets.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[string]*endpoint
}

type endpoint struct {
	inbox chan network.Envelope
}

// NewHub creates an empty switchboard.
func NewHub() *Hub {
	return &Hub{endpoints: make(map[string]*endpoint)}
}

// Register creates and returns a Transport bound to mailbox on this hub.
// The inbox channel is buffered to 256 messages, ample for the scenarios
// this module's tests drive.
func (h *Hub) Register(mailbox string) *Transport {
	h.mu.Lock()
	defer h.mu.Unlock()
	ep := &endpoint{inbox: make(chan network.Envelope, 256)}
	h.endpoints[mailbox] = ep
	return &Transport{hub: h, self: mailbox, inbox: ep.inbox}
}

func (h *Hub) deliver(mailbox string, env network.Envelope) error {
	h.mu.RLock()
	ep, ok := h.endpoints[mailbox]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("memtransport: no such mailbox %q", mailbox)
	}
	select {
	case ep.inbox <- env:
		return nil
	default:
		return fmt.Errorf("memtransport: mailbox %q is full", mailbox)
	}
}

// Transport is a Hub-backed network.Transport for a single mailbox.
type Transport struct {
	hub   *Hub
	self  string
	inbox chan network.Envelope

	closeOnce sync.Once
}

var _ network.Transport = (*Transport)(nil)

func (t *Transport) Send(mailbox string, msg network.Message) error {
	err := t.hub.deliver(mailbox, network.Envelope{Mailbox: t.self, Msg: msg})
	if err != nil {
		configs.Warn(false, err.Error())
	}
	return err
}

func (t *Transport) Inbox() <-chan network.Envelope {
	return t.inbox
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.hub.mu.Lock()
		delete(t.hub.endpoints, t.self)
		t.hub.mu.Unlock()
		close(t.inbox)
	})
	return nil
}
