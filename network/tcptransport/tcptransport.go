// Package tcptransport is a real socket-based network.Transport, adapted
// from the teacher's network/participant/conn.go Comm type: a
// net.Listener accepting connections under a bounded semaphore, a
// newline-framed text reader per connection, and an on-demand dial-and-
// cache map for outbound connections. The teacher framed JSON messages;
// this framer carries the protocol's plain-text wire format instead, one
// message per line.
package tcptransport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"raytree/configs"
	"raytree/network"
)

// Transport listens on a local TCP address for one node's mailbox and
// dials neighbour mailboxes on demand, caching the outbound connections.
type Transport struct {
	self     string
	listener net.Listener
	inbox    chan network.Envelope

	resolve func(mailbox string) (addr string, err error)

	connMu sync.Mutex
	conns  map[string]net.Conn

	done      chan struct{}
	closeOnce sync.Once
}

var _ network.Transport = (*Transport)(nil)

// Listen starts a Transport for mailbox `self`, bound to listenAddr.
// resolve maps a destination mailbox name (e.g. "node_3") to its dial
// address; callers typically close over a static id->address table built
// from the same topology used to construct the node's neighbour list.
func Listen(self, listenAddr string, resolve func(mailbox string) (string, error)) (*Transport, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("tcptransport: resolve listen addr: %w", err)
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("tcptransport: listen: %w", err)
	}
	bounded := netutil.LimitListener(ln, configs.MaxConnectionHandler)

	t := &Transport{
		self:     self,
		listener: bounded,
		inbox:    make(chan network.Envelope, 256),
		resolve:  resolve,
		conns:    make(map[string]net.Conn),
		done:     make(chan struct{}),
	}
	go t.acceptLoop()
	return t, nil
}

func (t *Transport) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				configs.Log.WithField("mailbox", t.self).WithError(err).Warn("tcptransport: accept failed")
				return
			}
		}
		go t.handleConn(conn)
	}
}

func (t *Transport) handleConn(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				configs.Log.WithField("mailbox", t.self).WithError(err).Warn("tcptransport: read failed")
			}
			return
		}
		msg, err := network.ParseMessage(line)
		if err != nil {
			configs.Log.WithField("mailbox", t.self).WithError(err).Warn("tcptransport: dropping malformed message")
			continue
		}
		select {
		case t.inbox <- network.Envelope{Mailbox: network.MailboxName(msg.Sender), Msg: msg}:
		case <-t.done:
			return
		}
	}
}

func (t *Transport) dial(mailbox string) (net.Conn, error) {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if c, ok := t.conns[mailbox]; ok {
		return c, nil
	}
	addr, err := t.resolve(mailbox)
	if err != nil {
		return nil, fmt.Errorf("tcptransport: resolve %q: %w", mailbox, err)
	}
	conn, err := net.DialTimeout("tcp", addr, configs.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("tcptransport: dial %q: %w", mailbox, err)
	}
	t.conns[mailbox] = conn
	return conn, nil
}

func (t *Transport) Send(mailbox string, msg network.Message) error {
	conn, err := t.dial(mailbox)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(configs.SendTimeout)); err != nil {
		configs.Warn(false, err.Error())
	}
	_, err = conn.Write([]byte(msg.String() + "\n"))
	if err != nil {
		t.connMu.Lock()
		delete(t.conns, mailbox)
		t.connMu.Unlock()
		return fmt.Errorf("tcptransport: write to %q: %w", mailbox, err)
	}
	return nil
}

func (t *Transport) Inbox() <-chan network.Envelope {
	return t.inbox
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.listener.Close()
		t.connMu.Lock()
		for _, c := range t.conns {
			c.Close()
		}
		t.connMu.Unlock()
		close(t.inbox)
	})
	return nil
}
