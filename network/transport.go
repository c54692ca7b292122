package network

// Envelope is a delivered message paired with the mailbox of the node that
// sent it, handed to a node's event loop by its Transport.
type Envelope struct {
	Mailbox string
	Msg     Message
}

// Transport is the out-of-core adapter between a node and the wire: it
// exposes a send primitive and a delivery callback (here, a channel) per
// ordered pair of mailboxes. Implementations must be ordered, reliable
// and lossless for non-crashed destinations; they need not, and for a
// crashed destination must not, retry — the ADVISE protocol exists
// precisely to repair what a transport drops.
type Transport interface {
	// Send delivers msg to the named mailbox. Errors are transport
	// errors: the caller logs and continues, it never retries.
	Send(mailbox string, msg Message) error

	// Inbox returns the channel on which messages addressed to `self`
	// arrive, in FIFO order per originating mailbox.
	Inbox() <-chan Envelope

	// Close releases the transport's resources. Pending sends may be
	// abandoned; Inbox is closed.
	Close() error
}
