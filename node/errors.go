package node

import "fmt"

// The four error classes the protocol engine distinguishes.

// TransportError wraps a failed send to a neighbour mailbox. It is logged
// and the affected message is abandoned; the ADVISE protocol exists to
// repair the state a dropped message would otherwise corrupt.
type TransportError struct {
	Mailbox string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error sending to %s: %v", e.Mailbox, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolViolationError is an unknown kind, malformed payload, or an
// ADVISE code outside {1..4}. Logged and discarded, never fatal.
type ProtocolViolationError struct {
	Detail string
}

func (e *ProtocolViolationError) Error() string {
	return "protocol violation: " + e.Detail
}

// DriverMisuseError is a local workload call made against a precondition
// that does not hold (e.g. QuitCriticalSection while not using). Logged
// and ignored, never fatal.
type DriverMisuseError struct {
	Detail string
}

func (e *DriverMisuseError) Error() string {
	return "driver misuse: " + e.Detail
}

// InvariantViolationError is unrecoverable: topology corruption or
// concurrent multi-node recovery produced a state the protocol's
// invariants rule out (e.g. two neighbours both answering ADVISE with
// codes in {3,4} — the holder graph would no longer be acyclic). The node
// aborts; see node.Node.abort.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Detail
}
