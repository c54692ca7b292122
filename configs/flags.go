// Package configs carries the ambient concerns shared by every other
// package in this module: debug toggles, structured logging, assertions,
// and the small set of runtime-tunable parameters the protocol engine and
// its transports read at startup.
package configs

import "time"

// Debugging / logging toggles.
var (
	ShowDebugInfo = false
	ShowWarnings  = true
	LogToFile     = false
)

// Protocol timing parameters.
var (
	// QuiescenceInterval is how long crash() sleeps before broadcasting
	// RESTART: long enough that every message addressed to the crashed
	// node has either been delivered-and-discarded or is guaranteed
	// absent.
	QuiescenceInterval = 200 * time.Millisecond

	// MaxConnectionHandler bounds concurrently accepted inbound TCP
	// connections per node in network/tcptransport.
	MaxConnectionHandler = 16

	// DialTimeout bounds how long a transport waits to establish an
	// outbound connection to a neighbour mailbox.
	DialTimeout = 2 * time.Second

	// SendTimeout bounds a single message write.
	SendTimeout = time.Second
)
