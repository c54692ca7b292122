package node

import "time"

// handleDriverEvent processes one driver-originated event inside the
// single-consumer loop: driver calls share the node's one inbound queue
// with delivered messages and timer expirations.
func (n *Node) handleDriverEvent(ev event) {
	switch ev.driver {
	case driverBootstrap:
		n.doBootstrap()
		ev.reply <- nil
	case driverEnterCS:
		ev.reply <- n.doEnterCriticalSection(ev.duration)
	case driverQuitCS:
		ev.reply <- n.doQuitCriticalSection()
	case driverRestart:
		n.doCrash()
		if ev.reply != nil {
			ev.reply <- nil
		}
	}
}

// EnterCriticalSection is the local enter_cs() entry point. autoQuit, if
// non-zero, schedules QuitCriticalSection that many units after using
// becomes true — a convenience callback carried over from the original
// Python controller's Timer(3, quit_critical_section). Pass 0 to manage
// the quit yourself.
//
// The driver-side guard rejects the call outright if iasked || recovering
// || using; that check is advisory (snapshot-based) here, and
// authoritatively re-validated inside the event loop before any state
// changes, so a race between the snapshot read and the loop processing
// this event can never double-enqueue Self.
func (n *Node) EnterCriticalSection(autoQuit time.Duration) error {
	snap := n.Snapshot()
	if snap.IAsked || snap.Recovering || snap.Using {
		err := &DriverMisuseError{Detail: "enter_critical_section rejected: iasked || recovering || using"}
		n.log.WithError(err).Debug("driver misuse")
		return err
	}
	reply := make(chan error, 1)
	n.events <- event{driver: driverEnterCS, reply: reply, duration: autoQuit}
	return <-reply
}

func (n *Node) doEnterCriticalSection(autoQuit time.Duration) error {
	// Authoritative re-check: the snapshot read in EnterCriticalSection
	// could be stale by the time this runs.
	if n.iasked || n.recovering || n.using {
		err := &DriverMisuseError{Detail: "enter_critical_section rejected on re-check: iasked || recovering || using"}
		n.log.WithError(err).Debug("driver misuse")
		return err
	}
	n.requestQ = append(n.requestQ, n.number)
	n.iasked = true
	n.assignPrivilege()
	n.makeRequest()
	if autoQuit > 0 {
		n.scheduleQuit(autoQuit)
	}
	return nil
}

// QuitCriticalSection is the local quit_cs() entry point. Precondition:
// using == true.
func (n *Node) QuitCriticalSection() error {
	reply := make(chan error, 1)
	n.events <- event{driver: driverQuitCS, reply: reply}
	return <-reply
}

func (n *Node) doQuitCriticalSection() error {
	if !n.using {
		err := &DriverMisuseError{Detail: "quit_critical_section rejected: using == false"}
		n.log.WithError(err).Debug("driver misuse")
		return err
	}
	n.cancelQuitTimer()
	n.using = false
	n.log.Info("quitting critical section")
	n.assignPrivilege()
	n.makeRequest()
	return nil
}

// Restart triggers the crash/recovery sequence. It does not wait for
// crash() to finish — crash() includes the fixed quiescence sleep and the
// RESTART broadcast, and the point of a driver call is to inject the
// event, not to block the caller for the duration of recovery.
func (n *Node) Restart() {
	n.events <- event{driver: driverRestart, reply: nil}
}

func (n *Node) scheduleQuit(after time.Duration) {
	n.cancelQuitTimer()
	n.quitTimer = time.AfterFunc(after, func() {
		// Fire-and-forget from the timer's own goroutine, same path an
		// external driver call would take; doQuitCriticalSection silently
		// no-ops if the node has since quit, crashed, or been closed.
		reply := make(chan error, 1)
		select {
		case n.events <- event{driver: driverQuitCS, reply: reply}:
			<-reply
		case <-n.done:
		}
	})
}

func (n *Node) cancelQuitTimer() {
	if n.quitTimer != nil {
		n.quitTimer.Stop()
		n.quitTimer = nil
	}
}
