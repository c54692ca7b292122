package configs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide structured logger. It replaces FC's hand-rolled
// DPrintf/LPrintf/TxnPrint timestamp-prefixed fmt.Printf family with a real
// structured logger, in the idiom the wider example corpus (moby) already
// depends on logrus for.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	if ShowDebugInfo {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// SetDebug toggles debug-level logging at runtime, mirroring FC's
// configs.ShowDebugInfo switch.
func SetDebug(on bool) {
	ShowDebugInfo = on
	if on {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

// NodeLog returns a field-scoped logger for a single node, used throughout
// the node package so every line is attributable without string
// concatenation (FC's convention was to hand-prefix "TXN<id>: " onto every
// format string; logrus fields replace that).
func NodeLog(number int) *logrus.Entry {
	return Log.WithField("node", number)
}

// Assert panics with msg if cond is false. Used for programmer-error
// invariants that should never fire given a correctly constructed node
// (as opposed to protocol-level invariant violations, which are reported
// as the typed InvariantViolationError in node/errors.go instead), mirroring
// FC's configs.Assert.
func Assert(cond bool, msg string) bool {
	if !cond {
		panic("[invariant violation] " + msg)
	}
	return cond
}

// Warn logs msg at warn level when cond is false and ShowWarnings is set,
// mirroring FC's configs.Warn. It never panics — warnings are for
// recoverable, expected-at-the-margin conditions such as a failed send.
func Warn(cond bool, msg string) bool {
	if !cond && ShowWarnings {
		Log.Warn(msg)
	}
	return cond
}

// CheckError panics on a non-nil error, mirroring FC's configs.CheckError.
// Reserved for invariants the caller has already established are
// programmer errors (e.g. a malformed listen address), not for protocol-
// level faults, which are handled via the typed errors in node/errors.go.
func CheckError(err error) {
	if err != nil {
		panic(err.Error())
	}
}
