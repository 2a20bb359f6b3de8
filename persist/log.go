// Package persist hosts the core's logging facility. Wallet-file
// persistence itself is an external collaborator (spec §1); this package
// only carries the ambient logging stack every subsystem threads through,
// grounded on the logrus usage rivine's own tooling uses
// (doc/examples/erc20_monitor/main.go) rather than the standard library
// log package.
package persist

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a per-subsystem leveled logger, tagged with its subsystem name.
// The node client, the Wallet and each scheduler Metronome hold one; the
// block processor, subwallet store and transfer engine do not log. Use
// follows the taxonomy in
// spec §7: validation errors are never logged (they're returned), I/O
// failures log at Info or Warning, invariant violations are fatal and
// handled by build.Critical instead of the logger.
type Logger struct {
	*logrus.Entry
}

// NewLogger creates a Logger writing to w, tagged with subsystem.
func NewLogger(w io.Writer, subsystem string) *Logger {
	base := logrus.New()
	base.Out = w
	base.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return &Logger{Entry: base.WithField("subsystem", subsystem)}
}

// NewNopLogger creates a Logger that discards everything it is given; used
// as the zero-configuration default so subcomponents never need a nil
// check before logging.
func NewNopLogger(subsystem string) *Logger {
	return NewLogger(io.Discard, subsystem)
}

// NewStdLogger creates a Logger writing to stderr, tagged with subsystem.
func NewStdLogger(subsystem string) *Logger {
	return NewLogger(os.Stderr, subsystem)
}
