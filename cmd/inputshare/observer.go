package main

import (
	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/session"
)

var cliLog = logging.L("cli")

// logObserver reports session status/fatal-error transitions to the
// structured logger, the only "UI" a headless CLI invocation has.
type logObserver struct{}

func (logObserver) OnStatusChanged(s session.Status) {
	cliLog.Info("status changed", "status", string(s))
}

func (logObserver) OnFatalError(reason string) {
	cliLog.Error("session ended", "reason", reason)
}
