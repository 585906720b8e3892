// Command inputshare is the session controller's command-line front end:
// `send` and `receive` run the two symmetric halves of one handoff session
// (§4.9), and `mock-receive` is the development-only peer stub §6 names.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "inputshare",
	Short:         "Share one mouse and keyboard across two hosts on the LAN",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// argError marks a flag/argument validation failure, mapped to exit code 2
// per §6 ("Exit codes: 0 on clean termination, 2 on argument error,
// non-zero on I/O or handshake failure").
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

func argErrorf(format string, a ...any) error {
	return &argError{err: fmt.Errorf(format, a...)}
}

func init() {
	rootCmd.AddCommand(sendCmd, receiveCmd, mockReceiveCmd)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &argError{err: err}
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ae *argError
		if errors.As(err, &ae) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
