// Package reset implements update mode for the daemon: the process is
// replaced by a configured command, which never returns control.
package reset

import (
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
	"libdb.so/digitglow/button"
)

// Exec replaces the running process with Command when update mode is
// entered.
type Exec struct {
	Command []string
	Logger  *slog.Logger

	// exec and exit are replaced in tests.
	exec func(argv0 string, argv []string, envv []string) error
	exit func(code int)
}

var _ button.Resetter = (*Exec)(nil)

// NewExec creates a resetter for the given command.
func NewExec(command []string, logger *slog.Logger) *Exec {
	return &Exec{
		Command: command,
		Logger:  logger,
		exec:    syscall.Exec,
		exit:    os.Exit,
	}
}

// EnterUpdateMode execs the command. If that fails, the process exits with
// status 1; it never returns.
func (e *Exec) EnterUpdateMode() {
	e.Logger.Warn("entering update mode", "command", e.Command)

	if err := e.run(); err != nil {
		e.Logger.Error("failed to enter update mode", "error", err)
	}
	e.exit(1)
}

func (e *Exec) run() error {
	if len(e.Command) == 0 {
		return errors.New("no update command")
	}

	path, err := exec.LookPath(e.Command[0])
	if err != nil {
		return errors.Wrap(err, "failed to find update command")
	}

	return errors.Wrap(e.exec(path, e.Command, os.Environ()), "exec failed")
}
