package adaptors

import (
	"context"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"serv00_keepalive/internal/pkg/errors"
)

// callbackTimeout bounds operator callbacks so a hung command cannot stall
// the rest of the run.
const callbackTimeout = 60 * time.Second

// ShellRunner executes operator-configured commands through the shell. The
// command string is trusted configuration; no sanitizing is done.
type ShellRunner struct {
	log *log.Logger
}

func NewShellRunner(logger *log.Logger) *ShellRunner {
	return &ShellRunner{log: logger}
}

func (r *ShellRunner) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	r.log.Debugf(`executing command: %s`, command)
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	output := string(out)

	if ctx.Err() == context.DeadlineExceeded {
		return output, errors.New(`command timed out`)
	}
	if err != nil {
		return output, errors.Wrap(err, `command failed`)
	}
	return output, nil
}
