package adaptors

import "context"

// CommandRunner executes an operator-configured shell command and returns
// its captured output.
type CommandRunner interface {
	Run(ctx context.Context, command string) (output string, err error)
}
