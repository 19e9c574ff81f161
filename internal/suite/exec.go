package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout marks a subprocess that exceeded its invocation bound. A hang in
// the benchmarked process aborts the whole pipeline rather than being
// absorbed as degraded data.
var ErrTimeout = errors.New("subprocess timed out")

// DefaultRunTimeout bounds a single benchmark subprocess invocation.
const DefaultRunTimeout = 30 * time.Minute

// runCommand executes name with args, capturing combined stdout+stderr.
// It returns (output, exitCode, nil) for any process that ran to completion,
// including failures; an error is returned only when the process could not be
// started or the timeout expired.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (string, int, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if cmdCtx.Err() == context.DeadlineExceeded {
		return "", 0, fmt.Errorf("%w: %s after %s", ErrTimeout, name, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return "", 0, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return out.String(), 0, nil
}
