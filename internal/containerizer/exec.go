package containerizer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"apptest/pkg/logging"
)

// For mocking in tests
var execCommand = exec.CommandContext

// runCommand executes name with args in dir, forwarding both output streams to
// the logger line by line.
func runCommand(ctx context.Context, dir, subsystem, name string, args ...string) error {
	cmd := execCommand(ctx, name, args...)
	cmd.Dir = dir

	stdout := logging.LineWriter(logging.LevelInfo, subsystem)
	stderr := logging.LineWriter(logging.LevelInfo, subsystem)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logging.Debug(subsystem, "Executing: %s %s", name, strings.Join(args, " "))
	err := cmd.Run()
	stdout.Close()
	stderr.Close()

	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: describe(name, args), Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to execute '%s': %w", describe(name, args), err)
}

// describe names a command by its binary and first non-flag argument, e.g. "docker run".
func describe(name string, args []string) string {
	parts := []string{name}
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			parts = append(parts, a)
			break
		}
	}
	return strings.Join(parts, " ")
}
