package adapter

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// TestRunnerAdapter abstracts test execution for the --check flow, which runs
// the project's own tests against a transformed copy of the tree.
type TestRunnerAdapter interface {
	// RunTests runs 'go test ./...' in the given directory. Returns the
	// combined stdout/stderr output and any error.
	RunTests(ctx context.Context, workDir string) (output string, err error)
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
type LocalTestRunnerAdapter struct {
	timeout time.Duration
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter with a
// default 5 minute timeout.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{
		timeout: 5 * time.Minute,
	}
}

// RunTests runs the project's test suite in workDir.
func (a *LocalTestRunnerAdapter) RunTests(ctx context.Context, workDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "test", "./...")
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String() + stderr.String(), err
}
