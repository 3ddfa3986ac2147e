package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

// Verifier checks a transform by materializing it in a temporary copy of the
// project and running the project's own tests there. The working tree is
// never touched.
type Verifier interface {
	// Verify writes the rewritten outputs into a temp copy rooted at the
	// project's go.mod and runs 'go test ./...'. Returns the combined
	// test output.
	Verify(ctx context.Context, outputs map[m.Path][]byte) (string, error)
}

type verifier struct {
	fs     adapter.SourceFSAdapter
	runner adapter.TestRunnerAdapter
}

// NewVerifier constructs a Verifier backed by the provided filesystem and
// test runner adapters.
func NewVerifier(fs adapter.SourceFSAdapter, runner adapter.TestRunnerAdapter) Verifier {
	return &verifier{
		fs:     fs,
		runner: runner,
	}
}

func (v *verifier) Verify(ctx context.Context, outputs map[m.Path][]byte) (string, error) {
	projectRoot, err := v.fs.FindProjectRoot(".")
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}

	tmpDir, err := v.fs.CreateTempDir("mockfn-check-")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}

	defer func() {
		if err := v.fs.RemoveAll(tmpDir); err != nil {
			slog.Error("failed to clean up check dir", "dir", tmpDir, "error", err)
		}
	}()

	if err := v.fs.CopyDir(projectRoot, tmpDir); err != nil {
		return "", fmt.Errorf("copy project: %w", err)
	}

	for path, output := range outputs {
		rel, err := v.fs.RelPath(projectRoot, path)
		if err != nil {
			return "", fmt.Errorf("relative path for %s: %w", path, err)
		}

		target := v.fs.JoinPath(string(tmpDir), string(rel))
		if err := v.fs.WriteFile(target, output, 0o644); err != nil {
			return "", fmt.Errorf("write transformed %s: %w", rel, err)
		}
	}

	slog.Debug("running check", "dir", tmpDir, "rewritten", len(outputs))

	return v.runner.RunTests(ctx, string(tmpDir))
}
