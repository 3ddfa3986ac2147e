// Package controller provides output adapters for displaying transform
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

// UI defines the interface for displaying a transform run. Implementations
// can use different output methods (plain text, TUI).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	DisplayUnitResult(ctx context.Context, report m.TransformReport)
	DisplaySummary(ctx context.Context, summary m.RunSummary)
	DisplayCheckResult(ctx context.Context, output string, err error)
	DisplayInventory(ctx context.Context, rows []m.InventoryRow) error
	DisplayReports(ctx context.Context, reports []m.TransformReport) error
}

// NewUI selects the UI implementation for the current terminal.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
