package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

// SimpleUI implements UI using the cobra command's output streams.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI (no-op for SimpleUI).
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayUnitResult prints one unit's outcome, including its diff when a
// rewrite occurred.
func (s *SimpleUI) DisplayUnitResult(ctx context.Context, report m.TransformReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch report.Status {
	case m.StatusRewritten.String():
		s.printf("✓ %s rewritten (%d declaration(s))\n", report.Unit, len(report.Rewritten))

		if report.Diff != "" {
			s.printf("%s\n", report.Diff)
		}
	case m.StatusFailed.String():
		s.printf("✗ %s passed through: %s\n", report.Unit, report.Failure)
	default:
		// Unchanged units stay quiet to keep large runs readable.
	}
}

// DisplaySummary prints the run totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	if err := ctx.Err(); err != nil {
		return
	}

	mode := "previewed"
	if summary.Written {
		mode = "written"
	}

	s.printf("\nUnits: %d | Rewritten: %d (%s) | Unchanged: %d | Failed: %d\n",
		summary.Units, summary.Rewritten, mode, summary.Unchanged, summary.Failed)
}

// DisplayCheckResult prints the outcome of the --check test run.
func (s *SimpleUI) DisplayCheckResult(ctx context.Context, output string, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return
	}

	if err != nil {
		s.printf("\nCheck failed:\n%s\n", output)
		return
	}

	s.printf("\nCheck passed.\n")
}

// DisplayInventory renders the list command's table.
func (s *SimpleUI) DisplayInventory(ctx context.Context, rows []m.InventoryRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(rows) == 0 {
		s.printf("No registrations or server functions found.\n")
		return nil
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Unit", "Registrations", "Server Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	totalRegistrations := 0
	totalServerFns := 0

	for _, row := range rows {
		table.Append([]string{row.Unit, fmt.Sprintf("%d", row.Registrations), fmt.Sprintf("%d", row.ServerFunctions)})

		totalRegistrations += row.Registrations
		totalServerFns += row.ServerFunctions
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Units %d", len(rows)),
		fmt.Sprintf("%d", totalRegistrations),
		fmt.Sprintf("%d", totalServerFns),
	})

	table.Render()

	s.printf("\n%s", buf.String())

	return nil
}

// DisplayReports renders a previously saved run.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.TransformReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		s.printf("No reports found.\n")
		return nil
	}

	summary := m.RunSummary{Units: len(reports)}

	for _, report := range reports {
		s.DisplayUnitResult(ctx, report)

		switch report.Status {
		case m.StatusRewritten.String():
			summary.Rewritten++
		case m.StatusFailed.String():
			summary.Failed++
		default:
			summary.Unchanged++
		}
	}

	s.DisplaySummary(ctx, summary)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
