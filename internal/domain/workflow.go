package domain

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	"github.com/EugenEistrach/mockfn/internal/controller"
	m "github.com/EugenEistrach/mockfn/internal/model"
	"github.com/EugenEistrach/mockfn/pkg/spill"
)

// RunArgs configures a transform run.
type RunArgs struct {
	Paths   []m.Path
	Exclude []string
	Options m.Options
	// Write applies rewrites in place instead only of previewing diffs.
	Write bool
	// Check verifies the transformed tree by running its tests in a
	// temporary copy of the project.
	Check bool
	// Reports is the directory transform reports are saved under; empty
	// disables persistence.
	Reports m.Path
}

// ListArgs configures the inventory listing.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Options m.Options
}

// ViewArgs configures report redisplay.
type ViewArgs struct {
	Reports m.Path
}

// Workflow ties discovery, the per-unit transform hook and the UI together.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	fs       adapter.SourceFSAdapter
	goFile   adapter.GoFileAdapter
	reports  adapter.ReportStore
	ui       controller.UI
	verifier Verifier
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fs adapter.SourceFSAdapter,
	goFile adapter.GoFileAdapter,
	reports adapter.ReportStore,
	ui controller.UI,
	verifier Verifier,
) Workflow {
	return &workflow{
		fs:       fs,
		goFile:   goFile,
		reports:  reports,
		ui:       ui,
		verifier: verifier,
	}
}

// Run transforms every discovered unit sequentially with a single session.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	sources, err := w.discover(ctx, args.Paths, args.Exclude)
	if err != nil {
		return err
	}

	if err := w.ui.Start(ctx); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	log, err := spill.New[m.TransformReport]()
	if err != nil {
		return fmt.Errorf("failed to create report log: %w", err)
	}

	defer func() {
		if err := log.Close(); err != nil {
			slog.Error("failed to close report log", "error", err)
		}
	}()

	transformer := NewTransformer(w.goFile, args.Options)
	summary := m.RunSummary{Units: len(sources), Written: args.Write}
	outputs := make(map[m.Path][]byte)

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, output := w.transformUnit(ctx, transformer, source)

		switch report.Status {
		case m.StatusRewritten.String():
			summary.Rewritten++
			outputs[source.Origin.FullPath] = output
		case m.StatusFailed.String():
			summary.Failed++
		default:
			summary.Unchanged++
		}

		if err := log.Append(report); err != nil {
			return err
		}

		w.ui.DisplayUnitResult(ctx, report)
	}

	if args.Write {
		if err := w.applyOutputs(outputs); err != nil {
			return err
		}
	}

	if args.Reports != "" {
		if err := w.persistReports(log, args.Reports); err != nil {
			return err
		}
	}

	if args.Check {
		output, err := w.verifier.Verify(ctx, outputs)
		w.ui.DisplayCheckResult(ctx, output, err)

		if err != nil {
			w.ui.DisplaySummary(ctx, summary)
			return fmt.Errorf("check failed: %w", err)
		}
	}

	w.ui.DisplaySummary(ctx, summary)

	return nil
}

// discover returns the source units for the given patterns, ordered so that
// test units come before the rest. Registrations live in test and story
// files; scanning them first guarantees a registration is observed before the
// declaration it targets is classified.
func (w *workflow) discover(ctx context.Context, paths []m.Path, exclude []string) ([]m.Source, error) {
	sources, err := w.fs.Get(ctx, paths, exclude...)
	if err != nil {
		return nil, fmt.Errorf("source discovery: %w", err)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		ti := strings.HasSuffix(string(sources[i].Origin.FullPath), "_test.go")
		tj := strings.HasSuffix(string(sources[j].Origin.FullPath), "_test.go")

		if ti != tj {
			return ti
		}

		return sources[i].Origin.FullPath < sources[j].Origin.FullPath
	})

	slog.Debug("discovered sources", "count", len(sources))

	return sources, nil
}

func (w *workflow) transformUnit(ctx context.Context, transformer Transformer, source m.Source) (m.TransformReport, []byte) {
	unit := string(source.Origin.ShortPath)

	src, err := w.fs.ReadFile(source.Origin.FullPath)
	if err != nil {
		slog.Error("failed to read unit", "unit", unit, "error", err)

		return m.TransformReport{
			Unit:    unit,
			Status:  m.StatusFailed.String(),
			Hash:    source.Origin.Hash,
			Failure: err.Error(),
		}, nil
	}

	result := transformer.Transform(ctx, unit, src)

	report := m.TransformReport{
		Unit:        unit,
		Status:      result.Status.String(),
		Hash:        source.Origin.Hash,
		MockedNames: result.ScannedNames,
		Rewritten:   result.Rewritten,
	}

	if result.Failure != nil {
		report.Failure = result.Failure.Error()
	}

	if result.Status != m.StatusRewritten {
		return report, nil
	}

	report.Diff = unifiedDiff(unit, src, result.Output)

	return report, result.Output
}

func (w *workflow) applyOutputs(outputs map[m.Path][]byte) error {
	for path, output := range outputs {
		if err := w.fs.WriteFile(path, output, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

func (w *workflow) persistReports(log spill.Spill[m.TransformReport], dir m.Path) error {
	reports := make([]m.TransformReport, 0, log.Len())

	if err := log.Range(func(_ uint64, report m.TransformReport) error {
		reports = append(reports, report)
		return nil
	}); err != nil {
		return err
	}

	return w.reports.SaveReports(dir, reports)
}

// List prints an inventory of registrations and server functions per unit
// without rewriting anything.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	sources, err := w.discover(ctx, args.Paths, args.Exclude)
	if err != nil {
		return err
	}

	rows, err := w.inventory(ctx, sources, args.Options)
	if err != nil {
		return err
	}

	return w.ui.DisplayInventory(ctx, rows)
}

// inventory scans every unit with a throwaway session and counts
// registrations and positively classified declarations per unit.
func (w *workflow) inventory(ctx context.Context, sources []m.Source, opts m.Options) ([]m.InventoryRow, error) {
	session := NewSession(opts)

	type parsed struct {
		unit          string
		registrations int
		file          *ast.File
	}

	units := make([]parsed, 0, len(sources))

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit := string(source.Origin.ShortPath)

		src, err := w.fs.ReadFile(source.Origin.FullPath)
		if err != nil {
			slog.Error("failed to read unit", "unit", unit, "error", err)
			continue
		}

		fset := token.NewFileSet()

		file, err := w.goFile.Parse(fset, unit, src)
		if err != nil {
			slog.Error("failed to parse unit", "unit", unit, "error", err)
			continue
		}

		names, _, err := scanRegistrations(w.goFile, fset, file, session)
		if err != nil {
			slog.Error("failed to scan unit", "unit", unit, "error", err)
			continue
		}

		units = append(units, parsed{
			unit:          unit,
			registrations: len(names),
			file:          file,
		})
	}

	// Candidates are gathered after every unit has been scanned, so a
	// registration in a late unit still counts declarations in an early one.
	rows := make([]m.InventoryRow, 0, len(units))

	for _, p := range units {
		serverFns := 0

		for _, candidate := range collectCandidates(p.file, session) {
			if classifyInitializer(candidate.Init, opts.FactoryName).ServerFunction {
				serverFns++
			}
		}

		if p.registrations == 0 && serverFns == 0 {
			continue
		}

		rows = append(rows, m.InventoryRow{
			Unit:            p.unit,
			Registrations:   p.registrations,
			ServerFunctions: serverFns,
		})
	}

	return rows, nil
}

// View redisplays a previously saved run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.reports.LoadReports(args.Reports)
	if err != nil {
		return err
	}

	return w.ui.DisplayReports(ctx, reports)
}

func unifiedDiff(unit string, before, after []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: unit,
		ToFile:   unit + " (rewritten)",
		Context:  3,
	})
	if err != nil {
		slog.Error("failed to build diff", "unit", unit, "error", err)
		return ""
	}

	return diff
}
