package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

// recordingUI captures everything the workflow displays.
type recordingUI struct {
	started   bool
	closed    bool
	reports   []m.TransformReport
	summary   *m.RunSummary
	inventory []m.InventoryRow
	viewed    []m.TransformReport
	checkErr  error
}

func (u *recordingUI) Start(_ context.Context) error { u.started = true; return nil }
func (u *recordingUI) Close(_ context.Context)       { u.closed = true }

func (u *recordingUI) DisplayUnitResult(_ context.Context, report m.TransformReport) {
	u.reports = append(u.reports, report)
}

func (u *recordingUI) DisplaySummary(_ context.Context, summary m.RunSummary) {
	u.summary = &summary
}

func (u *recordingUI) DisplayCheckResult(_ context.Context, _ string, err error) {
	u.checkErr = err
}

func (u *recordingUI) DisplayInventory(_ context.Context, rows []m.InventoryRow) error {
	u.inventory = rows
	return nil
}

func (u *recordingUI) DisplayReports(_ context.Context, reports []m.TransformReport) error {
	u.viewed = reports
	return nil
}

// stubVerifier records whether a check ran.
type stubVerifier struct {
	called bool
	output string
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ map[m.Path][]byte) (string, error) {
	v.called = true
	return v.output, v.err
}

func writeFixtureProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	write := func(name, content string) {
		t.Helper()

		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write fixture %s: %v", name, err)
		}
	}

	write("go.mod", "module example.com/app\n\ngo 1.25.1\n")
	write("app.go", declarationUnit)
	write("app_test.go", registrationUnit)
	write("other.go", "package app\n\nfunc listUsers() {}\n")

	return root
}

func newTestWorkflow(ui *recordingUI, verifier Verifier) Workflow {
	fs := adapter.NewLocalSourceFSAdapter()
	goFile := adapter.NewLocalGoFileAdapter()

	return NewWorkflow(fs, goFile, adapter.NewReportStore(), ui, verifier)
}

func TestWorkflow_Run_PreviewLeavesDiskUntouched(t *testing.T) {
	root := writeFixtureProject(t)
	ui := &recordingUI{}
	wf := newTestWorkflow(ui, &stubVerifier{})

	err := wf.Run(context.Background(), RunArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Options: m.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !ui.started || !ui.closed {
		t.Fatal("expected UI lifecycle calls")
	}

	if ui.summary == nil || ui.summary.Rewritten != 2 || ui.summary.Unchanged != 1 {
		t.Fatalf("unexpected summary: %+v", ui.summary)
	}
	if ui.summary.Written {
		t.Fatal("preview run must not report written")
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "app.go"))
	if err != nil {
		t.Fatal(err)
	}

	if string(onDisk) != declarationUnit {
		t.Fatal("preview run must not modify files")
	}

	// The registration unit sorts before the declaration unit, so the
	// declaration is already known-mocked when its unit is processed.
	if len(ui.reports) != 3 {
		t.Fatalf("expected 3 unit reports, got %d", len(ui.reports))
	}
	if !strings.HasSuffix(ui.reports[0].Unit, "app_test.go") {
		t.Fatalf("expected test unit first, got %s", ui.reports[0].Unit)
	}

	for _, report := range ui.reports {
		if report.Status == m.StatusRewritten.String() && report.Diff == "" {
			t.Fatalf("rewritten unit %s missing its diff", report.Unit)
		}
	}
}

func TestWorkflow_Run_WriteAppliesOutputs(t *testing.T) {
	root := writeFixtureProject(t)
	ui := &recordingUI{}
	wf := newTestWorkflow(ui, &stubVerifier{})

	err := wf.Run(context.Background(), RunArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Options: m.DefaultOptions(),
		Write:   true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	decl, err := os.ReadFile(filepath.Join(root, "app.go"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(decl), `LookupMock("GetUsers")`) {
		t.Fatalf("expected rewritten declaration on disk, got:\n%s", decl)
	}

	reg, err := os.ReadFile(filepath.Join(root, "app_test.go"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(reg), `"GetUsers")`) {
		t.Fatalf("expected injected key on disk, got:\n%s", reg)
	}

	if ui.summary == nil || !ui.summary.Written {
		t.Fatal("expected summary to report written outputs")
	}
}

func TestWorkflow_Run_PersistsAndViewsReports(t *testing.T) {
	root := writeFixtureProject(t)
	reportsDir := filepath.Join(t.TempDir(), "reports")
	ui := &recordingUI{}
	wf := newTestWorkflow(ui, &stubVerifier{})

	err := wf.Run(context.Background(), RunArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Options: m.DefaultOptions(),
		Reports: m.Path(reportsDir),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := wf.View(context.Background(), ViewArgs{Reports: m.Path(reportsDir)}); err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if len(ui.viewed) != 3 {
		t.Fatalf("expected 3 persisted reports, got %d", len(ui.viewed))
	}

	// Every report carries the pre-transform fingerprint of its unit.
	for _, report := range ui.viewed {
		if len(report.Hash) != 64 {
			t.Fatalf("expected sha256 hash for %s, got %q", report.Unit, report.Hash)
		}
	}
}

func TestWorkflow_Run_CheckFailurePropagates(t *testing.T) {
	root := writeFixtureProject(t)
	ui := &recordingUI{}
	verifier := &stubVerifier{output: "FAIL example.com/app", err: os.ErrInvalid}
	wf := newTestWorkflow(ui, verifier)

	err := wf.Run(context.Background(), RunArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Options: m.DefaultOptions(),
		Check:   true,
	})
	if err == nil {
		t.Fatal("expected check failure to propagate")
	}

	if !verifier.called {
		t.Fatal("expected verifier to run")
	}
	if ui.checkErr == nil {
		t.Fatal("expected check result displayed")
	}
	if ui.summary == nil {
		t.Fatal("summary must still be displayed on check failure")
	}
}

func TestWorkflow_List_CountsAcrossUnits(t *testing.T) {
	root := writeFixtureProject(t)
	ui := &recordingUI{}
	wf := newTestWorkflow(ui, &stubVerifier{})

	err := wf.List(context.Background(), ListArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Options: m.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(ui.inventory) != 2 {
		t.Fatalf("expected rows for the registration and declaration units, got %+v", ui.inventory)
	}

	var registrations, serverFns int
	for _, row := range ui.inventory {
		registrations += row.Registrations
		serverFns += row.ServerFunctions
	}

	if registrations != 1 || serverFns != 1 {
		t.Fatalf("expected 1 registration and 1 server function, got %d/%d", registrations, serverFns)
	}
}
