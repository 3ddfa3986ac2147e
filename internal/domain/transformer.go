package domain

import (
	"context"
	"fmt"
	"go/token"
	"log/slog"
	"sort"
	"strings"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

// Transformer is the per-unit transform hook. It never lets a processing
// failure escape: a unit that cannot be parsed or traversed is logged and
// passed through unchanged, so one malformed file never aborts a build.
type Transformer interface {
	// Transform processes a single source unit and returns either
	// replacement text or an unchanged/failed pass-through signal.
	Transform(ctx context.Context, unit string, src []byte) m.TransformResult

	// Session exposes the session state accumulated across units.
	Session() *Session
}

type transformer struct {
	goFile  adapter.GoFileAdapter
	session *Session
}

// NewTransformer creates a Transformer bound to a fresh session with the
// given options.
func NewTransformer(goFile adapter.GoFileAdapter, opts m.Options) Transformer {
	return &transformer{
		goFile:  goFile,
		session: NewSession(opts),
	}
}

func (t *transformer) Session() *Session {
	return t.session
}

func (t *transformer) Transform(ctx context.Context, unit string, src []byte) (result m.TransformResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("transform panic, passing unit through", "unit", unit, "panic", r)
			result = m.TransformResult{
				Status:  m.StatusFailed,
				Failure: fmt.Errorf("transform panic: %v", r),
			}
		}
	}()

	opts := t.session.Options()

	if !opts.Enabled {
		return m.TransformResult{Status: m.StatusUnchanged}
	}

	if skip, reason := skipUnit(unit); skip {
		if opts.Debug {
			slog.Debug("skipping unit", "unit", unit, "reason", reason)
		}

		return m.TransformResult{Status: m.StatusUnchanged}
	}

	if err := ctx.Err(); err != nil {
		return m.TransformResult{Status: m.StatusFailed, Failure: err}
	}

	fset := token.NewFileSet()

	file, err := t.goFile.Parse(fset, unit, src)
	if err != nil {
		slog.Error("parse failure, passing unit through", "unit", unit, "error", err)
		return m.TransformResult{Status: m.StatusFailed, Failure: err}
	}

	names, scanEdits, err := scanRegistrations(t.goFile, fset, file, t.session)
	if err != nil {
		slog.Error("scan failure, passing unit through", "unit", unit, "error", err)
		return m.TransformResult{Status: m.StatusFailed, Failure: err}
	}

	if opts.Debug && len(names) > 0 {
		slog.Debug("registrations found", "unit", unit, "names", names)
	}

	rewriteEdits, rewritten, err := rewriteDeclarations(t.goFile, fset, file, t.session)
	if err != nil {
		slog.Error("rewrite failure, passing unit through", "unit", unit, "error", err)
		return m.TransformResult{Status: m.StatusFailed, Failure: err}
	}

	edits := append(scanEdits, rewriteEdits...)
	if len(edits) == 0 {
		return m.TransformResult{Status: m.StatusUnchanged, ScannedNames: names}
	}

	output := t.goFile.Render(applyEdits(src, edits))

	if opts.Debug {
		slog.Debug("unit rewritten", "unit", unit, "registrations", len(scanEdits), "declarations", rewritten)
	}

	return m.TransformResult{
		Status:       m.StatusRewritten,
		Output:       output,
		ScannedNames: names,
		Rewritten:    rewritten,
	}
}

// skipUnit applies the orchestrator's unit filters: only project .go sources
// are eligible; vendor and dependency trees pass through untouched.
func skipUnit(unit string) (bool, string) {
	if !strings.HasSuffix(unit, ".go") {
		return true, "unrecognized suffix"
	}

	normalized := strings.ReplaceAll(unit, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		switch segment {
		case "vendor", "node_modules", ".git", "testdata":
			return true, "dependency tree"
		}
	}

	return false, ""
}

// applyEdits splices the edits into src. Edits index the original bytes, so
// they are applied back to front to keep earlier offsets valid.
func applyEdits(src []byte, edits []m.Edit) []byte {
	sorted := make([]m.Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := make([]byte, len(src))
	copy(out, src)

	for _, edit := range sorted {
		var next []byte
		next = append(next, out[:edit.Start]...)
		next = append(next, edit.Text...)
		next = append(next, out[edit.End:]...)
		out = next
	}

	return out
}

func debugSkip(name, reason string) {
	slog.Debug("declaration not rewritten", "name", name, "reason", reason)
}
