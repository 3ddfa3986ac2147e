// Package model defines the data structures shared across the transform
// pipeline.
package model

import "go/ast"

// DefaultFactoryName is the marker factory anchoring server-function
// declarations.
const DefaultFactoryName = "serverfn.New"

// DefaultRuntimeImport is the import path of the registry package the
// generated fallback code binds to.
const DefaultRuntimeImport = "github.com/EugenEistrach/mockfn/pkg/mockfn"

// Options configures a transform session.
type Options struct {
	// Enabled gates the whole transform; a disabled session passes every
	// unit through unchanged.
	Enabled bool
	// Debug turns on per-unit trace logging.
	Debug bool
	// FactoryName is the marker factory the classifier walks toward.
	// Either a bare identifier ("NewServerFn") or a package-qualified
	// selector ("serverfn.New").
	FactoryName string
	// RuntimeImport is the import path spliced into rewritten units.
	RuntimeImport string
}

// DefaultOptions returns the session defaults.
func DefaultOptions() Options {
	return Options{
		Enabled:       true,
		FactoryName:   DefaultFactoryName,
		RuntimeImport: DefaultRuntimeImport,
	}
}

// Candidate is a named top-level binding whose initializer is up for
// classification.
type Candidate struct {
	// Name is the declared binding name, also the registry key.
	Name string
	// Init is the initializer expression tree.
	Init ast.Expr
}

// Classification is the tagged outcome of the server-function chain walk.
type Classification struct {
	// ServerFunction is true when the initializer chain is rooted at the
	// configured marker factory.
	ServerFunction bool
	// Reason records why the walk stopped, for diagnostics.
	Reason string
}

// Edit is a byte-range splice against a unit's original text. Offsets index
// the unmodified source; Start is inclusive, End exclusive.
type Edit struct {
	Start int
	End   int
	Text  string
}

// TransformStatus describes the outcome of one unit's transform.
type TransformStatus int

const (
	// StatusUnchanged means no rewrite occurred; downstream consumers keep
	// the original text.
	StatusUnchanged TransformStatus = iota
	// StatusRewritten means Output carries replacement text.
	StatusRewritten
	// StatusFailed means the unit could not be processed and was passed
	// through unchanged.
	StatusFailed
)

// String returns the report label for the status.
func (s TransformStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusRewritten:
		return "rewritten"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TransformResult is what the per-unit hook hands back: pass-through or
// replacement text. Failure details ride along for reporting but never abort
// the caller.
type TransformResult struct {
	Status TransformStatus
	// Output is the rewritten source; nil unless Status is StatusRewritten.
	Output []byte
	// ScannedNames are the registration targets discovered in this unit.
	ScannedNames []string
	// Rewritten are the declarations replaced in this unit.
	Rewritten []string
	// Failure holds the recovered processing error for StatusFailed.
	Failure error
}
