package domain

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

// registerCallName is the registration marker the scanner looks for, matched
// against both bare calls (dot imports, local aliases) and selector calls
// under any package qualifier.
const registerCallName = "RegisterMock"

// scanRegistrations finds RegisterMock call sites in file whose first
// argument is a plain identifier. Each match is recorded on the session; for
// two-argument calls an edit is produced that appends the identifier's name
// as a literal third argument, so the runtime key no longer depends on the
// reference's local spelling.
//
// Calls whose first argument is anything but a plain identifier (member
// expressions in particular) are out of scope and left untouched.
func scanRegistrations(goFile adapter.GoFileAdapter, fset *token.FileSet, file *ast.File, session *Session) ([]string, []m.Edit, error) {
	var (
		names []string
		edits []m.Edit
	)

	var walkErr error

	ast.Inspect(file, func(n ast.Node) bool {
		if walkErr != nil {
			return false
		}

		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		if !isRegisterCall(call) || len(call.Args) < 2 {
			return true
		}

		target, ok := call.Args[0].(*ast.Ident)
		if !ok {
			return true
		}

		names = append(names, target.Name)
		session.MarkMocked(target.Name)

		// Only inject when the author-written two-argument form is
		// present; a previous transform already carries the key.
		if len(call.Args) == 2 {
			offset, ok := goFile.Offset(fset, call.Rparen)
			if !ok {
				walkErr = fmt.Errorf("unresolvable call position for %s", target.Name)
				return false
			}

			edits = append(edits, m.Edit{
				Start: offset,
				End:   offset,
				Text:  fmt.Sprintf(", %q", target.Name),
			})
		}

		return true
	})

	return names, edits, walkErr
}

// isRegisterCall matches RegisterMock whether called bare or through a
// package qualifier. The qualifier is deliberately not pinned: import
// aliasing of the runtime package must not hide registrations.
func isRegisterCall(call *ast.CallExpr) bool {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return fun.Name == registerCallName
	case *ast.SelectorExpr:
		return fun.Sel.Name == registerCallName
	default:
		return false
	}
}
