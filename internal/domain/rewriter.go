package domain

import (
	"fmt"
	"go/ast"
	"go/token"
	"path"
	"strconv"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

// fallbackBody is the generated initializer: look up the mock under the
// declaration's literal name, invoke it with args defaulted to an empty
// structure, or fail fast naming the missing function. The production chain
// is intentionally not kept as a fallback — silent production behavior in a
// test context is the failure mode this tool exists to remove.
const fallbackBody = `func(args %[1]sArgs) (any, error) {
	impl, ok := %[1]sLookupMock(%[2]q)
	if !ok {
		return nil, &%[1]sMockNotFoundError{Name: %[2]q}
	}
	if args == nil {
		args = %[1]sArgs{}
	}
	return impl(args)
}`

// rewriteDeclarations replaces the initializer of every top-level var
// declaration that is known-mocked and classifies as a server function.
// Returns the resulting splices plus the rewritten names. When at least one
// declaration is rewritten, a single import edit for the runtime package is
// included unless the unit already imports it.
func rewriteDeclarations(goFile adapter.GoFileAdapter, fset *token.FileSet, file *ast.File, session *Session) ([]m.Edit, []string, error) {
	opts := session.Options()
	qualifier, imported := runtimeQualifier(file, opts.RuntimeImport)

	var (
		edits     []m.Edit
		rewritten []string
	)

	for _, candidate := range collectCandidates(file, session) {
		classification := classifyInitializer(candidate.Init, opts.FactoryName)
		if !classification.ServerFunction {
			if opts.Debug {
				debugSkip(candidate.Name, classification.Reason)
			}

			continue
		}

		start, okStart := goFile.Offset(fset, candidate.Init.Pos())
		end, okEnd := goFile.Offset(fset, candidate.Init.End())

		if !okStart || !okEnd {
			return nil, nil, fmt.Errorf("unresolvable initializer position for %s", candidate.Name)
		}

		edits = append(edits, m.Edit{
			Start: start,
			End:   end,
			Text:  fmt.Sprintf(fallbackBody, qualifier, candidate.Name),
		})
		rewritten = append(rewritten, candidate.Name)
	}

	if len(rewritten) > 0 {
		if !imported {
			edit, err := importEdit(goFile, fset, file, opts.RuntimeImport)
			if err != nil {
				return nil, nil, err
			}

			edits = append(edits, edit)
		}

		blank, err := factoryImportEdit(goFile, fset, file, opts.FactoryName, edits)
		if err != nil {
			return nil, nil, err
		}

		if blank != nil {
			edits = append(edits, *blank)
		}
	}

	return edits, rewritten, nil
}

// collectCandidates gathers the top-level var bindings whose names appear in
// the session's known-mocked set.
func collectCandidates(file *ast.File, session *Session) []m.Candidate {
	var candidates []m.Candidate

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}

		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}

			for i, name := range vs.Names {
				if i >= len(vs.Values) || !session.IsMocked(name.Name) {
					continue
				}

				candidates = append(candidates, m.Candidate{
					Name: name.Name,
					Init: vs.Values[i],
				})
			}
		}
	}

	return candidates
}

// runtimeQualifier determines the identifier prefix the generated code uses
// to reach the registry package. An existing import wins, honoring its alias;
// a dot import yields an empty prefix.
func runtimeQualifier(file *ast.File, runtimeImport string) (string, bool) {
	base := path.Base(runtimeImport)

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil || importPath != runtimeImport {
			continue
		}

		if imp.Name == nil {
			return base + ".", true
		}

		switch imp.Name.Name {
		case ".":
			return "", true
		case "_":
			// Blank import does not bind a name; splice a usable one.
			return base + ".", false
		default:
			return imp.Name.Name + ".", true
		}
	}

	return base + ".", false
}

// factoryImportEdit blanks the factory package import when every remaining
// use of its qualifier sits inside a replaced initializer. Replaced chains
// would otherwise leave the import unused, which Go rejects. The check is
// conservative: any identifier spelled like the qualifier outside the
// replaced spans keeps the import as-is.
func factoryImportEdit(goFile adapter.GoFileAdapter, fset *token.FileSet, file *ast.File, factoryName string, replaced []m.Edit) (*m.Edit, error) {
	qualifier, _ := splitFactoryName(factoryName)
	if qualifier == "" {
		return nil, nil
	}

	spec := findImportByQualifier(file, qualifier)
	if spec == nil {
		return nil, nil
	}

	inReplaced := func(pos token.Pos) bool {
		offset, ok := goFile.Offset(fset, pos)
		if !ok {
			return false
		}

		for _, edit := range replaced {
			if offset >= edit.Start && offset < edit.End {
				return true
			}
		}

		return false
	}

	used := false

	ast.Inspect(file, func(n ast.Node) bool {
		if used {
			return false
		}

		ident, ok := n.(*ast.Ident)
		if !ok || ident.Name != qualifier {
			return true
		}

		// The import alias itself does not count as a use.
		if spec.Name != nil && ident.Pos() == spec.Name.Pos() {
			return true
		}

		if !inReplaced(ident.Pos()) {
			used = true
		}

		return true
	})

	if used {
		return nil, nil
	}

	var start token.Pos
	if spec.Name != nil {
		start = spec.Name.Pos()
	} else {
		start = spec.Path.Pos()
	}

	offset, ok := goFile.Offset(fset, start)
	if !ok {
		return nil, fmt.Errorf("unresolvable import position for %s", qualifier)
	}

	end := offset
	if spec.Name != nil {
		aliasEnd, ok := goFile.Offset(fset, spec.Name.End())
		if !ok {
			return nil, fmt.Errorf("unresolvable import position for %s", qualifier)
		}

		end = aliasEnd
	}

	text := "_"
	if spec.Name == nil {
		text = "_ "
	}

	return &m.Edit{Start: offset, End: end, Text: text}, nil
}

// findImportByQualifier resolves the import spec an identifier qualifier
// refers to, by alias first and by path basename otherwise.
func findImportByQualifier(file *ast.File, qualifier string) *ast.ImportSpec {
	for _, imp := range file.Imports {
		if imp.Name != nil {
			if imp.Name.Name == qualifier {
				return imp
			}

			continue
		}

		importPath, err := strconv.Unquote(imp.Path.Value)
		if err == nil && path.Base(importPath) == qualifier {
			return imp
		}
	}

	return nil
}

// importEdit splices an import of the runtime package directly after the
// package clause, which is valid ahead of any existing declarations.
func importEdit(goFile adapter.GoFileAdapter, fset *token.FileSet, file *ast.File, runtimeImport string) (m.Edit, error) {
	offset, ok := goFile.Offset(fset, file.Name.End())
	if !ok {
		return m.Edit{}, fmt.Errorf("unresolvable package clause position")
	}

	return m.Edit{
		Start: offset,
		End:   offset,
		Text:  fmt.Sprintf("\n\nimport %q", runtimeImport),
	}, nil
}
