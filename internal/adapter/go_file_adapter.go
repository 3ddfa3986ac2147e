package adapter

import (
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
)

// GoFileAdapter encapsulates the structural representation of a source unit:
// text to tree, tree positions back to byte offsets, and re-rendering spliced
// text. The domain layer stays focused on the rewrite rules and treats this
// as an injected service, so tests can stub it.
type GoFileAdapter interface {
	// Parse builds an AST using the provided file set and source bytes.
	Parse(fileSet *token.FileSet, filename string, src []byte) (*ast.File, error)

	// Offset resolves a token position to a byte offset into the unit's
	// original text. Returns false for positions outside the file set.
	Offset(fileSet *token.FileSet, pos token.Pos) (int, bool)

	// Render normalizes spliced source bytes. When the bytes do not
	// gofmt cleanly the input is returned as-is.
	Render(src []byte) []byte
}

// LocalGoFileAdapter provides a concrete GoFileAdapter backed by go/parser
// and go/format.
type LocalGoFileAdapter struct{}

// NewLocalGoFileAdapter constructs a LocalGoFileAdapter.
func NewLocalGoFileAdapter() *LocalGoFileAdapter {
	return &LocalGoFileAdapter{}
}

// Parse builds an AST for the provided filename/source pair.
func (a *LocalGoFileAdapter) Parse(fileSet *token.FileSet, filename string, src []byte) (*ast.File, error) {
	return parser.ParseFile(fileSet, filename, src, parser.ParseComments)
}

// Offset resolves pos to its byte offset within the parsed unit.
func (a *LocalGoFileAdapter) Offset(fileSet *token.FileSet, pos token.Pos) (int, bool) {
	if !pos.IsValid() {
		return 0, false
	}

	file := fileSet.File(pos)
	if file == nil {
		return 0, false
	}

	return file.Offset(pos), true
}

// Render runs the spliced bytes through gofmt. Splices keep the source
// syntactically valid, so a format failure only loses normalization, not
// content.
func (a *LocalGoFileAdapter) Render(src []byte) []byte {
	formatted, err := format.Source(src)
	if err != nil {
		return src
	}

	return formatted
}
