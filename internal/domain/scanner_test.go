package domain

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

func parseUnit(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()

	fset := token.NewFileSet()

	file, err := adapter.NewLocalGoFileAdapter().Parse(fset, "unit.go", []byte(src))
	if err != nil {
		t.Fatalf("failed to parse test source: %v", err)
	}

	return fset, file
}

func newTestSession() *Session {
	return NewSession(m.DefaultOptions())
}

func TestScanRegistrations_RecordsNameAndInjectsKey(t *testing.T) {
	src := `package app_test

import "github.com/EugenEistrach/mockfn/pkg/mockfn"

func init() {
	mockfn.RegisterMock(GetUsers, fakeGetUsers)
}
`

	goFile := adapter.NewLocalGoFileAdapter()
	session := newTestSession()
	fset, file := parseUnit(t, src)

	names, edits, err := scanRegistrations(goFile, fset, file, session)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(names) != 1 || names[0] != "GetUsers" {
		t.Fatalf("expected names [GetUsers], got %v", names)
	}
	if !session.IsMocked("GetUsers") {
		t.Fatal("expected GetUsers to be marked mocked on the session")
	}

	if len(edits) != 1 {
		t.Fatalf("expected 1 injection edit, got %d", len(edits))
	}

	out := string(applyEdits([]byte(src), edits))
	if !strings.Contains(out, `RegisterMock(GetUsers, fakeGetUsers, "GetUsers")`) {
		t.Fatalf("expected injected name literal, got:\n%s", out)
	}
}

func TestScanRegistrations_BareCallMatches(t *testing.T) {
	src := `package app_test

import . "github.com/EugenEistrach/mockfn/pkg/mockfn"

func init() {
	RegisterMock(GetUsers, fakeGetUsers)
}
`

	goFile := adapter.NewLocalGoFileAdapter()
	session := newTestSession()
	fset, file := parseUnit(t, src)

	names, edits, err := scanRegistrations(goFile, fset, file, session)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(names) != 1 || len(edits) != 1 {
		t.Fatalf("expected dot-imported call to match, got names=%v edits=%d", names, len(edits))
	}
}

func TestScanRegistrations_ThreeArgCallNotReinjected(t *testing.T) {
	src := `package app_test

import "github.com/EugenEistrach/mockfn/pkg/mockfn"

func init() {
	mockfn.RegisterMock(GetUsers, fakeGetUsers, "GetUsers")
}
`

	goFile := adapter.NewLocalGoFileAdapter()
	session := newTestSession()
	fset, file := parseUnit(t, src)

	names, edits, err := scanRegistrations(goFile, fset, file, session)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(names) != 1 {
		t.Fatalf("three-argument call must still record its name, got %v", names)
	}
	if len(edits) != 0 {
		t.Fatalf("three-argument call must not receive another key, got %d edits", len(edits))
	}
}

func TestScanRegistrations_NonIdentTargetIgnored(t *testing.T) {
	src := `package app_test

import "github.com/EugenEistrach/mockfn/pkg/mockfn"

func init() {
	mockfn.RegisterMock(api.GetUsers, fakeGetUsers)
	mockfn.RegisterMock(handlers[0], fakeGetUsers)
}
`

	goFile := adapter.NewLocalGoFileAdapter()
	session := newTestSession()
	fset, file := parseUnit(t, src)

	names, edits, err := scanRegistrations(goFile, fset, file, session)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(names) != 0 || len(edits) != 0 {
		t.Fatalf("member and index targets must be ignored, got names=%v edits=%d", names, len(edits))
	}
}

func TestScanRegistrations_MultipleCallsInOneUnit(t *testing.T) {
	src := `package app_test

import "github.com/EugenEistrach/mockfn/pkg/mockfn"

func init() {
	mockfn.RegisterMock(GetUsers, fakeGetUsers)
	mockfn.RegisterMock(CreateUser, fakeCreateUser)
}
`

	goFile := adapter.NewLocalGoFileAdapter()
	session := newTestSession()
	fset, file := parseUnit(t, src)

	names, edits, err := scanRegistrations(goFile, fset, file, session)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(names) != 2 || len(edits) != 2 {
		t.Fatalf("expected both calls matched, got names=%v edits=%d", names, len(edits))
	}

	out := string(applyEdits([]byte(src), edits))
	if !strings.Contains(out, `"GetUsers")`) || !strings.Contains(out, `"CreateUser")`) {
		t.Fatalf("expected both key literals injected, got:\n%s", out)
	}
}
