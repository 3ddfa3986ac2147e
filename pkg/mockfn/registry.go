// Package mockfn holds the runtime mock registry consulted by rewritten
// server-function declarations. Test and story code registers substitute
// implementations here; the build-time transform makes the production
// declarations look them up by name.
package mockfn

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// Args carries the single argument structure passed to a server function.
type Args map[string]any

// Fn is the call shape shared by server functions and their mocks.
type Fn func(args Args) (any, error)

// InvalidNameError reports a registration attempted under an empty or
// unresolvable key.
type InvalidNameError struct {
	Detail string
}

func (e *InvalidNameError) Error() string {
	if e.Detail == "" {
		return "mockfn: registration requires a non-empty function name"
	}

	return "mockfn: invalid registration name: " + e.Detail
}

// MockNotFoundError is returned by a rewritten server function when no mock
// has been registered for it. It is a deliberate user-visible failure; the
// transform never falls back to production behavior.
type MockNotFoundError struct {
	Name string
}

func (e *MockNotFoundError) Error() string {
	return fmt.Sprintf("mockfn: no mock registered for server function %q", e.Name)
}

// Registry maps server-function names to mock implementations. A session uses
// a single instance; entries accumulate until an explicit Clear.
//
// The transform pipeline itself is strictly sequential, but the registry is
// also the runtime lookup table hit from user tests which may run in
// parallel, so access is mutex-guarded.
type Registry struct {
	mu    sync.RWMutex
	mocks map[string]Fn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{mocks: make(map[string]Fn)}
}

// Register stores impl under name, overwriting any previous entry. An empty
// name is rejected with InvalidNameError rather than silently registered
// under a fallback key.
func (r *Registry) Register(name string, impl Fn) error {
	if name == "" {
		return &InvalidNameError{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mocks == nil {
		r.mocks = make(map[string]Fn)
	}

	r.mocks[name] = impl

	return nil
}

// Lookup returns the current mock for name, if any. It never fails.
func (r *Registry) Lookup(name string) (Fn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, ok := r.mocks[name]

	return impl, ok
}

// Has reports whether a mock is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Clear removes every entry. There is no partial clear.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mocks = make(map[string]Fn)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, created on first use. Rewritten
// declarations and the package-level registration helpers share it.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})

	return defaultRegistry
}

// RegisterMock registers impl as the mock for target in the default registry.
//
// Human authors call it with two arguments; the build-time transform appends
// the target's declared name as an explicit third argument so the key no
// longer depends on runtime function metadata (which breaks under import
// aliasing). Without the injected name the key is derived, best effort, from
// the target's symbol name.
func RegisterMock(target Fn, impl Fn, name ...string) error {
	key := ""
	if len(name) > 0 {
		key = name[0]
	} else {
		key = funcName(target)
	}

	return Default().Register(key, impl)
}

// LookupMock returns the mock registered under name in the default registry.
func LookupMock(name string) (Fn, bool) {
	return Default().Lookup(name)
}

// HasMock reports whether name has a mock in the default registry.
func HasMock(name string) bool {
	return Default().Has(name)
}

// ClearMocks removes every mock from the default registry.
func ClearMocks() {
	Default().Clear()
}

// funcName derives a registration key from the target's symbol name. Returns
// "" for nil targets and compiler-generated names (closures, rewritten
// declarations), which Register rejects.
func funcName(target Fn) string {
	if target == nil {
		return ""
	}

	rf := runtime.FuncForPC(reflect.ValueOf(target).Pointer())
	if rf == nil {
		return ""
	}

	full := rf.Name()
	if idx := strings.LastIndex(full, "."); idx >= 0 {
		full = full[idx+1:]
	}

	full = strings.TrimSuffix(full, "-fm")
	if strings.HasPrefix(full, "func") || strings.Contains(full, "glob") {
		return ""
	}

	return full
}
