package mockfn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()

	impl := Fn(func(_ Args) (any, error) { return "mocked", nil })
	require.NoError(t, r.Register("GetUsers", impl))

	got, ok := r.Lookup("GetUsers")
	require.True(t, ok)
	assert.True(t, r.Has("GetUsers"))

	out, err := got(nil)
	require.NoError(t, err)
	assert.Equal(t, "mocked", out)
}

func TestRegistry_OverwriteLastWins(t *testing.T) {
	r := NewRegistry()

	first := Fn(func(_ Args) (any, error) { return 1, nil })
	second := Fn(func(_ Args) (any, error) { return 2, nil })

	require.NoError(t, r.Register("CreateUser", first))
	require.NoError(t, r.Register("CreateUser", second))

	got, ok := r.Lookup("CreateUser")
	require.True(t, ok)

	out, err := got(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestRegistry_EmptyNameRejected(t *testing.T) {
	r := NewRegistry()

	err := r.Register("", func(_ Args) (any, error) { return nil, nil })
	require.Error(t, err)

	var invalid *InvalidNameError
	assert.True(t, errors.As(err, &invalid))
	assert.False(t, r.Has(""))
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("GetUsers", func(_ Args) (any, error) { return nil, nil }))
	require.NoError(t, r.Register("CreateUser", func(_ Args) (any, error) { return nil, nil }))

	r.Clear()

	assert.False(t, r.Has("GetUsers"))
	assert.False(t, r.Has("CreateUser"))

	_, ok := r.Lookup("GetUsers")
	assert.False(t, ok)
}

func TestRegistry_LookupAbsent(t *testing.T) {
	r := NewRegistry()

	got, ok := r.Lookup("Missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

// mirror of the initializer body the rewriter generates, exercised directly
// against the registry to pin the runtime contract.
func fallbackFor(name string) Fn {
	return func(args Args) (any, error) {
		impl, ok := LookupMock(name)
		if !ok {
			return nil, &MockNotFoundError{Name: name}
		}
		if args == nil {
			args = Args{}
		}
		return impl(args)
	}
}

func TestGeneratedShape_MockRegistered(t *testing.T) {
	ClearMocks()
	t.Cleanup(ClearMocks)

	require.NoError(t, Default().Register("GetUsers", func(args Args) (any, error) {
		return []map[string]any{{"id": 1}}, nil
	}))

	getUsers := fallbackFor("GetUsers")

	out, err := getUsers(nil)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"id": 1}}, out)
}

func TestGeneratedShape_ClearedRegistryFailsFast(t *testing.T) {
	ClearMocks()
	t.Cleanup(ClearMocks)

	require.NoError(t, Default().Register("GetUsers", func(_ Args) (any, error) { return nil, nil }))
	ClearMocks()

	getUsers := fallbackFor("GetUsers")

	_, err := getUsers(nil)
	require.Error(t, err)

	var notFound *MockNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "GetUsers", notFound.Name)
	assert.Contains(t, err.Error(), "GetUsers")
}

func TestGeneratedShape_NilArgsDefaulted(t *testing.T) {
	ClearMocks()
	t.Cleanup(ClearMocks)

	var seen Args
	require.NoError(t, Default().Register("CreateUser", func(args Args) (any, error) {
		seen = args
		return nil, nil
	}))

	createUser := fallbackFor("CreateUser")

	_, err := createUser(nil)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Empty(t, seen)
}

func TestRegisterMock_DerivedNameFromClosureRejected(t *testing.T) {
	ClearMocks()
	t.Cleanup(ClearMocks)

	target := Fn(func(_ Args) (any, error) { return "prod", nil })

	err := RegisterMock(target, func(_ Args) (any, error) { return "mock", nil })
	require.Error(t, err)

	var invalid *InvalidNameError
	assert.True(t, errors.As(err, &invalid))
}

func TestRegisterMock_InjectedName(t *testing.T) {
	ClearMocks()
	t.Cleanup(ClearMocks)

	target := Fn(func(_ Args) (any, error) { return "prod", nil })

	require.NoError(t, RegisterMock(target, func(_ Args) (any, error) { return "mock", nil }, "GetUsers"))
	assert.True(t, HasMock("GetUsers"))
}
