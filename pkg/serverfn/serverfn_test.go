package serverfn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EugenEistrach/mockfn/pkg/mockfn"
)

func TestHandler_RunsProductionBody(t *testing.T) {
	getUsers := New().Handler(func(args mockfn.Args) (any, error) {
		return []string{"alice", "bob"}, nil
	})

	out, err := getUsers(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, out)
}

func TestHandler_ValidatorsRunInOrder(t *testing.T) {
	var order []string

	fn := New().
		Validator(func(_ mockfn.Args) error {
			order = append(order, "first")
			return nil
		}).
		Validator(func(_ mockfn.Args) error {
			order = append(order, "second")
			return nil
		}).
		Handler(func(_ mockfn.Args) (any, error) {
			order = append(order, "handler")
			return nil, nil
		})

	_, err := fn(mockfn.Args{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestHandler_ValidatorFailureShortCircuits(t *testing.T) {
	wantErr := errors.New("name required")
	handlerRan := false

	fn := New().
		Validator(func(args mockfn.Args) error {
			if _, ok := args["name"]; !ok {
				return wantErr
			}
			return nil
		}).
		Handler(func(_ mockfn.Args) (any, error) {
			handlerRan = true
			return nil, nil
		})

	_, err := fn(mockfn.Args{})
	require.ErrorIs(t, err, wantErr)
	assert.False(t, handlerRan)

	_, err = fn(mockfn.Args{"name": "alice"})
	require.NoError(t, err)
	assert.True(t, handlerRan)
}

func TestHandler_NilArgsNormalized(t *testing.T) {
	fn := New().
		Validator(func(args mockfn.Args) error {
			require.NotNil(t, args)
			return nil
		}).
		Handler(func(args mockfn.Args) (any, error) {
			require.NotNil(t, args)
			return len(args), nil
		})

	out, err := fn(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out)
}
