// Package serverfn provides the marker factory that anchors server-function
// declarations. The build-time transform recognizes initializers whose call
// chain is rooted at New and rewrites them to consult the mock registry.
package serverfn

import (
	"github.com/EugenEistrach/mockfn/pkg/mockfn"
)

// Validator inspects the arguments before the handler runs.
type Validator func(args mockfn.Args) error

// Builder assembles a server function as a chain of calls ending in Handler.
type Builder struct {
	validators []Validator
}

// New starts a server-function declaration. The call chain rooted here is
// what classifies a declaration as a server function.
func New() *Builder {
	return &Builder{}
}

// Validator appends an argument validator to the chain.
func (b *Builder) Validator(v Validator) *Builder {
	b.validators = append(b.validators, v)
	return b
}

// Handler finalizes the chain. The returned function runs the validators in
// registration order, then the handler. A nil args value is normalized to an
// empty structure before anything sees it.
func (b *Builder) Handler(h mockfn.Fn) mockfn.Fn {
	validators := b.validators

	return func(args mockfn.Args) (any, error) {
		if args == nil {
			args = mockfn.Args{}
		}

		for _, v := range validators {
			if err := v(args); err != nil {
				return nil, err
			}
		}

		return h(args)
	}
}
