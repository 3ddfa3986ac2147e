package domain

import (
	"fmt"
	"go/ast"
	"strings"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

// classifyInitializer decides whether expr is — syntactically — a chain of
// method calls rooted at the configured marker factory. Starting from the
// outermost expression it repeatedly steps into the receiver of chained
// calls until it either reaches a factory invocation or the chain breaks.
//
// This is a purely structural, name-based heuristic: no type resolution, no
// cross-module inlining. If the factory name is reused for an unrelated
// value elsewhere a false positive is possible; that is an accepted,
// documented limitation.
func classifyInitializer(expr ast.Expr, factoryName string) m.Classification {
	qualifier, name := splitFactoryName(factoryName)

	depth := 0

	for {
		expr = unparen(expr)

		call, ok := expr.(*ast.CallExpr)
		if !ok {
			return negative("chain broken by non-call expression at depth %d", depth)
		}

		switch fun := call.Fun.(type) {
		case *ast.Ident:
			if qualifier == "" && fun.Name == name {
				return m.Classification{
					ServerFunction: true,
					Reason:         fmt.Sprintf("factory %s reached at depth %d", factoryName, depth),
				}
			}

			return negative("chain rooted at unrelated call %s", fun.Name)

		case *ast.SelectorExpr:
			// A selector over a plain identifier is a package-qualified
			// call, the innermost link of the chain. Anything else under
			// the selector is a chained method call to descend through.
			if receiver, ok := unparen(fun.X).(*ast.Ident); ok {
				if qualifier != "" && receiver.Name == qualifier && fun.Sel.Name == name {
					return m.Classification{
						ServerFunction: true,
						Reason:         fmt.Sprintf("factory %s reached at depth %d", factoryName, depth),
					}
				}

				return negative("chain rooted at unrelated call %s.%s", receiver.Name, fun.Sel.Name)
			}

			expr = fun.X
			depth++

		default:
			return negative("unsupported callee at depth %d", depth)
		}
	}
}

func negative(format string, args ...any) m.Classification {
	return m.Classification{Reason: fmt.Sprintf(format, args...)}
}

// splitFactoryName separates an optional package qualifier from the factory
// identifier ("serverfn.New" -> "serverfn", "New").
func splitFactoryName(factoryName string) (string, string) {
	if idx := strings.LastIndex(factoryName, "."); idx >= 0 {
		return factoryName[:idx], factoryName[idx+1:]
	}

	return "", factoryName
}

func unparen(expr ast.Expr) ast.Expr {
	for {
		paren, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}

		expr = paren.X
	}
}
