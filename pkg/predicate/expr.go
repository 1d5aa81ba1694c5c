package predicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getstubd/stubd/pkg/stub"
)

// ExprPredicate is a predicate compiled from an expression-language source
// string. It keeps its source so a host mocking backend can display it or
// compile it into its own matcher representation instead of invoking Test.
//
// The expression environment exposes the request descriptor as:
//
//	method          string
//	template        string
//	pathParameters  map[string]string
//	queryParameters map[string]string
//	headers         map[string]string
//	hasBody         bool
//
// Example: `method == "GET" && pathParameters["fund-id"] == "abc"`.
type ExprPredicate struct {
	source  string
	program *vm.Program
}

// Expr compiles an expression-language source into a predicate. Compilation
// errors surface immediately so a typo fails the test at registration, not
// silently at match time.
func Expr(source string) (*ExprPredicate, error) {
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile predicate expression %q: %w", source, err)
	}
	return &ExprPredicate{source: source, program: program}, nil
}

// MustExpr is Expr that panics on a compile error. For use in tests and
// package-level declarations.
func MustExpr(source string) *ExprPredicate {
	p, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Test evaluates the compiled expression against the request. Evaluation
// errors count as non-matches.
func (p *ExprPredicate) Test(r *stub.RequestDescriptor) bool {
	out, err := expr.Run(p.program, environment(r))
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Source returns the expression source the predicate was compiled from.
func (p *ExprPredicate) Source() string { return p.source }

func (p *ExprPredicate) String() string { return p.source }

func environment(r *stub.RequestDescriptor) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return map[string]any{
		"method":          r.Method,
		"template":        r.Template,
		"pathParameters":  nonNil(r.PathParameters),
		"queryParameters": nonNil(r.QueryParameters),
		"headers":         nonNil(r.Headers),
		"hasBody":         len(r.Body) > 0,
	}
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
