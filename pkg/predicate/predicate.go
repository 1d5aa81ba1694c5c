// Package predicate builds the extra request filters an expectation can
// carry beyond its method and template.
//
// Predicates compose: And, Or, and Not build new predicate nodes rather than
// opaque closures, so a mocking backend that needs to display or recompile
// its matchers can still introspect them through String (and, for
// expression predicates, Source).
package predicate

import (
	"fmt"

	"github.com/getstubd/stubd/internal/naming"
	"github.com/getstubd/stubd/pkg/stub"
)

// Predicate is the composable filter type. It is the same interface the
// engine consumes off an expectation.
type Predicate = stub.Predicate

type funcPredicate struct {
	name string
	fn   func(*stub.RequestDescriptor) bool
}

func (p *funcPredicate) Test(r *stub.RequestDescriptor) bool { return p.fn(r) }
func (p *funcPredicate) String() string                      { return p.name }

// Func wraps a plain function. The name is what diagnostics display.
func Func(name string, fn func(*stub.RequestDescriptor) bool) Predicate {
	if name == "" {
		name = "func"
	}
	return &funcPredicate{name: name, fn: fn}
}

type truePredicate struct{}

func (truePredicate) Test(*stub.RequestDescriptor) bool { return true }
func (truePredicate) String() string                    { return "true" }

// True matches every request. The identity element for And.
func True() Predicate { return truePredicate{} }

type andPredicate struct{ a, b Predicate }

func (p *andPredicate) Test(r *stub.RequestDescriptor) bool {
	return p.a.Test(r) && p.b.Test(r)
}

func (p *andPredicate) String() string {
	return fmt.Sprintf("(%s && %s)", p.a, p.b)
}

// And is the conjunction of two predicates, evaluated left to right with
// short-circuiting. When both operands are expression predicates the result
// is a new expression predicate whose source is the conjunction, keeping the
// combined predicate compilable by an expression-based backend.
func And(a, b Predicate) Predicate {
	switch {
	case a == nil || a == True():
		if b == nil {
			return True()
		}
		return b
	case b == nil:
		return a
	}
	if ea, ok := a.(*ExprPredicate); ok {
		if eb, ok := b.(*ExprPredicate); ok {
			if combined, err := Expr(fmt.Sprintf("(%s) && (%s)", ea.Source(), eb.Source())); err == nil {
				return combined
			}
		}
	}
	return &andPredicate{a: a, b: b}
}

type orPredicate struct{ a, b Predicate }

func (p *orPredicate) Test(r *stub.RequestDescriptor) bool {
	return p.a.Test(r) || p.b.Test(r)
}

func (p *orPredicate) String() string {
	return fmt.Sprintf("(%s || %s)", p.a, p.b)
}

// Or is the disjunction of two predicates, evaluated left to right.
func Or(a, b Predicate) Predicate {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &orPredicate{a: a, b: b}
}

type notPredicate struct{ p Predicate }

func (p *notPredicate) Test(r *stub.RequestDescriptor) bool { return !p.p.Test(r) }
func (p *notPredicate) String() string                      { return fmt.Sprintf("!(%s)", p.p) }

// Not negates a predicate.
func Not(p Predicate) Predicate {
	if p == nil {
		return Func("false", func(*stub.RequestDescriptor) bool { return false })
	}
	return &notPredicate{p: p}
}

// HeaderEquals matches when the named header has exactly the given value.
func HeaderEquals(name, value string) Predicate {
	return Func(fmt.Sprintf("header[%s] == %q", name, value), func(r *stub.RequestDescriptor) bool {
		return r.Headers[name] == value
	})
}

// QueryEquals matches when the named query parameter has exactly the given
// value, resolving the name through the query naming variations ($select,
// %24select, ...).
func QueryEquals(name, value string) Predicate {
	return Func(fmt.Sprintf("query[%s] == %q", name, value), func(r *stub.RequestDescriptor) bool {
		got, err := naming.LookupQueryParameter(r.Template, name, r.QueryParameters)
		return err == nil && got == value
	})
}

// PathParameterEquals matches when the logical path parameter resolves, via
// naming variations, to a key whose value equals the given one. A failed
// resolution is simply a non-match here; callers who want the rich
// ParameterNotFoundError diagnostic use naming.LookupParameter directly.
func PathParameterEquals(name, value string) Predicate {
	return Func(fmt.Sprintf("pathParameters[%s] == %q", name, value), func(r *stub.RequestDescriptor) bool {
		got, err := naming.LookupParameter(r.Template, name, r.PathParameters)
		return err == nil && got == value
	})
}
