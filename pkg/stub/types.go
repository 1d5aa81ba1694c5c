// Package stub provides the expectation and request-descriptor types shared
// by the matching engine and the stub adapter.
package stub

import (
	"github.com/google/uuid"

	"github.com/getstubd/stubd/internal/uritemplate"
)

// Strategy selects how an expectation's template is compared against an
// incoming request's template.
type Strategy string

const (
	// StrategyStructural compares normalized templates positionally:
	// identical literal segments and identical placeholder positions match,
	// regardless of parameter naming. This is the default and the only
	// strategy new code should use.
	StrategyStructural Strategy = "structural"

	// StrategyBuilder matches only the exact builder instance the
	// expectation was registered against: the raw templates must be literally
	// equal and every declared path-parameter value must string-equal the
	// request's, looked up by the generator-chosen key directly.
	StrategyBuilder Strategy = "builder"

	// StrategySuffix matches when the request template ends with the
	// expectation's template, placeholders erased.
	//
	// Deprecated: suffix matching is unsound — a short pattern can match an
	// unrelated nested path. It exists only for callers migrating off it;
	// use StrategyStructural.
	StrategySuffix Strategy = "suffix"
)

// Predicate is an extra caller-supplied filter over a request descriptor.
// Implementations live in pkg/predicate; the engine only ever calls Test.
type Predicate interface {
	// Test reports whether the request satisfies the predicate.
	Test(r *RequestDescriptor) bool
	// String describes the predicate for diagnostics.
	String() string
}

// RequestDescriptor is an immutable snapshot of a simulated request. The
// engine never mutates one; it is built once per simulated call, matched,
// and discarded.
type RequestDescriptor struct {
	// Method is the HTTP method, e.g. "GET".
	Method string

	// Template is the raw URL template read off the request builder,
	// e.g. "{+baseurl}/api/funds/{fund%2Did}{?select,expand}".
	Template string

	// PathParameters maps generator-chosen keys to values.
	PathParameters map[string]string

	// QueryParameters maps query-parameter keys to values.
	QueryParameters map[string]string

	// Headers maps header names to values.
	Headers map[string]string

	// Body is the serialized request body, nil when the request has none.
	Body []byte
}

// Expectation is a registered rule: which simulated request it applies to
// and what to hand back. Expectations are immutable once registered; a test
// that wants different behavior registers another one.
type Expectation struct {
	// ID uniquely identifies the expectation in diagnostics.
	ID string

	// Method is the HTTP method this expectation applies to.
	Method string

	// Template is the raw template the expectation was registered with.
	Template string

	// NormalizedTemplate is Template in canonical positional-token form.
	NormalizedTemplate string

	// Strategy selects the template comparison (structural by default).
	Strategy Strategy

	// PathParameters holds the builder's declared path-parameter values,
	// keyed by generator-chosen names. Only consulted by StrategyBuilder.
	PathParameters map[string]string

	// Payload is the value handed back on a match, when Err is nil.
	Payload any

	// Err, when non-nil, is raised instead of returning Payload.
	Err error

	// Predicate is the optional extra filter, evaluated last.
	Predicate Predicate

	// MaxCalls bounds how many times this expectation may be served.
	// Zero means unlimited.
	MaxCalls int
}

// NewExpectation builds an expectation for a raw template, normalizing it
// and assigning an ID. The strategy defaults to structural.
func NewExpectation(method, template string) *Expectation {
	return &Expectation{
		ID:                 uuid.NewString(),
		Method:             method,
		Template:           template,
		NormalizedTemplate: uritemplate.Normalize(template),
		Strategy:           StrategyStructural,
	}
}
