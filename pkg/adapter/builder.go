package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/getstubd/stubd/pkg/predicate"
	"github.com/getstubd/stubd/pkg/stub"
)

// ExpectationBuilder configures an expectation fluently. Return, ReturnJSON,
// and ReturnError finalize it and register it with the adapter. Building
// follows a first-error-wins pattern: a failed step records the error,
// subsequent steps keep chaining, and Err surfaces it.
type ExpectationBuilder struct {
	adapter *Adapter
	exp     *stub.Expectation
	err     error
}

func (b *ExpectationBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error encountered while building.
func (b *ExpectationBuilder) Err() error {
	return b.err
}

// MatchBuilder switches the expectation to builder-identity matching: only a
// request carrying this builder's exact template and path-parameter values
// will match. Use when two structurally identical endpoints must be told
// apart by parameter value without writing a predicate.
func (b *ExpectationBuilder) MatchBuilder() *ExpectationBuilder {
	b.exp.Strategy = stub.StrategyBuilder
	return b
}

// MatchSuffix switches to suffix matching.
//
// Deprecated: suffix matching over-matches nested paths; it exists for
// callers migrating old setups. Use the default structural matching.
func (b *ExpectationBuilder) MatchSuffix() *ExpectationBuilder {
	b.exp.Strategy = stub.StrategySuffix
	return b
}

// When adds an extra predicate, conjoined with any previously added one.
func (b *ExpectationBuilder) When(p stub.Predicate) *ExpectationBuilder {
	if p != nil {
		b.exp.Predicate = predicate.And(b.exp.Predicate, p)
	}
	return b
}

// WhenExpr adds an expression-language predicate. A compile error is
// recorded and surfaced by Err (and by the finalizers).
func (b *ExpectationBuilder) WhenExpr(source string) *ExpectationBuilder {
	p, err := predicate.Expr(source)
	if err != nil {
		b.setError(err)
		return b
	}
	return b.When(p)
}

// WhenPathParameter adds a predicate requiring the logical path parameter to
// equal the given value, resolved through naming variations.
func (b *ExpectationBuilder) WhenPathParameter(name, value string) *ExpectationBuilder {
	return b.When(predicate.PathParameterEquals(name, value))
}

// Times bounds how many requests this expectation may answer. Zero or
// negative means unlimited.
func (b *ExpectationBuilder) Times(n int) *ExpectationBuilder {
	if n > 0 {
		b.exp.MaxCalls = n
	}
	return b
}

// Return finalizes the expectation with a success payload and registers it.
func (b *ExpectationBuilder) Return(payload any) (*stub.Expectation, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.exp.Payload = payload
	b.adapter.register(b.exp)
	return b.exp, nil
}

// ReturnJSON marshals the value and registers it as a json.RawMessage
// payload, for tests that feed serialized responses downstream.
func (b *ExpectationBuilder) ReturnJSON(v any) (*stub.Expectation, error) {
	data, err := json.Marshal(v)
	if err != nil {
		b.setError(fmt.Errorf("marshal stub payload: %w", err))
		return nil, b.err
	}
	return b.Return(json.RawMessage(data))
}

// ReturnError finalizes the expectation with an error to raise and registers
// it.
func (b *ExpectationBuilder) ReturnError(err error) (*stub.Expectation, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.exp.Err = err
	b.adapter.register(b.exp)
	return b.exp, nil
}
