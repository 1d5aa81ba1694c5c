// Package config loads stub collections from YAML or JSON fixture files, so
// recurring stub setups can live next to the tests instead of being rebuilt
// in code.
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getstubd/stubd/pkg/predicate"
	"github.com/getstubd/stubd/pkg/stub"
)

// StubCollection is the root document of a fixture file.
type StubCollection struct {
	// Version identifies the document format. Optional; "1" assumed.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Name labels the collection in diagnostics.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Stubs are the expectation definitions in registration order.
	Stubs []StubEntry `json:"stubs" yaml:"stubs"`
}

// StubEntry is one expectation definition.
type StubEntry struct {
	// Method is the HTTP method, required.
	Method string `json:"method" yaml:"method"`

	// Template is the raw URL template, required.
	Template string `json:"template" yaml:"template"`

	// Strategy selects the template comparison; empty means structural.
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// PathParameters are builder-declared values for the builder strategy.
	PathParameters map[string]string `json:"pathParameters,omitempty" yaml:"pathParameters,omitempty"`

	// When narrows the match beyond method and template.
	When *WhenClause `json:"when,omitempty" yaml:"when,omitempty"`

	// Times bounds how many requests the stub may answer; 0 is unlimited.
	Times int `json:"times,omitempty" yaml:"times,omitempty"`

	// Response is what the stub hands back, required.
	Response *ResponseSpec `json:"response" yaml:"response"`
}

// WhenClause describes extra match conditions. All present conditions are
// conjoined.
type WhenClause struct {
	// Expr is an expression-language predicate source, e.g.
	// `pathParameters["fund-id"] == "abc"`.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	// PathParameters maps logical names to required values, resolved
	// through naming variations.
	PathParameters map[string]string `json:"pathParameters,omitempty" yaml:"pathParameters,omitempty"`

	// Headers maps header names to required values.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Query maps logical query-parameter names to required values.
	Query map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
}

// ResponseSpec is the canned outcome: either a payload or an error message.
type ResponseSpec struct {
	// JSON is an arbitrary document returned as a json.RawMessage payload.
	JSON any `json:"json,omitempty" yaml:"json,omitempty"`

	// Body is a plain string payload. Mutually exclusive with JSON.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// Error, when set, makes the stub raise an error with this message
	// instead of returning a payload.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Expectations converts every entry into a registrable expectation,
// preserving document order. Entry index is included in conversion errors so
// a broken fixture points at the offending stub.
func (c *StubCollection) Expectations() ([]*stub.Expectation, error) {
	out := make([]*stub.Expectation, 0, len(c.Stubs))
	for i := range c.Stubs {
		exp, err := c.Stubs[i].expectation()
		if err != nil {
			return nil, fmt.Errorf("stub %d: %w", i, err)
		}
		out = append(out, exp)
	}
	return out, nil
}

func (e *StubEntry) expectation() (*stub.Expectation, error) {
	if e.Method == "" {
		return nil, errors.New("method is required")
	}
	if e.Template == "" {
		return nil, errors.New("template is required")
	}
	if e.Response == nil {
		return nil, errors.New("response is required")
	}

	exp := stub.NewExpectation(e.Method, e.Template)
	exp.PathParameters = e.PathParameters
	exp.MaxCalls = e.Times

	switch stub.Strategy(e.Strategy) {
	case "", stub.StrategyStructural:
	case stub.StrategyBuilder, stub.StrategySuffix:
		exp.Strategy = stub.Strategy(e.Strategy)
	default:
		return nil, fmt.Errorf("unknown strategy %q", e.Strategy)
	}

	pred, err := e.When.predicate()
	if err != nil {
		return nil, err
	}
	exp.Predicate = pred

	switch {
	case e.Response.Error != "":
		exp.Err = errors.New(e.Response.Error)
	case e.Response.JSON != nil:
		data, err := json.Marshal(e.Response.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal response json: %w", err)
		}
		exp.Payload = json.RawMessage(data)
	default:
		exp.Payload = e.Response.Body
	}

	return exp, nil
}

func (w *WhenClause) predicate() (stub.Predicate, error) {
	if w == nil {
		return nil, nil
	}
	var pred stub.Predicate
	if w.Expr != "" {
		p, err := predicate.Expr(w.Expr)
		if err != nil {
			return nil, err
		}
		pred = predicate.And(pred, p)
	}
	for name, value := range w.PathParameters {
		pred = predicate.And(pred, predicate.PathParameterEquals(name, value))
	}
	for name, value := range w.Headers {
		pred = predicate.And(pred, predicate.HeaderEquals(name, value))
	}
	for name, value := range w.Query {
		pred = predicate.And(pred, predicate.QueryEquals(name, value))
	}
	return pred, nil
}
