// Package adapter is the interception point a test wires in place of the
// real request-dispatch mechanism. Expectations are registered against
// request builders; Send answers simulated requests from those expectations
// without any network I/O.
package adapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/getstubd/stubd/internal/matching"
	"github.com/getstubd/stubd/internal/registry"
	"github.com/getstubd/stubd/internal/uritemplate"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/stub"
)

// RequestBuilder is the capability a generated (or hand-written) request
// builder must expose to be stubbed. Generated clients express every
// endpoint as a URL template plus a path-parameter map; this interface reads
// both without reflection over generator internals.
type RequestBuilder interface {
	// URLTemplate returns the raw template, e.g.
	// "{+baseurl}/api/funds/{fund%2Did}{?select,expand}".
	URLTemplate() string

	// PathParameters returns the builder's path-parameter values keyed by
	// the generator-chosen names.
	PathParameters() map[string]string
}

// Adapter holds the expectations for one stubbed client instance. Create one
// per test and discard it at teardown; expectations never leak across tests.
type Adapter struct {
	registry *registry.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	calls map[string]int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to trace match attempts. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an empty adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		registry: registry.New(),
		logger:   logging.Nop(),
		calls:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// On starts registering an expectation for requests built by the given
// builder. The template and the builder's declared path-parameter values are
// read once, at registration.
func (a *Adapter) On(method string, b RequestBuilder) *ExpectationBuilder {
	exp := stub.NewExpectation(method, b.URLTemplate())
	exp.PathParameters = copyMap(b.PathParameters())
	return &ExpectationBuilder{adapter: a, exp: exp}
}

// OnTemplate starts registering an expectation for a raw template, for
// callers that have no builder instance at hand.
func (a *Adapter) OnTemplate(method, template string) *ExpectationBuilder {
	return &ExpectationBuilder{adapter: a, exp: stub.NewExpectation(method, template)}
}

// Send answers a simulated request. Expectations are scanned in registration
// order; the first full match wins and its payload (or error) is handed
// back. When nothing matches, Send returns an *UnmatchedError carrying the
// near-miss report — what happens next is the caller's decision.
//
// The context is accepted for interface fidelity with real dispatchers but
// is never consulted: Send does not block.
func (a *Adapter) Send(_ context.Context, req *stub.RequestDescriptor) (any, error) {
	if req == nil {
		return nil, &UnmatchedError{}
	}

	all := a.registry.All()
	for _, exp := range all {
		if a.exhausted(exp) {
			continue
		}
		if !matching.Matches(exp, req) {
			continue
		}
		a.recordCall(exp)
		a.logger.Debug("expectation matched",
			"method", req.Method,
			"template", req.Template,
			"expectation", exp.ID)
		if exp.Err != nil {
			return nil, exp.Err
		}
		return exp.Payload, nil
	}

	unmatched := &UnmatchedError{
		Method:             req.Method,
		Template:           req.Template,
		NormalizedTemplate: uritemplate.Normalize(req.Template),
		NearMisses:         matching.CollectNearMisses(all, req, 3),
	}
	a.logger.Debug("no expectation matched",
		"method", req.Method,
		"template", req.Template,
		"registered", len(all))
	return nil, unmatched
}

// Send dispatches through the adapter and asserts the payload to T. A
// payload of the wrong type is reported as an *UnmatchedError would be: the
// test's setup is wrong, not the engine.
func Send[T any](ctx context.Context, a *Adapter, req *stub.RequestDescriptor) (T, error) {
	var zero T
	out, err := a.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, &PayloadTypeError{Template: req.Template, Payload: out}
	}
	return typed, nil
}

// Expectations returns every registered expectation in registration order.
func (a *Adapter) Expectations() []*stub.Expectation {
	return a.registry.All()
}

// CallCount reports how many times an expectation has been served.
func (a *Adapter) CallCount(exp *stub.Expectation) int {
	if exp == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[exp.ID]
}

// Reset discards every expectation and call count.
func (a *Adapter) Reset() {
	a.registry.Clear()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = make(map[string]int)
}

func (a *Adapter) register(exp *stub.Expectation) {
	a.registry.Register(exp)
	a.logger.Debug("expectation registered",
		"method", exp.Method,
		"template", exp.Template,
		"normalized", exp.NormalizedTemplate,
		"strategy", string(exp.Strategy))
}

// exhausted reports whether a call-bounded expectation has been used up.
// Counts live on the adapter so the expectation itself stays immutable.
func (a *Adapter) exhausted(exp *stub.Expectation) bool {
	if exp.MaxCalls <= 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[exp.ID] >= exp.MaxCalls
}

func (a *Adapter) recordCall(exp *stub.Expectation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[exp.ID]++
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
