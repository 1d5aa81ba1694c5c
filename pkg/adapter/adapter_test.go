package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/predicate"
	"github.com/getstubd/stubd/pkg/stub"
)

// fakeBuilder stands in for a generator-produced request builder.
type fakeBuilder struct {
	template string
	params   map[string]string
}

func (b *fakeBuilder) URLTemplate() string               { return b.template }
func (b *fakeBuilder) PathParameters() map[string]string { return b.params }

type fund struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestEndToEndFundScenario(t *testing.T) {
	// The test author registers with the logical camelCase name; the
	// generator spelled the parameter kebab-case in both the template and
	// the parameter map.
	a := New()
	payload := fund{ID: "abc", Name: "Growth Fund"}
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").
		WhenPathParameter("fundId", "abc").
		Return(payload)
	require.NoError(t, err)

	builder := &fakeBuilder{
		template: "{+baseurl}/api/funds/{fund-id}",
		params:   map[string]string{"fund-id": "abc"},
	}
	got, err := a.Send(context.Background(), DescriptorFromBuilder(http.MethodGet, builder))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Same endpoint, different parameter value: no match.
	other := &fakeBuilder{
		template: "{+baseurl}/api/funds/{fund-id}",
		params:   map[string]string{"fund-id": "xyz"},
	}
	_, err = a.Send(context.Background(), DescriptorFromBuilder(http.MethodGet, other))
	var unmatched *UnmatchedError
	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, http.MethodGet, unmatched.Method)
	assert.NotEmpty(t, unmatched.NearMisses)
}

func TestMethodMismatchNeverMatches(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").Return("payload")
	require.NoError(t, err)

	_, err = a.Send(context.Background(), &stub.RequestDescriptor{
		Method:   http.MethodPost,
		Template: "/api/funds/{fundId}",
	})
	var unmatched *UnmatchedError
	require.ErrorAs(t, err, &unmatched)
}

func TestReturnError(t *testing.T) {
	a := New()
	boom := errors.New("fund service unavailable")
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").ReturnError(boom)
	require.NoError(t, err)

	_, err = a.Send(context.Background(), &stub.RequestDescriptor{
		Method:   http.MethodGet,
		Template: "/api/funds/{fund-id}",
	})
	assert.ErrorIs(t, err, boom)
}

func TestFirstRegistrationWins(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").Return("first")
	require.NoError(t, err)
	_, err = a.OnTemplate(http.MethodGet, "/api/funds/{fund-id}").Return("second")
	require.NoError(t, err)

	got, err := a.Send(context.Background(), &stub.RequestDescriptor{
		Method:   http.MethodGet,
		Template: "/api/funds/{fund%2Did}",
	})
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestPredicateDiscriminatesDuplicateKeys(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").
		WhenPathParameter("fundId", "abc").
		Return("for-abc")
	require.NoError(t, err)
	_, err = a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").
		WhenPathParameter("fundId", "xyz").
		Return("for-xyz")
	require.NoError(t, err)

	send := func(id string) (any, error) {
		return a.Send(context.Background(), &stub.RequestDescriptor{
			Method:         http.MethodGet,
			Template:       "{+baseurl}/api/funds/{fund-id}",
			PathParameters: map[string]string{"fund-id": id},
		})
	}

	got, err := send("xyz")
	require.NoError(t, err)
	assert.Equal(t, "for-xyz", got)

	got, err = send("abc")
	require.NoError(t, err)
	assert.Equal(t, "for-abc", got)
}

func TestOnBuilderIdentityMatching(t *testing.T) {
	a := New()
	registered := &fakeBuilder{
		template: "{+baseurl}/api/funds/{fund%2Did}",
		params:   map[string]string{"fund%2Did": "abc"},
	}
	_, err := a.On(http.MethodGet, registered).MatchBuilder().Return("identity")
	require.NoError(t, err)

	got, err := a.Send(context.Background(), DescriptorFromBuilder(http.MethodGet, registered))
	require.NoError(t, err)
	assert.Equal(t, "identity", got)

	// Same structure, different parameter value: rejected.
	different := &fakeBuilder{
		template: "{+baseurl}/api/funds/{fund%2Did}",
		params:   map[string]string{"fund%2Did": "xyz"},
	}
	_, err = a.Send(context.Background(), DescriptorFromBuilder(http.MethodGet, different))
	var unmatched *UnmatchedError
	require.ErrorAs(t, err, &unmatched)
}

func TestTimesBoundsServings(t *testing.T) {
	a := New()
	exp, err := a.OnTemplate(http.MethodGet, "/api/ping").Times(2).Return("pong")
	require.NoError(t, err)

	req := &stub.RequestDescriptor{Method: http.MethodGet, Template: "/api/ping"}
	for i := 0; i < 2; i++ {
		got, err := a.Send(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "pong", got)
	}
	assert.Equal(t, 2, a.CallCount(exp))

	_, err = a.Send(context.Background(), req)
	var unmatched *UnmatchedError
	require.ErrorAs(t, err, &unmatched)
}

func TestWhenExprCompileErrorSurfaces(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/ping").WhenExpr("method ==").Return("pong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile predicate expression")
	assert.Zero(t, len(a.Expectations()), "a broken expectation must not register")
}

func TestReturnJSON(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").
		ReturnJSON(fund{ID: "abc", Name: "Growth Fund"})
	require.NoError(t, err)

	got, err := a.Send(context.Background(), &stub.RequestDescriptor{
		Method:   http.MethodGet,
		Template: "/api/funds/{fund-id}",
	})
	require.NoError(t, err)
	raw, ok := got.(json.RawMessage)
	require.True(t, ok, "ReturnJSON payloads are json.RawMessage")
	assert.JSONEq(t, `{"id":"abc","name":"Growth Fund"}`, string(raw))
}

func TestTypedSend(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodGet, "/api/funds/{fundId}").
		Return(fund{ID: "abc"})
	require.NoError(t, err)

	req := &stub.RequestDescriptor{Method: http.MethodGet, Template: "/api/funds/{fund-id}"}

	got, err := Send[fund](context.Background(), a, req)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)

	_, err = Send[string](context.Background(), a, req)
	var typeErr *PayloadTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestUnmatchedErrorMessage(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodPost, "/api/funds/{fundId}").Return("x")
	require.NoError(t, err)

	_, err = a.Send(context.Background(), &stub.RequestDescriptor{
		Method:   http.MethodGet,
		Template: "{+baseurl}/api/funds/{fund-id}",
	})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `no expectation matched GET`)
	assert.Contains(t, msg, "closest expectations:")
	assert.Contains(t, msg, `method expected "POST", got "GET"`)
}

func TestResetDiscardsEverything(t *testing.T) {
	a := New()
	exp, err := a.OnTemplate(http.MethodGet, "/api/ping").Return("pong")
	require.NoError(t, err)

	req := &stub.RequestDescriptor{Method: http.MethodGet, Template: "/api/ping"}
	_, err = a.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, a.CallCount(exp))

	a.Reset()
	assert.Empty(t, a.Expectations())
	assert.Zero(t, a.CallCount(exp))

	_, err = a.Send(context.Background(), req)
	var unmatched *UnmatchedError
	require.ErrorAs(t, err, &unmatched)
}

func TestDebugLoggingTracesMatching(t *testing.T) {
	var buf bytes.Buffer
	a := New(WithLogger(logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})))

	_, err := a.OnTemplate(http.MethodGet, "/api/ping").Return("pong")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "expectation registered")

	_, err = a.Send(context.Background(), &stub.RequestDescriptor{Method: http.MethodGet, Template: "/api/ping"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "expectation matched")
}

func TestWhenCombinesPredicatesConjunctively(t *testing.T) {
	a := New()
	_, err := a.OnTemplate(http.MethodPost, "/api/transfers").
		When(predicate.HeaderEquals("Idempotency-Key", "k1")).
		When(predicate.BodyJSONPath("$.amount", 100)).
		Return("accepted")
	require.NoError(t, err)

	base := func(body []byte, headers map[string]string) *stub.RequestDescriptor {
		return &stub.RequestDescriptor{
			Method:   http.MethodPost,
			Template: "/api/transfers",
			Headers:  headers,
			Body:     body,
		}
	}

	got, err := a.Send(context.Background(), base([]byte(`{"amount":100}`), map[string]string{"Idempotency-Key": "k1"}))
	require.NoError(t, err)
	assert.Equal(t, "accepted", got)

	_, err = a.Send(context.Background(), base([]byte(`{"amount":50}`), map[string]string{"Idempotency-Key": "k1"}))
	assert.Error(t, err)

	_, err = a.Send(context.Background(), base([]byte(`{"amount":100}`), nil))
	assert.Error(t, err)
}
