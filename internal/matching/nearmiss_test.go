package matching

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/stub"
)

func TestBreakdownMethodMismatch(t *testing.T) {
	exp := stub.NewExpectation(http.MethodGet, "/api/funds/{fundId}")
	req := &stub.RequestDescriptor{Method: "POST", Template: "/api/funds/{fund-id}"}

	nm := Breakdown(exp, req)
	require.Len(t, nm.Fields, 2)

	assert.False(t, nm.Fields[0].Matched)
	assert.Equal(t, "method", nm.Fields[0].Field)
	assert.True(t, nm.Fields[1].Matched, "template still evaluated despite method mismatch")
	assert.Equal(t, ScoreTemplate, nm.Score)
	assert.Contains(t, nm.Reason, `method expected "GET", got "POST"`)
}

func TestBreakdownTemplateMismatchShowsNormalizedForms(t *testing.T) {
	exp := stub.NewExpectation(http.MethodGet, "/api/funds/{fundId}")
	req := &stub.RequestDescriptor{Method: "GET", Template: "/api/users/{userId}"}

	nm := Breakdown(exp, req)
	require.Len(t, nm.Fields, 2)

	tmpl := nm.Fields[1]
	assert.False(t, tmpl.Matched)
	assert.Equal(t, "/api/funds/{pathParam1}", tmpl.Expected)
	assert.Equal(t, "/api/users/{pathParam1}", tmpl.Actual)
	assert.Contains(t, nm.Reason, "method matched, but template expected")
}

func TestBreakdownBuilderParameters(t *testing.T) {
	exp := stub.NewExpectation(http.MethodGet, "/api/funds/{fund-id}")
	exp.Strategy = stub.StrategyBuilder
	exp.PathParameters = map[string]string{"fund-id": "abc"}

	req := &stub.RequestDescriptor{
		Method:         "GET",
		Template:       "/api/funds/{fund-id}",
		PathParameters: map[string]string{"fund-id": "xyz"},
	}

	nm := Breakdown(exp, req)
	require.Len(t, nm.Fields, 3)

	params := nm.Fields[2]
	assert.Equal(t, "pathParameters", params.Field)
	assert.False(t, params.Matched)
	details, ok := params.Details.([]ParameterDetail)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "fund-id", details[0].Key)
	assert.Equal(t, "abc", details[0].Expected)
	assert.Equal(t, "xyz", details[0].Actual)
	assert.Contains(t, nm.Reason, `path parameter fund-id expected "abc", got "xyz"`)
}

func TestBreakdownAllMatched(t *testing.T) {
	exp := stub.NewExpectation(http.MethodGet, "/api/ping")
	req := &stub.RequestDescriptor{Method: "GET", Template: "/api/ping"}

	nm := Breakdown(exp, req)
	assert.Equal(t, nm.Score, nm.MaxPossibleScore)
	assert.Equal(t, 100, nm.MatchPercentage)
	assert.Equal(t, "all checks matched", nm.Reason)
}

func TestCollectNearMisses(t *testing.T) {
	wrongMethod := stub.NewExpectation(http.MethodPost, "/api/funds/{fundId}")
	wrongTemplate := stub.NewExpectation(http.MethodGet, "/api/users/{userId}")
	unrelated := stub.NewExpectation(http.MethodDelete, "/other")

	req := &stub.RequestDescriptor{Method: "GET", Template: "/api/funds/{fund-id}"}

	misses := CollectNearMisses([]*stub.Expectation{unrelated, wrongMethod, wrongTemplate, nil}, req, 3)
	require.Len(t, misses, 2, "zero-score expectations are dropped")

	// wrongMethod matched the template (15) which outscores wrongTemplate's
	// method-only match (10).
	assert.Equal(t, wrongMethod.ID, misses[0].ExpectationID)
	assert.Equal(t, wrongTemplate.ID, misses[1].ExpectationID)
}

func TestCollectNearMissesTopN(t *testing.T) {
	req := &stub.RequestDescriptor{Method: "GET", Template: "/api/a"}
	exps := []*stub.Expectation{
		stub.NewExpectation(http.MethodGet, "/api/b"),
		stub.NewExpectation(http.MethodGet, "/api/c"),
		stub.NewExpectation(http.MethodGet, "/api/d"),
		stub.NewExpectation(http.MethodGet, "/api/e"),
	}
	misses := CollectNearMisses(exps, req, 2)
	assert.Len(t, misses, 2)
}
