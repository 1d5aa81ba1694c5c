package config

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getstubd/stubd/pkg/stub"
)

func TestLoadFromFileYAML(t *testing.T) {
	c, err := LoadFromFile("testdata/funds.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fund-stubs", c.Name)
	require.Len(t, c.Stubs, 3)
	assert.Equal(t, http.MethodGet, c.Stubs[0].Method)
	assert.Equal(t, "{+baseurl}/api/funds/{fund%2Did}", c.Stubs[0].Template)
	assert.Equal(t, 1, c.Stubs[2].Times)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile("testdata/does-not-exist.yaml")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = LoadFromFile("testdata")
	assert.Error(t, err)
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("stubs: ["))
	assert.ErrorIs(t, err, ErrInvalidYAML)

	_, err = ParseYAML([]byte("name: empty"))
	assert.ErrorIs(t, err, ErrNoStubs)
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := ParseJSON([]byte("{"))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseJSON([]byte(`{"stubs": []}`))
	assert.ErrorIs(t, err, ErrNoStubs)
}

func TestExpectations(t *testing.T) {
	c, err := LoadFromFile("testdata/funds.yaml")
	require.NoError(t, err)

	exps, err := c.Expectations()
	require.NoError(t, err)
	require.Len(t, exps, 3)

	// First stub: JSON payload with a path-parameter condition that
	// resolves across naming variations.
	first := exps[0]
	assert.Equal(t, "/api/funds/{pathParam1}", first.NormalizedTemplate)
	raw, ok := first.Payload.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"abc","name":"Growth Fund"}`, string(raw))
	require.NotNil(t, first.Predicate)
	assert.True(t, first.Predicate.Test(&stub.RequestDescriptor{
		Template:       "{+baseurl}/api/funds/{fund-id}",
		PathParameters: map[string]string{"fund-id": "abc"},
	}))
	assert.False(t, first.Predicate.Test(&stub.RequestDescriptor{
		Template:       "{+baseurl}/api/funds/{fund-id}",
		PathParameters: map[string]string{"fund-id": "xyz"},
	}))

	// Second stub: error response with an expression predicate.
	second := exps[1]
	require.Error(t, second.Err)
	assert.Equal(t, "fund is frozen", second.Err.Error())

	// Third stub: plain body payload, bounded.
	third := exps[2]
	assert.Equal(t, "created", third.Payload)
	assert.Equal(t, 1, third.MaxCalls)
}

func TestExpectationsValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry StubEntry
		want  string
	}{
		{
			name:  "missing method",
			entry: StubEntry{Template: "/x", Response: &ResponseSpec{Body: "b"}},
			want:  "method is required",
		},
		{
			name:  "missing template",
			entry: StubEntry{Method: "GET", Response: &ResponseSpec{Body: "b"}},
			want:  "template is required",
		},
		{
			name:  "missing response",
			entry: StubEntry{Method: "GET", Template: "/x"},
			want:  "response is required",
		},
		{
			name: "unknown strategy",
			entry: StubEntry{
				Method: "GET", Template: "/x", Strategy: "fuzzy",
				Response: &ResponseSpec{Body: "b"},
			},
			want: `unknown strategy "fuzzy"`,
		},
		{
			name: "bad expression",
			entry: StubEntry{
				Method: "GET", Template: "/x",
				When:     &WhenClause{Expr: "method =="},
				Response: &ResponseSpec{Body: "b"},
			},
			want: "compile predicate expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &StubCollection{Stubs: []StubEntry{tt.entry}}
			_, err := c.Expectations()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "stub 0:")
		})
	}
}

func TestLoadFromGlob(t *testing.T) {
	c, err := LoadFromGlob("testdata/stubs/**/*.{yaml,json}")
	require.NoError(t, err)
	require.Len(t, c.Stubs, 2)

	// Lexical path order: nested/users.json before ping.yaml.
	assert.Equal(t, "{+baseurl}/api/users/{user%2Did}{?select}", c.Stubs[0].Template)
	assert.Equal(t, "/api/ping", c.Stubs[1].Template)
}

func TestLoadFromGlobNoMatches(t *testing.T) {
	_, err := LoadFromGlob("testdata/none/**/*.yaml")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
