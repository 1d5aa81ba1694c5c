package matching

import (
	"strings"

	"github.com/getstubd/stubd/internal/uritemplate"
	"github.com/getstubd/stubd/pkg/stub"
)

// Matches reports whether the expectation applies to the request. Checks run
// in the required order — method, template, extra predicate — and
// short-circuit on the first failure.
func Matches(exp *stub.Expectation, req *stub.RequestDescriptor) bool {
	if exp == nil || req == nil {
		return false
	}
	if !MatchMethod(exp.Method, req.Method) {
		return false
	}
	if !MatchTemplate(exp, req) {
		return false
	}
	if exp.Predicate != nil && !exp.Predicate.Test(req) {
		return false
	}
	return true
}

// MatchMethod compares HTTP methods case-insensitively.
func MatchMethod(expected, actual string) bool {
	return strings.EqualFold(expected, actual)
}

// MatchTemplate applies the expectation's template comparison strategy.
func MatchTemplate(exp *stub.Expectation, req *stub.RequestDescriptor) bool {
	switch exp.Strategy {
	case stub.StrategyBuilder:
		return matchBuilder(exp, req)
	case stub.StrategySuffix:
		return matchSuffix(exp.Template, req.Template)
	default:
		return uritemplate.Normalize(req.Template) == exp.NormalizedTemplate
	}
}

// matchBuilder requires literal template equality plus value equality for
// every path parameter the builder declared. Both sides come from the same
// generator, so the keys already agree in spelling and are looked up
// directly, without naming variations.
func matchBuilder(exp *stub.Expectation, req *stub.RequestDescriptor) bool {
	if req.Template != exp.Template {
		return false
	}
	for k, want := range exp.PathParameters {
		got, ok := req.PathParameters[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// matchSuffix erases placeholders from both templates and compares by
// endsWith. A short pattern can accidentally match a longer unrelated path;
// the strategy survives only for migration.
func matchSuffix(pattern, template string) bool {
	p := uritemplate.WildcardForm(pattern)
	t := uritemplate.WildcardForm(template)
	return p != "" && strings.HasSuffix(t, p)
}
