package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getstubd/stubd/internal/uritemplate"
	"github.com/getstubd/stubd/pkg/stub"
)

// FieldResult describes whether a single check matched the request.
type FieldResult struct {
	Field    string `json:"field"`
	Matched  bool   `json:"matched"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// ParameterDetail describes the match result for a single path parameter.
type ParameterDetail struct {
	Key      string `json:"key"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matched  bool   `json:"matched"`
}

// NearMiss is an expectation that partially matched an incoming request.
type NearMiss struct {
	ExpectationID    string        `json:"expectationId"`
	Template         string        `json:"template"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	Fields           []FieldResult `json:"fields"`
	Reason           string        `json:"reason"`
}

// Breakdown evaluates every check against the request without
// short-circuiting, returning per-field match results. Used to explain an
// unmatched request; never called on the happy path.
func Breakdown(exp *stub.Expectation, req *stub.RequestDescriptor) *NearMiss {
	if exp == nil || req == nil {
		return &NearMiss{}
	}

	result := &NearMiss{ExpectationID: exp.ID, Template: exp.Template}

	// Method
	methodMatched := MatchMethod(exp.Method, req.Method)
	result.addField(FieldResult{
		Field:    "method",
		Matched:  methodMatched,
		MaxScore: ScoreMethod,
		Expected: exp.Method,
		Actual:   req.Method,
	})

	// Template, under the expectation's strategy. For the structural
	// strategy the normalized forms are what actually get compared, so the
	// diagnostic shows those.
	templateMatched := MatchTemplate(exp, req)
	expected, actual := exp.Template, req.Template
	if exp.Strategy == stub.StrategyStructural || exp.Strategy == "" {
		expected = exp.NormalizedTemplate
		actual = uritemplate.Normalize(req.Template)
	}
	result.addField(FieldResult{
		Field:    "template",
		Matched:  templateMatched,
		MaxScore: ScoreTemplate,
		Expected: expected,
		Actual:   actual,
	})

	// Builder-declared path parameters, compared by direct key.
	if exp.Strategy == stub.StrategyBuilder && len(exp.PathParameters) > 0 {
		allMatched := true
		score := 0
		details := make([]ParameterDetail, 0, len(exp.PathParameters))
		for _, key := range sortedKeys(exp.PathParameters) {
			want := exp.PathParameters[key]
			got, ok := req.PathParameters[key]
			matched := ok && got == want
			if matched {
				score += ScorePathParameter
			} else {
				allMatched = false
			}
			if !ok {
				got = "(missing)"
			}
			details = append(details, ParameterDetail{
				Key:      key,
				Expected: want,
				Actual:   got,
				Matched:  matched,
			})
		}
		result.Fields = append(result.Fields, FieldResult{
			Field:    "pathParameters",
			Matched:  allMatched,
			Score:    score,
			MaxScore: len(exp.PathParameters) * ScorePathParameter,
			Details:  details,
		})
		result.Score += score
		result.MaxPossibleScore += len(exp.PathParameters) * ScorePathParameter
	}

	// Extra predicate
	if exp.Predicate != nil {
		matched := exp.Predicate.Test(req)
		result.addField(FieldResult{
			Field:    "predicate",
			Matched:  matched,
			MaxScore: ScorePredicate,
			Expected: exp.Predicate.String(),
		})
	}

	if result.MaxPossibleScore > 0 {
		result.MatchPercentage = (result.Score * 100) / result.MaxPossibleScore
	}
	result.Reason = GenerateReason(result.Fields)
	return result
}

func (n *NearMiss) addField(f FieldResult) {
	if f.Matched {
		f.Score = f.MaxScore
	}
	n.Fields = append(n.Fields, f)
	n.Score += f.Score
	n.MaxPossibleScore += f.MaxScore
}

// CollectNearMisses evaluates every expectation against the request and
// returns the top N by partial score. Expectations with nothing in common
// with the request (score zero) are dropped.
func CollectNearMisses(exps []*stub.Expectation, req *stub.RequestDescriptor, topN int) []NearMiss {
	if topN <= 0 {
		topN = 3
	}

	var candidates []NearMiss
	for _, exp := range exps {
		if exp == nil {
			continue
		}
		nm := Breakdown(exp, req)
		if nm.Score == 0 {
			continue
		}
		candidates = append(candidates, *nm)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].MatchPercentage > candidates[j].MatchPercentage
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// GenerateReason creates a human-readable explanation of why an expectation
// partially matched but ultimately failed.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult
	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all checks matched"
	}
	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}
	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

func formatMismatch(f *FieldResult) string {
	switch f.Field {
	case "method":
		return fmt.Sprintf("method expected %q, got %q", f.Expected, f.Actual)
	case "template":
		return fmt.Sprintf("template expected %q, got %q", f.Expected, f.Actual)
	case "pathParameters":
		if details, ok := f.Details.([]ParameterDetail); ok {
			for _, d := range details {
				if !d.Matched {
					return fmt.Sprintf("path parameter %s expected %q, got %q", d.Key, d.Expected, d.Actual)
				}
			}
		}
		return "path parameter mismatch"
	case "predicate":
		return fmt.Sprintf("predicate %v not satisfied", f.Expected)
	default:
		return f.Field + " did not match"
	}
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
