package predicate

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"

	"github.com/getstubd/stubd/pkg/stub"
)

// BodyJSONPath matches when the request body is JSON and the value selected
// by the JSONPath expression equals the expected value. Expected values
// follow JSON typing, so numbers compare as float64. An invalid path, a
// missing body, or a non-JSON body is a non-match, never an error.
func BodyJSONPath(path string, expected any) Predicate {
	compiled, err := jp.ParseString(path)
	return &jsonPathPredicate{
		path:     path,
		expr:     compiled,
		parseErr: err,
		expected: expected,
	}
}

type jsonPathPredicate struct {
	path     string
	expr     jp.Expr
	parseErr error
	expected any
}

func (p *jsonPathPredicate) Test(r *stub.RequestDescriptor) bool {
	if p.parseErr != nil || r == nil || len(r.Body) == 0 {
		return false
	}

	var data any
	if err := json.Unmarshal(r.Body, &data); err != nil {
		return false
	}

	for _, got := range p.expr.Get(data) {
		if jsonValuesEqual(got, p.expected) {
			return true
		}
	}
	return false
}

func (p *jsonPathPredicate) String() string {
	return fmt.Sprintf("body[%s] == %v", p.path, p.expected)
}

// jsonValuesEqual compares a JSON-decoded value with an expected one,
// coercing numeric types since JSON numbers decode as float64.
func jsonValuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	a, aNum := toFloat64(actual)
	e, eNum := toFloat64(expected)
	return aNum && eNum && a == e
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
