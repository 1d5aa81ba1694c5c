// Package uritemplate normalizes generator-produced URL templates into a
// canonical, name-independent form so templates can be compared structurally.
package uritemplate

import (
	"fmt"
	"strings"
)

// BaseURLParameter is the fixed base-URL marker emitted by client generators
// at the start of every URL template.
const BaseURLParameter = "{+baseurl}"

// Normalize converts a raw URL template into its canonical form:
//
//	{+baseurl}/api/funds/{fund%2Did}{?select,expand}
//	  -> /api/funds/{pathParam1}{?queryParam1,queryParam2}
//
// The base-URL marker is stripped, every path placeholder is replaced by a
// positional {pathParamN} token, the trailing query-parameter template keeps
// its arity and order but loses its names, and the result always starts with
// a slash. Two templates normalize equal exactly when their literal segments
// and placeholder positions agree; parameter names never participate.
//
// Normalize is total. Malformed templates pass through best-effort and never
// produce an error.
func Normalize(template string) string {
	t := strings.TrimPrefix(template, BaseURLParameter)
	t, query, hasQuery := splitQueryTemplate(t)

	var b strings.Builder
	n := 0
	for i := 0; i < len(t); {
		open := strings.IndexByte(t[i:], '{')
		if open < 0 {
			b.WriteString(t[i:])
			break
		}
		open += i
		end := strings.IndexByte(t[open:], '}')
		if end < 0 {
			// Unterminated placeholder: pass the tail through untouched.
			b.WriteString(t[i:])
			break
		}
		end += open
		b.WriteString(t[i:open])
		n++
		fmt.Fprintf(&b, "{pathParam%d}", n)
		i = end + 1
	}

	out := b.String()
	if hasQuery {
		out += normalizeQueryTemplate(query)
	}
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// splitQueryTemplate extracts the single optional trailing {?a,b,c} fragment.
// Returns the template without the fragment, the comma-separated name list,
// and whether a fragment was present.
func splitQueryTemplate(t string) (rest, names string, ok bool) {
	idx := strings.LastIndex(t, "{?")
	if idx < 0 || !strings.HasSuffix(t, "}") {
		return t, "", false
	}
	// The fragment must be the final brace pair; a '}' between "{?" and the
	// end means "{?" belonged to something else.
	inner := t[idx+2 : len(t)-1]
	if strings.ContainsRune(inner, '}') {
		return t, "", false
	}
	return t[:idx], inner, true
}

func normalizeQueryTemplate(names string) string {
	if names == "" {
		return "{?}"
	}
	parts := strings.Split(names, ",")
	tokens := make([]string, len(parts))
	for i := range parts {
		tokens[i] = fmt.Sprintf("queryParam%d", i+1)
	}
	return "{?" + strings.Join(tokens, ",") + "}"
}

// PathParameterCount reports how many path placeholders a template carries,
// excluding the query-parameter fragment and the base-URL marker.
func PathParameterCount(template string) int {
	t := strings.TrimPrefix(template, BaseURLParameter)
	t, _, _ = splitQueryTemplate(t)
	count := 0
	for i := 0; i < len(t); {
		open := strings.IndexByte(t[i:], '{')
		if open < 0 {
			break
		}
		open += i
		end := strings.IndexByte(t[open:], '}')
		if end < 0 {
			break
		}
		count++
		i = open + end + 1
	}
	return count
}

// QueryParameterNames returns the names declared in the trailing query
// template fragment, in declaration order. Nil when the fragment is absent.
func QueryParameterNames(template string) []string {
	_, names, ok := splitQueryTemplate(strings.TrimPrefix(template, BaseURLParameter))
	if !ok || names == "" {
		return nil
	}
	return strings.Split(names, ",")
}

// WildcardForm replaces every placeholder with a bare "{}" token. This is the
// shape the deprecated suffix-matching strategy compares on.
func WildcardForm(template string) string {
	t := strings.TrimPrefix(template, BaseURLParameter)
	var b strings.Builder
	for i := 0; i < len(t); {
		open := strings.IndexByte(t[i:], '{')
		if open < 0 {
			b.WriteString(t[i:])
			break
		}
		open += i
		end := strings.IndexByte(t[open:], '}')
		if end < 0 {
			b.WriteString(t[i:])
			break
		}
		end += open
		b.WriteString(t[i:open])
		b.WriteString("{}")
		i = end + 1
	}
	return b.String()
}
