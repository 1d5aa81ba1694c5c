// Package naming resolves a logical parameter name to the spellings a client
// generator may actually have used for it.
//
// Generators disagree about how parameter names survive into templates and
// parameter maps: some keep the author's camelCase, some kebab-case it, some
// percent-encode the hyphens, and query templates frequently carry OData
// style $-prefixed names. Rather than asking test authors to know which
// convention their generator picked, lookups try every candidate spelling in
// a fixed priority order.
package naming

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// Variations returns the candidate spellings for a logical path-parameter
// name, most likely first. The result is deduplicated, never empty, and
// always starts with the original spelling.
func Variations(name string) []string {
	kebab := kebabCase(name)
	return dedupe([]string{
		name,
		kebab,
		percentEncode(kebab),
		pascalCase(name),
	})
}

// QueryVariations returns the candidate spellings for a query-parameter
// name. On top of the path variations it tries the OData-style $ prefix,
// its percent-encoded form, and a $-prefixed kebab-case, since query
// templates commonly declare $select, $filter and friends.
func QueryVariations(name string) []string {
	kebab := kebabCase(name)
	return dedupe(append(Variations(name),
		"$"+name,
		"%24"+name,
		"$"+kebab,
	))
}

// LookupParameter finds the value for a logical path-parameter name in a
// generator-keyed parameter map, trying each naming variation in order.
// When every variation misses it returns a *ParameterNotFoundError that
// lists what was tried and which keys actually exist.
func LookupParameter(template, name string, params map[string]string) (string, error) {
	return lookup(template, name, Variations(name), params)
}

// LookupQueryParameter is LookupParameter with the query-specific variation
// set.
func LookupQueryParameter(template, name string, params map[string]string) (string, error) {
	return lookup(template, name, QueryVariations(name), params)
}

func lookup(template, name string, variations []string, params map[string]string) (string, error) {
	for _, v := range variations {
		if value, ok := params[v]; ok {
			return value, nil
		}
	}
	return "", &ParameterNotFoundError{
		Name:          name,
		Variations:    variations,
		Template:      template,
		AvailableKeys: describeKeys(params),
	}
}

// kebabCase inserts a hyphen before every uppercase letter past position 0
// and lowercases the result: fundId -> fund-id.
func kebabCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// percentEncode encodes every non-alphanumeric byte as %XX, matching how
// generators embed hyphenated identifiers in raw templates (- becomes %2D).
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// pascalCase uppercases the first character only.
func pascalCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// describeKeys lists the map's keys for diagnostics, showing the decoded
// form next to keys that carry percent-encoding.
func describeKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if decoded, err := url.PathUnescape(k); err == nil && decoded != k {
			keys = append(keys, fmt.Sprintf("%s (encoded %s)", decoded, k))
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
