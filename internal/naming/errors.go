package naming

import (
	"fmt"
	"strings"
)

// ParameterNotFoundError reports that no naming variation of a logical
// parameter name exists in the supplied parameter map. The message is the
// user-facing contract of this package: it has to be enough to discover the
// generator's real key without reading generated code.
type ParameterNotFoundError struct {
	// Name is the logical name the caller asked for.
	Name string
	// Variations lists every spelling that was attempted, in order.
	Variations []string
	// Template is the URL template the lookup was performed for.
	Template string
	// AvailableKeys lists the keys actually present in the map, decoded
	// where the decoded form differs from the stored one.
	AvailableKeys []string
}

func (e *ParameterNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parameter %q not found: tried %s", e.Name, strings.Join(e.Variations, ", "))
	if e.Template != "" {
		fmt.Fprintf(&b, "; template %q", e.Template)
	}
	if len(e.AvailableKeys) > 0 {
		fmt.Fprintf(&b, "; available keys: %s", strings.Join(e.AvailableKeys, ", "))
	} else {
		b.WriteString("; the parameter map is empty")
	}
	return b.String()
}
