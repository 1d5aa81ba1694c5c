package adapter

import (
	"fmt"
	"strings"

	"github.com/getstubd/stubd/internal/matching"
)

// UnmatchedError reports that no registered expectation applied to a
// simulated request. The engine never decides what happens next; the host
// test inspects or surfaces this error itself. NearMisses ranks the
// registered expectations that came closest, with a per-field reason.
type UnmatchedError struct {
	Method             string
	Template           string
	NormalizedTemplate string
	NearMisses         []matching.NearMiss
}

func (e *UnmatchedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no expectation matched %s %q", e.Method, e.Template)
	if e.NormalizedTemplate != "" && e.NormalizedTemplate != e.Template {
		fmt.Fprintf(&b, " (normalized %q)", e.NormalizedTemplate)
	}
	if len(e.NearMisses) == 0 {
		b.WriteString("; no registered expectation shares anything with this request")
		return b.String()
	}
	b.WriteString("; closest expectations:")
	for _, nm := range e.NearMisses {
		fmt.Fprintf(&b, "\n  %s %q: %s", percent(nm.MatchPercentage), nm.Template, nm.Reason)
	}
	return b.String()
}

func percent(p int) string {
	return fmt.Sprintf("[%d%%]", p)
}

// PayloadTypeError reports that a matched expectation's payload does not
// have the type the caller asked Send[T] for.
type PayloadTypeError struct {
	Template string
	Payload  any
}

func (e *PayloadTypeError) Error() string {
	return fmt.Sprintf("expectation for %q returned payload of unexpected type %T", e.Template, e.Payload)
}
