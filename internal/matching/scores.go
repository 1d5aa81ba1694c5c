package matching

// Partial-match scores used by the near-miss diagnostics. Higher means the
// field is a stronger signal that the expectation was meant for the request.
const (
	// ScoreMethod is the score for a method match.
	ScoreMethod = 10

	// ScoreTemplate is the score for a template match under the
	// expectation's strategy.
	ScoreTemplate = 15

	// ScorePathParameter is the score per builder-declared path-parameter
	// value match.
	ScorePathParameter = 5

	// ScorePredicate is the score for a passing extra predicate. Low on
	// purpose: a predicate passing on the wrong endpoint is weak evidence.
	ScorePredicate = 5
)
