// Package matching decides whether a registered expectation applies to a
// simulated request.
//
// A full match requires, in order: the HTTP method, the template comparison
// selected by the expectation's strategy, and the optional extra predicate.
// The checks short-circuit left to right so the cheap rejections run before
// a potentially expensive predicate.
//
// Template comparison strategies:
//
//   - Structural: normalized templates compare positionally, so differing
//     parameter spellings (fundId, fund-id, fund%2Did) still match.
//   - Builder: the raw templates must be literally equal and every declared
//     path-parameter value must equal the request's, keyed directly.
//   - Suffix: deprecated endsWith comparison on placeholder-erased templates,
//     kept only for callers migrating off it.
//
// Breakdown and CollectNearMisses re-run every check without short-circuiting
// to explain, field by field, why nothing matched. They are only invoked on
// an unmatched request, so matched calls pay nothing for the diagnostics.
package matching
