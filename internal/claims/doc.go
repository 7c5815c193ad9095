// Package claims implements the denial analytics engine for medical
// insurance claims. It normalizes raw tabular exports into a canonical
// claim schema, aggregates denial and financial statistics by procedure,
// payer, and provider, classifies free-text denial reasons into a fixed
// taxonomy, and synthesizes prioritized recommendations.
//
// The typical flow:
//
//	set, err := claims.Normalize(table, logger)
//	result := claims.Analyze(ctx, set, claims.DefaultPatternRules())
//
// All analysis functions are pure over an immutable ClaimSet and may run
// concurrently against the same set without coordination.
package claims
