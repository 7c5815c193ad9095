package claims

import (
	"sort"
	"strings"
)

// PatternRule matches a denial-reason category by keyword substrings.
// Matching is case-insensitive; a single reason may match several rules.
type PatternRule struct {
	Category string
	Keywords []string
}

// DefaultPatternRules returns the standard denial-reason taxonomy. The
// classifier takes the rules as data so the taxonomy can be extended
// without touching its control logic.
func DefaultPatternRules() []PatternRule {
	return []PatternRule{
		{Category: "documentation_issues", Keywords: []string{"missing information", "documentation", "records"}},
		{Category: "authorization_issues", Keywords: []string{"authorization", "referral", "approval"}},
		{Category: "coding_issues", Keywords: []string{"invalid code", "unbundling", "modifier"}},
		{Category: "eligibility_issues", Keywords: []string{"not eligible", "coverage", "benefits"}},
		{Category: "fee_schedule_issues", Keywords: []string{"fee schedule", "exceeds", "allowable"}},
	}
}

// ClassifyPatterns counts denied claims per category. A denied claim
// increments a category when any of its keywords is a substring of the
// claim's denial reason. Returns nil when the set carries no denial_reason
// column, so the caller can omit the section entirely.
func ClassifyPatterns(set *ClaimSet, rules []PatternRule) map[string]int {
	if !set.HasColumn(FieldDenialReason) {
		return nil
	}

	counts := make(map[string]int, len(rules))
	for _, rule := range rules {
		counts[rule.Category] = 0
	}

	for _, c := range set.Claims {
		if !c.IsDenied() {
			continue
		}
		reason := strings.ToLower(c.DenialReason)
		for _, rule := range rules {
			for _, kw := range rule.Keywords {
				if strings.Contains(reason, strings.ToLower(kw)) {
					counts[rule.Category]++
					break
				}
			}
		}
	}

	return counts
}

// ReasonCount is the frequency of one raw denial-reason string.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// CountDenialReasons tallies raw reason strings over denied claims,
// ordered by count descending with ties kept in first-encounter order.
// Returns nil when the set carries no denial_reason column.
func CountDenialReasons(set *ClaimSet) []ReasonCount {
	if !set.HasColumn(FieldDenialReason) {
		return nil
	}

	index := make(map[string]int)
	var counts []ReasonCount
	for _, c := range set.Claims {
		if !c.IsDenied() {
			continue
		}
		i, ok := index[c.DenialReason]
		if !ok {
			i = len(counts)
			index[c.DenialReason] = i
			counts = append(counts, ReasonCount{Reason: c.DenialReason})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}
