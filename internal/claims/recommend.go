package claims

import "fmt"

// Recommendation priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Recommendation is one prioritized action item.
type Recommendation struct {
	Category       string `json:"category"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
}

// Recommendation rule thresholds.
const (
	payerDenialRateThreshold = 0.30
	payerRecommendationLimit = 3
	documentationThreshold   = 5
	feeScheduleThreshold     = 3
)

// GenerateRecommendations evaluates the fixed rule set in order against the
// aggregation and pattern outputs. Rules are independent; one with no
// qualifying data simply produces nothing, and the generator never fails.
func GenerateRecommendations(agg *Aggregation, patterns map[string]int) []Recommendation {
	recs := []Recommendation{}
	if agg == nil {
		return recs
	}

	// Rule 1: the single CPT with the highest denial volume.
	if len(agg.CPT.ByVolume) > 0 {
		top := agg.CPT.ByVolume[0]
		recs = append(recs, Recommendation{
			Category: "High-Risk CPT Codes",
			Issue:    fmt.Sprintf("CPT %s has high denial volume", top.Key),
			Recommendation: fmt.Sprintf(
				"Review documentation requirements and payer policies for CPT %s. Consider staff training on proper coding.",
				top.Key),
			Priority: PriorityHigh,
		})
	}

	// Rule 2: up to three payers above the denial-rate threshold, highest
	// rate first.
	emitted := 0
	for _, payer := range agg.Payer.ByRate {
		if payer.DenialRate <= payerDenialRateThreshold {
			continue
		}
		if emitted >= payerRecommendationLimit {
			break
		}
		recs = append(recs, Recommendation{
			Category: "Payer Relations",
			Issue:    fmt.Sprintf("%s has high denial rate (%.1f%%)", payer.Key, payer.DenialRate*100),
			Recommendation: fmt.Sprintf(
				"Schedule payer education session with %s. Review their specific requirements and LCD policies.",
				payer.Key),
			Priority: PriorityMedium,
		})
		emitted++
	}

	// Rule 3: documentation-related denial volume.
	if patterns["documentation_issues"] > documentationThreshold {
		recs = append(recs, Recommendation{
			Category:       "Documentation",
			Issue:          "High number of documentation-related denials",
			Recommendation: "Implement documentation audit process. Train providers on complete documentation requirements.",
			Priority:       PriorityHigh,
		})
	}

	// Rule 4: fee-schedule-related denial volume.
	if patterns["fee_schedule_issues"] > feeScheduleThreshold {
		recs = append(recs, Recommendation{
			Category:       "Fee Schedule",
			Issue:          "Multiple fee schedule related denials",
			Recommendation: "Update fee schedules and verify contracted rates with payers. Consider fee schedule negotiation.",
			Priority:       PriorityMedium,
		})
	}

	return recs
}
