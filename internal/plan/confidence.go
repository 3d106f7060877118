package plan

// Every generator satisfies the same cross-cutting contract: elements
// carry a confidence in [0,1], a human-readable reason for the score,
// and a needs-review flag when the score falls below the configured
// threshold. Scores are computed once at creation from value snapshots
// of their inputs and are never lowered afterwards.

// clampConfidence bounds c to [0,1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// annotate clamps a raw score and resolves the needs-review flag
// against the configured threshold.
func annotate(c, threshold float64) (confidence float64, needsReview bool) {
	c = clampConfidence(c)
	return c, c < threshold
}
