package agents

// OverallConfidence folds per-food confidences into a single level.
// Any low item makes the whole analysis low; otherwise at least half high
// makes it high; empty input defaults to medium.
func OverallConfidence(confidences []ConfidenceLevel) ConfidenceLevel {
	if len(confidences) == 0 {
		return ConfidenceMedium
	}

	highCount := 0
	for _, c := range confidences {
		if c == ConfidenceLow {
			return ConfidenceLow
		}
		if c == ConfidenceHigh {
			highCount++
		}
	}

	if float64(highCount) >= float64(len(confidences))/2 {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}
