package flashcard

const (
	fastRatio = 0.7
	slowRatio = 2.0
)

// EstimateQuality derives a 1..5 recall quality from objective typing
// performance. referenceMs is the expected response time for the item;
// the speed adjustment is skipped when it is not positive.
func EstimateQuality(accuracy, responseTimeMs, referenceMs float64) int {
	quality := qualityFromAccuracy(accuracy)
	if referenceMs <= 0 {
		return quality
	}

	ratio := responseTimeMs / referenceMs
	switch {
	case ratio <= fastRatio && quality >= 4:
		quality = MaxQuality
	case ratio >= slowRatio && quality <= PassQuality:
		quality = max(MinQuality, quality-1)
	}
	return quality
}

func qualityFromAccuracy(accuracy float64) int {
	switch {
	case accuracy >= 0.95:
		return 5
	case accuracy >= 0.85:
		return 4
	case accuracy >= 0.70:
		return 3
	case accuracy >= 0.50:
		return 2
	default:
		return 1
	}
}
