package trust

// Confidence maps the number of historical events backing a score to a
// confidence scalar in [0,1]. More events mean more confidence,
// independent of the score's magnitude.
func Confidence(eventCount int) float64 {
	switch {
	case eventCount >= 50:
		return 0.95
	case eventCount >= 20:
		return 0.85
	case eventCount >= 5:
		return 0.7
	case eventCount >= 1:
		return 0.5
	default:
		return 0.3
	}
}
