package trust

import (
	"github.com/chittyos/chittytrust/internal/domain"
)

// Classify maps a composite score to its discrete trust level.
// Thresholds are evaluated highest-first; a boundary value belongs to
// the higher tier (exactly 90 is L4, exactly 75 is L3, and so on).
func Classify(composite float64) domain.TrustLevel {
	switch {
	case composite >= 90:
		return domain.LevelInstitutional
	case composite >= 75:
		return domain.LevelProfessional
	case composite >= 50:
		return domain.LevelEnhanced
	case composite >= 25:
		return domain.LevelBasic
	default:
		return domain.LevelAnonymous
	}
}
