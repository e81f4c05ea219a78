package analytics

import "math"

// SeverityCounts breaks down the currently active incidents by tier.
type SeverityCounts struct {
	New      int `json:"new"`
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	Critical int `json:"critical"`
}

// HealthScore combines the active ratio with a severity-weighted average
// into a 0-100 composite per network. The weights (0.9 new, 0.7 low,
// 0.4 medium, 0.1 critical) and the max(active,1) zero-guard are a fixed
// business rule. An empty network scores a perfect 100; the result is
// clamped to [0, 100].
func HealthScore(total, active int, counts SeverityCounts) int {
	if total == 0 {
		return 100
	}
	divisor := active
	if divisor < 1 {
		divisor = 1
	}
	weighted := (0.9*float64(counts.New) +
		0.7*float64(counts.Low) +
		0.4*float64(counts.Medium) +
		0.1*float64(counts.Critical)) / float64(divisor)

	score := int(math.Round((1 - 0.5*float64(active)/float64(total)) * weighted * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HealthLabel maps a score to its operator-facing status band.
func HealthLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 40:
		return "Poor"
	default:
		return "Critical"
	}
}
