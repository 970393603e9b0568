package routing

import (
	"math"
	"strings"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
)

// neutralScore is used for a component when its inputs are unknown, so a
// shop is neither rewarded nor punished for missing data.
const neutralScore = 0.5

// capacityFullAt is the open-slot count at which capacity stops improving
// the score.
const capacityFullAt = 3.0

// distanceScore maps commute distance linearly onto [0,1]: 1 at zero miles,
// 0 at maxMiles and beyond.
func distanceScore(distanceMiles, maxMiles float64) float64 {
	if maxMiles <= 0 {
		return 0
	}
	return clamp01(1 - distanceMiles/maxMiles)
}

// capacityScore rewards open slots, saturating at capacityFullAt.
func capacityScore(available int) float64 {
	if available <= 0 {
		return 0
	}
	return math.Min(float64(available)/capacityFullAt, 1)
}

// specialtyScore is the fraction of the applicant's interests that match at
// least one shop specialty. Matching is a case-insensitive substring test in
// either direction, so "fade" matches "fades" and vice versa. When either
// side declared nothing, the score is neutral.
func specialtyScore(interests, specialties []string) float64 {
	if len(interests) == 0 || len(specialties) == 0 {
		return neutralScore
	}

	matched := 0
	for _, interest := range interests {
		in := strings.ToLower(strings.TrimSpace(interest))
		if in == "" {
			continue
		}
		for _, specialty := range specialties {
			sp := strings.ToLower(strings.TrimSpace(specialty))
			if sp == "" {
				continue
			}
			if strings.Contains(sp, in) || strings.Contains(in, sp) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(interests))
}

// preferenceScore is a fixed neutral value until applicant shop preferences
// are collected at intake.
func preferenceScore() float64 {
	return neutralScore
}

// totalScore combines the component scores with the ruleset weights and
// rounds to two decimals, which is the precision persisted and compared
// against the auto-assign threshold.
func totalScore(w routing.Weights, distance, capacity, specialty, preference float64) float64 {
	total := w.Distance*distance + w.Capacity*capacity + w.Specialty*specialty + w.Preference*preference
	return round2(total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
