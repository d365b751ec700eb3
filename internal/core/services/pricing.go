package services

import (
	"math"

	"xcr-courtage/internal/core/domain"
)

// Monthly premium base, in euros, before any adjustment
const premiumBase = 45.0

// Flat beneficiary loadings, as fractions of the adjusted base
const (
	conjointLoading = 0.8
	enfantLoading   = 0.3
)

// BasePrice computes the monthly base premium from the insured's age and
// occupational regime. Deterministic: a bracket factor on age times a
// regime factor, applied to the fixed base.
func BasePrice(age int, regime string) float64 {
	price := premiumBase

	switch {
	case age < 25:
		price *= 0.8
	case age < 35:
		price *= 0.9
	case age < 45:
		price *= 1.0
	case age < 55:
		price *= 1.2
	case age < 65:
		price *= 1.5
	default:
		price *= 2.0
	}

	switch regime {
	case "TNS Indépendant":
		price *= 1.1
	case "Retraité salarié", "Retraité TNS":
		price *= 1.3
	case "Etudiant":
		price *= 0.7
	case "Sans emploi":
		price *= 0.8
	}

	return price
}

// WithBeneficiaries adds the dependent loadings to a base premium: a flat
// spouse loading and a smaller flat loading per child. Loadings depend only
// on the presence of each record, not on its birth year.
func WithBeneficiaries(base float64, conjoint *domain.Conjoint, enfants []domain.Enfant) float64 {
	total := base

	if conjoint != nil {
		total += base * conjointLoading
	}
	for range enfants {
		total += base * enfantLoading
	}

	return total
}

// RoundCents rounds a premium to the nearest cent
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
