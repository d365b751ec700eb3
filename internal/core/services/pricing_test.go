package services

import (
	"testing"

	"xcr-courtage/internal/core/domain"
)

func TestBasePriceAgeBrackets(t *testing.T) {
	cases := []struct {
		age  int
		want float64
	}{
		{20, 45 * 0.8},
		{24, 45 * 0.8},
		{25, 45 * 0.9},
		{34, 45 * 0.9},
		{35, 45 * 1.0},
		{44, 45 * 1.0},
		{45, 45 * 1.2},
		{54, 45 * 1.2},
		{55, 45 * 1.5},
		{64, 45 * 1.5},
		{65, 45 * 2.0},
		{80, 45 * 2.0},
	}

	for _, c := range cases {
		got := BasePrice(c.age, "Salarié")
		if got != c.want {
			t.Fatalf("BasePrice(%d): expected %.2f, got %.2f", c.age, c.want, got)
		}
	}
}

func TestBasePriceMonotonicInAge(t *testing.T) {
	prev := 0.0
	for _, age := range []int{20, 30, 40, 50, 60, 70} {
		got := BasePrice(age, "Salarié")
		if got < prev {
			t.Fatalf("BasePrice not monotonic: age %d gives %.2f, previous was %.2f", age, got, prev)
		}
		prev = got
	}
}

func TestBasePriceRegimeFactors(t *testing.T) {
	base := BasePrice(40, "Salarié")

	cases := []struct {
		regime string
		factor float64
	}{
		{"TNS Indépendant", 1.1},
		{"Retraité salarié", 1.3},
		{"Retraité TNS", 1.3},
		{"Etudiant", 0.7},
		{"Sans emploi", 0.8},
		{"Fonctionnaire", 1.0},
		{"", 1.0},
	}

	for _, c := range cases {
		got := BasePrice(40, c.regime)
		want := base * c.factor
		if RoundCents(got) != RoundCents(want) {
			t.Fatalf("BasePrice(40, %q): expected %.2f, got %.2f", c.regime, want, got)
		}
	}
}

func TestWithBeneficiariesNone(t *testing.T) {
	if got := WithBeneficiaries(100, nil, nil); got != 100 {
		t.Fatalf("expected base unchanged without beneficiaries, got %.2f", got)
	}
}

func TestWithBeneficiariesSpouse(t *testing.T) {
	// Spouse loading is flat, regardless of birth year
	young := WithBeneficiaries(100, &domain.Conjoint{AnneeNaissance: 2000}, nil)
	old := WithBeneficiaries(100, &domain.Conjoint{AnneeNaissance: 1950}, nil)

	if young != 180 {
		t.Fatalf("expected 180 with spouse, got %.2f", young)
	}
	if young != old {
		t.Fatalf("spouse loading should not depend on birth year: %.2f vs %.2f", young, old)
	}
}

func TestWithBeneficiariesChildren(t *testing.T) {
	got := WithBeneficiaries(100, nil, []domain.Enfant{{AnneeNaissance: 2015}, {AnneeNaissance: 2018}})
	if got != 160 {
		t.Fatalf("expected 160 with two children, got %.2f", got)
	}
}

func TestWithBeneficiariesFullFamily(t *testing.T) {
	got := WithBeneficiaries(100, &domain.Conjoint{AnneeNaissance: 1990}, []domain.Enfant{{AnneeNaissance: 2015}})
	if got != 210 {
		t.Fatalf("expected 210 for spouse plus one child, got %.2f", got)
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(45.678); got != 45.68 {
		t.Fatalf("expected 45.68, got %v", got)
	}
	if got := RoundCents(45.674); got != 45.67 {
		t.Fatalf("expected 45.67, got %v", got)
	}
}
