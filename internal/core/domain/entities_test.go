package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateEffect(t *testing.T) {
	future := time.Now().AddDate(0, 2, 0)
	s := future.Format("2006-01-02")

	got, err := ParseDateEffect(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year != future.Year() || got.Month != int(future.Month()) || got.Day != future.Day() {
		t.Fatalf("exploded date mismatch: %+v vs %s", got, s)
	}
}

func TestParseDateEffectRejectsBadFormat(t *testing.T) {
	for _, s := range []string{"", "01-02-2027", "2027/01/02", "2027-1-2", "demain"} {
		_, err := ParseDateEffect(s)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError for %q, got %T", s, err)
		}
	}
}

func TestParseDateEffectRejectsImpossibleDate(t *testing.T) {
	for _, s := range []string{"2027-02-30", "2027-13-01", "2027-00-10", "2027-04-31"} {
		if _, err := ParseDateEffect(s); err == nil {
			t.Fatalf("expected error for impossible date %q", s)
		}
	}
}

func TestParseDateEffectRejectsPastAndToday(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	if _, err := ParseDateEffect(today); err == nil {
		t.Fatal("expected error for today")
	}
	if _, err := ParseDateEffect("2020-06-15"); err == nil {
		t.Fatal("expected error for past date")
	}
}

func TestAge(t *testing.T) {
	req := &TarificationRequest{AnneeNaissance: time.Now().Year() - 30}
	if got := req.Age(); got != 30 {
		t.Fatalf("expected age 30, got %d", got)
	}
}
