package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"256701234567", "+256701234567", "0701234567", "701234567"}
	for _, p := range valid {
		if err := ValidatePhone(p); err != nil {
			t.Errorf("expected %q to be valid: %v", p, err)
		}
	}

	invalid := []string{"", "12345", "256801234567x", "07012345", "not-a-phone"}
	for _, p := range invalid {
		if err := ValidatePhone(p); err == nil {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(100)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAmount(decimal.Zero); err == nil {
		t.Error("expected error for zero amount")
	}
	if err := ValidateAmount(decimal.NewFromFloat(0.001)); err == nil {
		t.Error("expected error for sub-cent amount")
	}

	huge, _ := decimal.NewFromString("2000000000000")
	if err := ValidateAmount(huge); err == nil {
		t.Error("expected error for amount above maximum")
	}
}

func TestValidateLoanPeriod(t *testing.T) {
	if err := ValidateLoanPeriod(12); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateLoanPeriod(0); err == nil {
		t.Error("expected error for zero period")
	}
	if err := ValidateLoanPeriod(121); err == nil {
		t.Error("expected error for period above maximum")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset, err := ValidatePagination(0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected cap 1000, got %d", limit)
	}
}
