package services

import (
	"strings"
	"testing"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

func TestValidate_Compliant(t *testing.T) {
	v := NewResponseValidator(0, nil)

	report := v.Validate("The ProBook Creator 16 at $1,899.00 has 32GB RAM, ideal for video editing.")
	if !report.Passed() {
		t.Errorf("expected full compliance, failed rules: %v", report.Failed())
	}
}

func TestValidate_Superlatives(t *testing.T) {
	v := NewResponseValidator(0, nil)

	report := v.Validate("This is the best laptop for $999.00!")
	if report[domain.RuleNoSuperlatives] {
		t.Error("expected no_superlatives = false for a response containing \"best\"")
	}

	// Whole-word matching: "bestow" is not "best".
	report = v.Validate("We bestow a $10.00 discount.")
	if !report[domain.RuleNoSuperlatives] {
		t.Error("substring of a denylisted word must not flag")
	}
}

func TestValidate_MissingPrice(t *testing.T) {
	v := NewResponseValidator(0, nil)

	report := v.Validate("The ProBook Creator 16 is a solid choice for video editing.")
	if report[domain.RuleIncludesPrice] {
		t.Error("expected includes_price = false without a currency marker")
	}
}

func TestValidate_Conciseness(t *testing.T) {
	v := NewResponseValidator(50, nil)

	short := v.Validate("A short answer with a $5.00 price.")
	if !short[domain.RuleConcise] {
		t.Error("short response should pass the conciseness rule")
	}

	long := v.Validate(strings.Repeat("word ", 60) + "$5.00")
	if long[domain.RuleConcise] {
		t.Error("response over the word ceiling should fail the conciseness rule")
	}
}

func TestValidate_CustomDenylist(t *testing.T) {
	v := NewResponseValidator(0, []string{"unbeatable"})

	report := v.Validate("An unbeatable deal at $49.00.")
	if report[domain.RuleNoSuperlatives] {
		t.Error("custom denylist term should flag")
	}
	// The default list no longer applies.
	report = v.Validate("The best deal at $49.00.")
	if !report[domain.RuleNoSuperlatives] {
		t.Error("default terms should not flag with a custom denylist")
	}
}
