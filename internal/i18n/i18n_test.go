package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("hu"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateHungarian(t *testing.T) {
	ctx := initLang(t, "hu")

	if got := T(ctx, "ResultPassed"); got != "SIKERES" {
		t.Errorf("T(ResultPassed) = %q, want 'SIKERES'", got)
	}
	if got := T(ctx, "TheoryDetails"); got != "Elméleti vizsga részletei" {
		t.Errorf("T(TheoryDetails) = %q", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "ResultPassed"); got != "PASSED" {
		t.Errorf("T(ResultPassed) = %q, want 'PASSED'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "hu")

	got := Td(ctx, "EmailSubject", map[string]any{"Result": "SIKERES"})
	if got != "TechOps Academy vizsgaeredmény – SIKERES" {
		t.Errorf("Td(EmailSubject) = %q", got)
	}
}

func TestMissingKeyFallsBackToID(t *testing.T) {
	ctx := initLang(t, "hu")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want the ID back", got)
	}
}

func TestMissingLocalizerUsesDefault(t *testing.T) {
	if err := Init("hu"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// No localizer in context: the bundle default (Hungarian) applies.
	if got := T(context.Background(), "ResultFailed"); got != "SIKERTELEN" {
		t.Errorf("T(ResultFailed) = %q, want 'SIKERTELEN'", got)
	}
}
