package i18n

import "testing"

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X-" + code }

func TestLanguageSwitch(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	if got := T("numeric_range", nil); got != "numeric value out of range" {
		t.Fatalf("en: %q", got)
	}
	SetLanguage("ja")
	if got := T("missing_required", nil); got != "必須フィールドが不足しています" {
		t.Fatalf("ja: %q", got)
	}
	SetLanguage("fr")
	if got := T("parse_error", nil); got != "parse error" {
		t.Fatalf("unknown language should fall back to en: %q", got)
	}
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown code should echo: %q", got)
	}
}

func TestSetTranslator(t *testing.T) {
	t.Cleanup(func() { SetTranslator(nil) })
	SetTranslator(upper{})
	if got := T("schema_mismatch", nil); got != "X-schema_mismatch" {
		t.Fatalf("custom translator: %q", got)
	}
	SetTranslator(nil)
	if got := T("schema_mismatch", nil); got != "schema mismatch" {
		t.Fatalf("reset: %q", got)
	}
}
