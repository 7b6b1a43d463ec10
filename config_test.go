package relaxavro_test

import (
	"context"
	"testing"

	"github.com/reoring/relaxavro"
)

func TestParseMode(t *testing.T) {
	cases := map[string]relaxavro.Mode{
		"strict":    relaxavro.ModeStrict,
		"RELAXED":   relaxavro.ModeRelaxed,
		"":          relaxavro.ModeRelaxed,
		" enhanced": relaxavro.ModeEnhanced,
	}
	for in, want := range cases {
		got, err := relaxavro.ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := relaxavro.ParseMode("lenient"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := relaxavro.LoadConfig([]byte("mode: strict\nlog_level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != relaxavro.ModeStrict || cfg.LogLevel != "debug" || cfg.DisableNormalizer {
		t.Fatalf("config = %+v", cfg)
	}

	empty, err := relaxavro.LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty != relaxavro.DefaultConfig() {
		t.Fatalf("empty config = %+v", empty)
	}

	if _, err := relaxavro.LoadConfig([]byte("mode: sloppy\n")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if _, err := relaxavro.LoadConfig([]byte("colour: red\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestConfig_OptionsApplyMode(t *testing.T) {
	cfg, err := relaxavro.LoadConfig([]byte("mode: strict\n"))
	if err != nil {
		t.Fatal(err)
	}
	d, err := relaxavro.New(dateSchema, cfg.Options()...)
	if err != nil {
		t.Fatal(err)
	}
	if d.Mode() != relaxavro.ModeStrict {
		t.Fatalf("mode = %v", d.Mode())
	}
	_, err = d.Decode(context.Background(), []byte(`{"date":"2008-06-03"}`))
	requireCode(t, err, relaxavro.CodeSchemaMismatch)
}
