package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/reoring/relaxavro"
)

const eventSchema = `{"type":"record","name":"Event","namespace":"demo","fields":[
	{"name":"day","type":{"type":"int","logicalType":"date"}},
	{"name":"tags","type":{"type":"array","items":"string"}},
	{"name":"ref","type":["null",{"type":"string","logicalType":"x-ref"}],"default":null}]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDecodeLines(t *testing.T) {
	schemaPath := writeFile(t, "event.avsc", eventSchema)
	in := `{"day":"2008-06-03","tags":["a"]}` + "\n\n" + `{"day":"someday","tags":[]}` + "\n"

	code, stdout, stderr := runCLI(t, in, "decode", "-schema", schemaPath, "-lines")
	require.Equal(t, 1, code)
	require.Equal(t, `{"day":14033,"tags":["a"],"ref":null}`+"\n", stdout)
	require.Contains(t, stderr, "#2 /day:")
}

func TestDecodeStrictFromConfig(t *testing.T) {
	schemaPath := writeFile(t, "event.avsc", eventSchema)
	cfgPath := writeFile(t, "cli.yaml", "mode: strict\nlog_level: error\n")

	code, _, stderr := runCLI(t, `{"day":"2008-06-03","tags":[]}`, "decode", "-schema", schemaPath, "-config", cfgPath)
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "[schema_mismatch]")

	// -mode overrides the config file.
	code, stdout, _ := runCLI(t, `{"day":"2008-06-03","tags":[]}`,
		"decode", "-schema", schemaPath, "-config", cfgPath, "-mode", "relaxed")
	require.Zero(t, code)
	require.Contains(t, stdout, `"day":14033`)
}

func TestRoundtripShowsChanges(t *testing.T) {
	schemaPath := writeFile(t, "event.avsc", eventSchema)
	in := `{"day": "2008-06-03", "tags": []}` + "\n" + `{"day":14033,"tags":["x"],"ref":null}`

	code, stdout, stderr := runCLI(t, in, "roundtrip", "-schema", schemaPath, "-lines")
	require.Zero(t, code, stderr)
	out := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, out, 2)
	require.Contains(t, out[0], "[-")
	require.Contains(t, out[0], "{+")
	require.Equal(t, `#2 {"day":14033,"tags":["x"],"ref":null}`, out[1])
}

func TestCheckListsFieldsAndUnknownLogicalTypes(t *testing.T) {
	yamlSchema := writeFile(t, "event.yaml", `
type: record
name: Event
fields:
  - name: day
    type: {type: int, logicalType: date}
  - name: ref
    type: [ "null", {type: string, logicalType: x-ref} ]
    default: null
`)
	code, stdout, stderr := runCLI(t, "", "check", "-schema", yamlSchema)
	require.Zero(t, code, stderr)
	require.Contains(t, stdout, "Event (relaxed mode)")
	require.Contains(t, stdout, "/day")
	require.Contains(t, stdout, "int<date>")
	require.Contains(t, stdout, `logical type "x-ref" has no conversion`)
}

func TestUsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "")
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "explode")
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "{}", "decode")
	require.Equal(t, 2, code)

	code, _, stderr := runCLI(t, "{}", "decode", "-schema", "/does/not/exist.avsc")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "read schema")
}

func TestLoadFileConfig(t *testing.T) {
	p := writeFile(t, "cli.yaml", `
mode: enhanced
registry:
  url: http://localhost:8081
  timeout: 3s
metrics:
  address: ":9191"
  namespace: ingest
`)
	cfg, err := loadFileConfig(p)
	require.NoError(t, err)
	require.Equal(t, relaxavro.ModeEnhanced, cfg.Mode)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "http://localhost:8081", cfg.Registry.URL)
	require.Equal(t, "3s", cfg.Registry.Timeout.String())
	require.Equal(t, "ingest", cfg.Metrics.Namespace)

	_, err = loadFileConfig(writeFile(t, "bad.yaml", "registry:\n  uri: x\n"))
	require.Error(t, err)

	_, err = newLogger("loud")
	require.Error(t, err)
}
