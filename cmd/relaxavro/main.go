// Command relaxavro decodes loosely-typed JSON against an Avro record schema
// and prints the canonical JSON encoding.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/metrics"
	"github.com/reoring/relaxavro/registry"
	"github.com/reoring/relaxavro/schema"
)

func main() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `relaxavro CLI

Usage:
  relaxavro decode    (-schema file | -subject name | -id n) [-mode m] [-lines] [-workers n] [file ...]
  relaxavro roundtrip (-schema file | -subject name | -id n) [-mode m] [-lines] [file ...]
  relaxavro check     (-schema file | -subject name | -id n)

Common flags:
  -config file   YAML file with mode, log_level, registry and metrics sections
  -registry url  schema registry URL (overrides registry.url)

Input is read from stdin when no file is given.`)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var cmd func(context.Context, *env, []string) error
	switch args[0] {
	case "decode":
		cmd = decodeCmd
	case "roundtrip":
		cmd = roundtripCmd
	case "check":
		cmd = checkCmd
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}

	e := &env{name: args[0], stdin: stdin, stdout: stdout, stderr: stderr}
	err := cmd(ctx, e, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp), errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errFailedDocuments):
		return 1
	}
	fmt.Fprintf(stderr, "relaxavro %s: %v\n", args[0], err)
	return 1
}

var (
	errUsage           = errors.New("usage")
	errFailedDocuments = errors.New("one or more documents failed")
)

// env carries the streams and the state shared by every subcommand.
type env struct {
	name   string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    fileConfig
	logger *zap.Logger
	schema *schema.Schema

	// flags
	configPath string
	schemaPath string
	subject    string
	version    string
	id         int
	mode       string
	lines      bool
	workers    int
	registry   string
}

func (e *env) flags(withInput bool) *flag.FlagSet {
	fs := flag.NewFlagSet(e.name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&e.configPath, "config", "", "YAML config file")
	fs.StringVar(&e.schemaPath, "schema", "", "schema file (.avsc/.json or .yaml/.yml)")
	fs.StringVar(&e.subject, "subject", "", "registry subject to fetch the schema from")
	fs.StringVar(&e.version, "version", "latest", "registry subject version")
	fs.IntVar(&e.id, "id", 0, "registry schema id")
	fs.StringVar(&e.registry, "registry", "", "schema registry URL")
	if withInput {
		fs.StringVar(&e.mode, "mode", "", "strict, relaxed or enhanced (overrides the config)")
		fs.BoolVar(&e.lines, "lines", false, "treat every non-blank input line as a separate document")
		fs.IntVar(&e.workers, "workers", runtime.NumCPU(), "documents decoded in parallel")
	}
	return fs
}

// setup loads the config, the logger and the schema after flag parsing.
func (e *env) setup(ctx context.Context) error {
	cfg, err := loadFileConfig(e.configPath)
	if err != nil {
		return err
	}
	if e.mode != "" {
		m, err := relaxavro.ParseMode(e.mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if e.registry != "" {
		cfg.Registry.URL = e.registry
	}
	e.cfg = cfg

	e.logger, err = newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	e.schema, err = e.loadSchema(ctx)
	return err
}

func (e *env) loadSchema(ctx context.Context) (*schema.Schema, error) {
	switch {
	case e.schemaPath != "":
		data, err := os.ReadFile(e.schemaPath)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		switch strings.ToLower(filepath.Ext(e.schemaPath)) {
		case ".yaml", ".yml":
			return schema.ParseYAML(data)
		}
		return schema.Parse(data)
	case e.subject != "" || e.id != 0:
		client, err := registry.NewClient(e.cfg.Registry, registry.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		if e.id != 0 {
			return client.SchemaByID(ctx, e.id)
		}
		md, err := client.SchemaVersion(ctx, e.subject, e.version)
		if err != nil {
			return nil, err
		}
		e.logger.Info("schema fetched",
			zap.String("subject", md.Subject), zap.Int("id", md.ID), zap.Int("version", md.Version))
		return md.Schema, nil
	}
	return nil, fmt.Errorf("%w: one of -schema, -subject or -id is required", errUsage)
}

func (e *env) decoder(opts ...relaxavro.Option) (*relaxavro.Decoder, error) {
	all := append(e.cfg.Options(), relaxavro.WithLogger(e.logger))
	return relaxavro.New(e.schema, append(all, opts...)...)
}

// documents returns every input document, one per file or one per line.
func (e *env) documents(files []string) ([][]byte, error) {
	var inputs [][]byte
	if len(files) == 0 {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, data)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, data)
	}
	if !e.lines {
		return inputs, nil
	}

	var docs [][]byte
	for _, in := range inputs {
		sc := bufio.NewScanner(bytes.NewReader(in))
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
				docs = append(docs, append([]byte(nil), line...))
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// reportFailure prints a decode error to stderr as "#n path: message".
func (e *env) reportFailure(n int, err error) {
	if de, ok := relaxavro.AsDecodeError(err); ok {
		fmt.Fprintf(e.stderr, "#%d %s: [%s] %s\n", n, de.Path, de.Code, de.Message)
		return
	}
	fmt.Fprintf(e.stderr, "#%d %v\n", n, err)
}

func decodeCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags(true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(ctx); err != nil {
		return err
	}
	defer e.logger.Sync()

	base, err := e.decoder()
	if err != nil {
		return err
	}
	m := metrics.New(e.cfg.Metrics)
	dec := m.Instrument(base)
	if addr := e.cfg.Metrics.Address; addr != "" {
		srv := m.Server(e.cfg.Metrics)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		e.logger.Info("serving metrics", zap.String("address", addr))
	}

	docs, err := e.documents(fs.Args())
	if err != nil {
		return err
	}

	// Documents decode in parallel; output keeps input order.
	outs := make([][]byte, len(docs))
	errs := make([]error, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.workers, 1))
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			rec, err := dec.Decode(gctx, doc)
			if err == nil {
				outs[i], err = dec.Encode(rec)
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i := range docs {
		if errs[i] != nil {
			failed++
			e.reportFailure(i+1, errs[i])
			continue
		}
		fmt.Fprintln(e.stdout, string(outs[i]))
	}
	e.logger.Info("decode finished", zap.Int("documents", len(docs)), zap.Int("failed", failed),
		zap.Stringer("mode", e.cfg.Mode), zap.String("schema", e.schema.FullName()))
	if failed > 0 {
		return errFailedDocuments
	}
	return nil
}

// roundtripCmd decodes each document, re-encodes it canonically and shows
// what changed. The canonical form must also survive a strict round trip.
func roundtripCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags(true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(ctx); err != nil {
		return err
	}
	defer e.logger.Sync()

	dec, err := e.decoder()
	if err != nil {
		return err
	}
	strict, err := e.decoder(relaxavro.WithMode(relaxavro.ModeStrict))
	if err != nil {
		return err
	}
	docs, err := e.documents(fs.Args())
	if err != nil {
		return err
	}

	failed := 0
	for i, doc := range docs {
		canonical, err := roundtrip(ctx, dec, strict, doc)
		if err != nil {
			failed++
			e.reportFailure(i+1, err)
			continue
		}
		compact, err := compactJSON(doc)
		if err != nil {
			failed++
			e.reportFailure(i+1, err)
			continue
		}
		fmt.Fprintf(e.stdout, "#%d ", i+1)
		if !writeDiff(e.stdout, compact, canonical) {
			e.logger.Debug("document already canonical", zap.Int("document", i+1))
		}
	}
	if failed > 0 {
		return errFailedDocuments
	}
	return nil
}

func roundtrip(ctx context.Context, dec, strict *relaxavro.Decoder, doc []byte) (string, error) {
	rec, err := dec.Decode(ctx, doc)
	if err != nil {
		return "", err
	}
	out, err := dec.Encode(rec)
	if err != nil {
		return "", err
	}
	again, err := strict.Decode(ctx, out)
	if err != nil {
		return "", fmt.Errorf("canonical output rejected by strict mode: %w", err)
	}
	if !again.Equal(rec) {
		return "", errors.New("canonical output does not decode to the same record")
	}
	return string(out), nil
}

func compactJSON(doc []byte) (string, error) {
	n, err := jsontree.Parse(doc)
	if err != nil {
		return "", err
	}
	out, err := jsontree.Marshal(n)
	return string(out), err
}

// checkCmd prints the fields of the schema with their types and reports
// logical types no conversion is registered for.
func checkCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags(false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(ctx); err != nil {
		return err
	}
	defer e.logger.Sync()

	dec, err := e.decoder()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s (%s mode)\n", e.schema.FullName(), dec.Mode())

	warn := color.New(color.FgYellow)
	seen := map[*schema.Schema]bool{}
	var walk func(p string, s *schema.Schema)
	walk = func(p string, s *schema.Schema) {
		if s.Logical != nil {
			if _, ok := dec.Registry().Lookup(s.Logical.Name); !ok {
				warn.Fprintf(e.stdout, "%s: logical type %q has no conversion; values pass through\n", p, s.Logical.Name)
			}
		}
		switch s.Type {
		case schema.Record:
			if seen[s] {
				return
			}
			seen[s] = true
			for _, f := range s.Fields {
				fp := p + "/" + f.Name
				fmt.Fprintf(e.stdout, "%-32s %s\n", fp, describe(f.Schema))
				walk(fp, f.Schema)
			}
		case schema.Array:
			walk(p+"/*", s.Items)
		case schema.Map:
			walk(p+"/*", s.Values)
		case schema.Union:
			for i, b := range s.Branches {
				walk(p+"|"+strconv.Itoa(i), b)
			}
		}
	}
	walk("", e.schema)
	return nil
}

func describe(s *schema.Schema) string {
	switch s.Type {
	case schema.Array:
		return "array<" + describe(s.Items) + ">"
	case schema.Map:
		return "map<" + describe(s.Values) + ">"
	case schema.Union:
		names := make([]string, len(s.Branches))
		for i, b := range s.Branches {
			names[i] = describe(b)
		}
		return strings.Join(names, " | ")
	}
	return s.String()
}
