package main

// Notes:
// - parseConvertFlags: we test defaults, short and long spellings, the
//   backends list, positional handling, and error/help behavior.
// - pflag permits flags after positionals, which matters for
//   "doc2pdf convert ./docs -q" style invocations.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags - Flag parsing
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		flags, positional, err := parseConvertFlags([]string{"./docs"}, io.Discard)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if flags.common.config != "" || flags.common.quiet || flags.common.verbose {
			t.Errorf("common flags not zero: %+v", flags.common)
		}
		if flags.output.dir != "" || flags.output.stamp != "" || flags.output.report != "" {
			t.Errorf("output flags not zero: %+v", flags.output)
		}
		if flags.render.backends != nil || flags.render.timeout != "" || flags.render.validate {
			t.Errorf("render flags not zero: %+v", flags.render)
		}
		if flags.batch.concurrency != 0 {
			t.Errorf("concurrency = %d, want 0", flags.batch.concurrency)
		}
		if len(positional) != 1 || positional[0] != "./docs" {
			t.Errorf("positional = %v, want [./docs]", positional)
		}
	})

	t.Run("short flags", func(t *testing.T) {
		t.Parallel()

		args := []string{"-o", "out", "-c", "cfg.yaml", "-q", "-v", "-b", "cloud,chrome", "-t", "45s", "-n", "3", "in"}
		flags, positional, err := parseConvertFlags(args, io.Discard)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if flags.output.dir != "out" {
			t.Errorf("output = %q, want out", flags.output.dir)
		}
		if flags.common.config != "cfg.yaml" {
			t.Errorf("config = %q, want cfg.yaml", flags.common.config)
		}
		if !flags.common.quiet || !flags.common.verbose {
			t.Error("quiet and verbose should both be set")
		}
		if len(flags.render.backends) != 2 || flags.render.backends[0] != "cloud" || flags.render.backends[1] != "chrome" {
			t.Errorf("backends = %v, want [cloud chrome]", flags.render.backends)
		}
		if flags.render.timeout != "45s" {
			t.Errorf("timeout = %q, want 45s", flags.render.timeout)
		}
		if flags.batch.concurrency != 3 {
			t.Errorf("concurrency = %d, want 3", flags.batch.concurrency)
		}
		if len(positional) != 1 || positional[0] != "in" {
			t.Errorf("positional = %v, want [in]", positional)
		}
	})

	t.Run("long flags", func(t *testing.T) {
		t.Parallel()

		args := []string{
			"--output", "out", "--stamp-format", "iso", "--report", "run.json",
			"--backends", "chrome", "--timeout", "2m", "--validate",
			"--concurrency", "8", "docs",
		}
		flags, _, err := parseConvertFlags(args, io.Discard)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if flags.output.stamp != "iso" {
			t.Errorf("stamp = %q, want iso", flags.output.stamp)
		}
		if flags.output.report != "run.json" {
			t.Errorf("report = %q, want run.json", flags.output.report)
		}
		if !flags.render.validate {
			t.Error("validate should be set")
		}
		if flags.batch.concurrency != 8 {
			t.Errorf("concurrency = %d, want 8", flags.batch.concurrency)
		}
	})

	t.Run("flags after positionals", func(t *testing.T) {
		t.Parallel()

		flags, positional, err := parseConvertFlags([]string{"./docs", "-q"}, io.Discard)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		if !flags.common.quiet {
			t.Error("quiet flag after positional should parse")
		}
		if len(positional) != 1 || positional[0] != "./docs" {
			t.Errorf("positional = %v, want [./docs]", positional)
		}
	})

	t.Run("unknown flag errors without printing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _, err := parseConvertFlags([]string{"--bogus"}, &buf)

		if err == nil {
			t.Fatal("expected error for unknown flag")
		}
		if !strings.Contains(err.Error(), "bogus") {
			t.Errorf("error should name the flag, got: %v", err)
		}
		// With ContinueOnError the caller owns error reporting.
		if buf.Len() != 0 {
			t.Errorf("parse should not write output itself:\n%s", buf.String())
		}
	})

	t.Run("help returns ErrHelp", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _, err := parseConvertFlags([]string{"--help"}, &buf)

		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("err = %v, want flag.ErrHelp", err)
		}
		if !strings.Contains(buf.String(), "Usage: doc2pdf convert") {
			t.Errorf("help should print usage:\n%s", buf.String())
		}
	})

	t.Run("multiple backend flags accumulate", func(t *testing.T) {
		t.Parallel()

		flags, _, err := parseConvertFlags([]string{"-b", "chrome", "-b", "cloud", "in"}, io.Discard)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		if len(flags.render.backends) != 2 {
			t.Errorf("backends = %v, want two entries", flags.render.backends)
		}
	})
}
