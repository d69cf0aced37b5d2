package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds output destination flags.
type outputFlags struct {
	dir    string
	stamp  string
	report string
}

// renderFlags holds rendering backend flags.
type renderFlags struct {
	backends []string
	timeout  string
	validate bool
}

// batchFlags holds batch execution flags.
type batchFlags struct {
	concurrency int
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common commonFlags
	output outputFlags
	render renderFlags
	batch  batchFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-file timing and debug logs")
}

// addOutputFlags adds output destination flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output", "o", "", "output directory (default: alongside input)")
	fs.StringVar(&f.stamp, "stamp-format", "", "header timestamp format or preset: iso, european, us, long")
	fs.StringVar(&f.report, "report", "", "write a JSON run report to this path")
}

// addRenderFlags adds rendering backend flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringSliceVarP(&f.backends, "backends", "b", nil, "backends in fallback order: chrome,cloud")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file render timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.validate, "validate", false, "structurally validate each PDF before keeping it")
}

// addBatchFlags adds batch execution flags to a FlagSet.
func addBatchFlags(fs *flag.FlagSet, f *batchFlags) {
	fs.IntVarP(&f.concurrency, "concurrency", "n", 0, "files converted at once (0 = default)")
}

// parseConvertFlags parses convert command flags and returns positional args.
// Usage and flag errors go to w.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addRenderFlags(fs, &f.render)
	addBatchFlags(fs, &f.batch)

	fs.SetOutput(w)
	fs.Usage = func() { printConvertUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
