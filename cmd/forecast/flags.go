package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
)

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// intList is a repeatable integer flag. Comma separated values are accepted.
type intList []int

func (l *intList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid year %q", part)
		}
		*l = append(*l, n)
	}
	return nil
}

// options holds the parsed command line
type options struct {
	inputs        stringList
	years         intList
	defaultYear   int
	horizon       int
	outDir        string
	configPath    string
	schemaPolicy  string
	missingPolicy string
	workers       int
	archivePath   string
	language      string
	bom           bool

	// set records the flags given explicitly
	set map[string]bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Var(&opts.inputs, "i", "input CSV/XLSX file, directory or glob (repeatable)")
	fs.Var(&opts.years, "y", "calendar year per input, or one year for all (repeatable)")
	fs.IntVar(&opts.defaultYear, "default-year", 0, "year for inputs whose name carries none")
	fs.IntVar(&opts.horizon, "horizon", config.DefaultHorizon, "number of months to forecast")
	fs.StringVar(&opts.outDir, "out", config.DefaultOutputDir, "output directory")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.schemaPolicy, "schema-policy", "fail", "category mismatch across years: fail, intersect or union")
	fs.StringVar(&opts.missingPolicy, "missing-policy", "compact", "missing months: compact, exclude or fail")
	fs.IntVar(&opts.workers, "workers", 1, "categories forecast in parallel")
	fs.StringVar(&opts.archivePath, "archive", "", "SQLite file to archive the run in")
	fs.StringVar(&opts.language, "lang", "id", "label language: id or en")
	fs.BoolVar(&opts.bom, "bom", false, "prefix the summary CSV with a UTF-8 byte order mark")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		// Positional arguments are inputs too
		opts.inputs = append(opts.inputs, fs.Args()...)
		opts.set["i"] = true
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// apply overrides cfg with the flags given explicitly
func (o *options) apply(cfg *config.Config) {
	if o.set["i"] {
		cfg.Input.Files = append([]string(nil), o.inputs...)
	}
	if o.set["y"] {
		cfg.Input.Years = append([]int(nil), o.years...)
	}
	if o.set["default-year"] {
		cfg.Input.DefaultYear = o.defaultYear
	}
	if o.set["horizon"] {
		cfg.Forecast.Horizon = o.horizon
	}
	if o.set["out"] {
		cfg.Report.OutputDir = o.outDir
	}
	if o.set["schema-policy"] {
		cfg.Forecast.SchemaPolicy = o.schemaPolicy
	}
	if o.set["missing-policy"] {
		cfg.Forecast.MissingPolicy = o.missingPolicy
	}
	if o.set["workers"] {
		cfg.Forecast.Workers = o.workers
	}
	if o.set["archive"] {
		cfg.Archive.Path = o.archivePath
	}
	if o.set["lang"] {
		cfg.Report.Language = o.language
	}
	if o.set["bom"] {
		cfg.Report.CSVBOM = o.bom
	}
}
