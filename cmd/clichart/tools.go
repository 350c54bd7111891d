package main

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/session"
	"github.com/cognicore/clichart/pkg/clichart/tools"
)

func separator(csv bool) data.Separator {
	if csv {
		return data.SeparatorCSV
	}
	return data.SeparatorWhitespace
}

// openInput opens path, or returns stdin when path is empty.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &config.OptionsError{Msg: "Cannot locate input file: " + path}
	}
	return f, nil
}

func newHistogramCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var cfg tools.HistogramConfig
	var csv bool
	cmd := &cobra.Command{
		Use:   "histogram [flags] [inputpath]",
		Short: "Output the distribution of one column over a number of intervals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Separator = separator(csv)
			in, err := openInput(firstArg(args), stdin)
			if err != nil {
				return err
			}
			defer in.Close()

			intervals, err := tools.Histogram(in, cfg)
			if err != nil {
				return err
			}
			return tools.WriteHistogram(stdout, intervals, cfg)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&csv, "csv", "c", false, "Data (input and output) is CSV")
	flags.BoolVarP(&cfg.SkipHeader, "skip-header", "f", false, "First row of the input is a header and is skipped")
	flags.IntVarP(&cfg.Intervals, "intervals", "i", 0, "Number of intervals (output rows)")
	flags.IntVarP(&cfg.Column, "column", "l", -1, "0-based column to build the histogram from (required)")
	flags.BoolVarP(&cfg.Cumulative, "cumulative", "m", false, "Show cumulative counts")
	flags.BoolVarP(&cfg.Percent, "percent", "p", false, "Add a percentage column")
	flags.Float64VarP(&cfg.IntervalSize, "size", "s", 0, "Interval size, instead of --intervals")
	flags.BoolVar(&cfg.Header, "header", false, "Include a header row in the output")
	return cmd
}

func newLineStatsCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		cfg      tools.LineStatsConfig
		key      string
		columns  string
		match    string
		valueSet []string
	)
	cmd := &cobra.Command{
		Use:   "linestats [flags] [inputpath]",
		Short: "Count lines and summarize values, grouped by a key extracted from each line",
		Long: `Key and value specs are s:<start>[:<end>] for a substring, f:<index> for a
whitespace-separated field or r:<regex> for a regular expression match
(its first group when it has one). Output columns are k (the key),
k:cnt (its count) and <value>:av, :min, :max or :tot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if key != "" {
				if cfg.Key, err = tools.ParseExtractor(key); err != nil {
					return err
				}
			}
			for _, spec := range valueSet {
				ex, err := tools.ParseExtractor(spec)
				if err != nil {
					return err
				}
				cfg.Values = append(cfg.Values, ex)
			}
			if cfg.Columns, err = tools.ParseOutputColumns(columns); err != nil {
				return err
			}
			if match != "" {
				if cfg.Match, err = regexp.Compile(match); err != nil {
					return &config.OptionsError{Msg: "Invalid regular expression [" + match + "]"}
				}
			}

			in, err := openInput(firstArg(args), stdin)
			if err != nil {
				return err
			}
			defer in.Close()
			return tools.LineStats(in, stdout, cfg)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&cfg.CSV, "csv", "c", false, "Output as CSV")
	flags.StringVarP(&cfg.HeaderLine, "header", "f", "", "Line to output first, as column headers")
	flags.StringVarP(&key, "key", "k", "", "How to extract the key from each line (default the whole line)")
	flags.StringVarP(&columns, "columns", "l", "k,k:cnt", "Comma-separated output columns")
	flags.StringVarP(&match, "match", "m", "", "Only include lines matching this regular expression")
	flags.BoolVarP(&cfg.Sort, "sort", "s", false, "Sort output by key")
	flags.StringArrayVarP(&valueSet, "value", "v", nil, "A numeric value to summarize; repeatable")
	return cmd
}

func newDiscreteStatsCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		cfg        tools.DiscreteStatsConfig
		key, value string
		match      string
	)
	cmd := &cobra.Command{
		Use:   "discretestats [flags] [inputpath]",
		Short: "Count each distinct value of a field, per key",
		Long: `For each key, counts how often every distinct value occurs, e.g. the
number of log messages of each priority per minute. Key and value specs
are as for linestats.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if key != "" {
				if cfg.Key, err = tools.ParseExtractor(key); err != nil {
					return err
				}
			}
			if value != "" {
				if cfg.Value, err = tools.ParseExtractor(value); err != nil {
					return err
				}
			}
			if match != "" {
				if cfg.Match, err = regexp.Compile(match); err != nil {
					return &config.OptionsError{Msg: "Invalid regular expression [" + match + "]"}
				}
			}

			in, err := openInput(firstArg(args), stdin)
			if err != nil {
				return err
			}
			defer in.Close()
			return tools.DiscreteStats(in, stdout, cfg)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&cfg.CSV, "csv", "c", false, "Output as CSV")
	flags.StringVarP(&key, "key", "k", "", "How to extract the key from each line (required)")
	flags.StringVarP(&value, "value", "v", "", "How to extract the discrete value from each line (required)")
	flags.StringVarP(&match, "match", "m", "", "Only include lines matching this regular expression")
	flags.BoolVarP(&cfg.Quote, "quote", "q", false, "Quote keys and value headings")
	flags.BoolVarP(&cfg.Sort, "sort", "s", false, "Sort output by key")
	return cmd
}

func newAggregateCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		cfg     tools.AggregateConfig
		csv     bool
		columns string
	)
	cmd := &cobra.Command{
		Use:   "aggregate [flags] [inputpath...]",
		Short: "Aggregate columns of tabular data, one output row per input or per key",
		Long: `Columns are <index>:<kind> where kind is min, max, av, cnt, tot, first,
last, sd or k (group by this column). Negative indexes count from the end
of the line. Simple arithmetic is allowed, e.g. '1:tot / 2:cnt' or
'2:av - -1:av'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Separator = separator(csv)
			if columns != "" {
				cfg.Columns = strings.Split(columns, ",")
			}
			agg, err := tools.NewAggregator(cfg)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return agg.Run(stdin, stdout)
			}
			for _, path := range args {
				if err := aggregateFile(agg, path, stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&csv, "csv", "c", false, "Data is CSV")
	flags.BoolVarP(&cfg.SkipHeader, "skip-header", "f", false, "First row of each input is a header and is skipped")
	flags.StringVarP(&columns, "columns", "l", "", "Comma-separated output columns (required)")
	flags.StringArrayVarP(&cfg.Prefix, "prefix", "p", nil, "Value written before the aggregate columns; repeatable")
	flags.BoolVarP(&cfg.Silent, "silent", "s", false, "Output nothing when there is no data")
	flags.StringArrayVarP(&cfg.Suffix, "suffix", "x", nil, "Value written after the aggregate columns; repeatable")
	return cmd
}

func aggregateFile(agg *tools.Aggregator, path string, stdout io.Writer) error {
	in, err := openInput(path, nil)
	if err != nil {
		return err
	}
	defer in.Close()
	return agg.Run(in, stdout)
}

func newRemoteCmd() *cobra.Command {
	var (
		noClear       bool
		timeout       time.Duration
		serverTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "remote <host:port> [option[=value]...]",
		Short: "Generate a chart on a running chart server",
		Long: `Connects to a server started with --port and generates one chart. Options
use the command-line names without dashes, e.g.
  clichart remote localhost:7000 inputpath=cpu.txt outputpath=cpu.json csv title=CPU`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := make([]config.Setting, 0, len(args)-1)
			for _, arg := range args[1:] {
				name, value, _ := strings.Cut(arg, "=")
				settings = append(settings, config.Setting{Name: name, Arg: value})
			}

			c, err := session.Dial(cmd.Context(), args[0], timeout)
			if err != nil {
				return err
			}
			defer c.Close()
			if serverTimeout > 0 {
				if err := c.SetServerTimeout(cmd.Context(), serverTimeout); err != nil {
					return err
				}
			}
			return c.Generate(cmd.Context(), settings, !noClear)
		},
	}
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Keep options set by earlier requests on the same session")
	cmd.Flags().DurationVar(&timeout, "timeout", session.DefaultResponseTimeout, "How long to wait for each response")
	cmd.Flags().DurationVar(&serverTimeout, "server-timeout", 0, "Ask the server to drop the session after this much inactivity")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
