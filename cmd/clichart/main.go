package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/cognicore/clichart/pkg/clichart"
	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
	"github.com/cognicore/clichart/pkg/clichart/server"
	"github.com/cognicore/clichart/pkg/clichart/session"
	"github.com/cognicore/clichart/pkg/clichart/watch"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if failed, err := cmd.ExecuteContextC(ctx); err != nil {
		report(failed, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clichart [flags] [inputpath]",
		Short: "Chart whitespace- or comma-separated data",
		Long: `Reads tabular data from a file or standard input and builds a chart
of the selected columns, saved as JSON, YAML or into a SQLite chart store.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(getString(cmd, "log-level"))
			if err != nil {
				return &config.OptionsError{Msg: err.Error()}
			}
			log.SetOutput(stderr)
			log.SetLevel(level)
			return nil
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &config.OptionsError{Msg: "Can only include 1 input file path"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, stdin, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.OptionsError{Msg: err.Error()}
	})

	flags := cmd.Flags()
	for i := range config.Definitions {
		d := &config.Definitions[i]
		if d.Kind.TakesArg() {
			flags.StringP(d.Long, d.Short, "", d.Usage)
		} else {
			flags.BoolP(d.Long, d.Short, false, d.Usage)
		}
	}
	flags.Bool("cliserver", false, "Run as a CLI server, reading commands from standard input")
	flags.Int("max-connections", 0, "Maximum concurrent sessions in TCP server mode (0 for no limit)")
	flags.String("config", "", "YAML profile applied before the other options")
	flags.String("save-profile", "", "Write the effective options to a YAML profile and exit")
	flags.Bool("watch", false, "Regenerate the chart whenever the input file changes")
	flags.SortFlags = false
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newChartsCmd(stdout),
		newPruneCmd(stdout),
		newHistogramCmd(stdin, stdout),
		newLineStatsCmd(stdin, stdout),
		newDiscreteStatsCmd(stdin, stdout),
		newAggregateCmd(stdin, stdout),
		newRemoteCmd(),
	)
	return cmd
}

func run(cmd *cobra.Command, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}

	if path := getString(cmd, "save-profile"); path != "" {
		return config.SaveOptions(path, opts)
	}

	ctx := cmd.Context()
	newGenerator := func() *clichart.Generator {
		return clichart.NewGenerator(clichart.Config{Stdin: stdin})
	}

	switch {
	case opts.Port > 0:
		log.WithField("port", opts.Port).Info("starting in TCP/IP server mode")
		srv := server.New(server.Config{
			Addr:           fmt.Sprintf(":%d", opts.Port),
			MaxConnections: getInt(cmd, "max-connections"),
			NewGenerator:   func() session.ChartGenerator { return newGenerator() },
			Options:        opts,
		}, nil)
		return srv.ListenAndServe(ctx)

	case opts.CliServer:
		sess := session.New(newGenerator(), session.Config{Options: opts})
		return sess.Interact(ctx, stdin, stdout)
	}

	if getBool(cmd, "watch") {
		if opts.InputPath == "" || opts.OutputPath == "" {
			return &config.OptionsError{Msg: "Watching requires input and output file paths"}
		}
		gen := newGenerator()
		w, err := watch.New(opts.InputPath, func(ctx context.Context) error {
			_, err := gen.Generate(ctx, opts)
			return err
		}, watch.Config{})
		if err != nil {
			return err
		}
		return w.Run(ctx)
	}

	if opts.InputPath == "" {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			log.Info("reading chart data from standard input, end with Ctrl-D")
		}
	}

	c, err := newGenerator().Generate(ctx, opts)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		return clichart.WriteChart(stdout, c, clichart.FormatJSON)
	}
	return nil
}

// loadOptions applies the profile, then every option given on the command
// line, then the positional input path.
func loadOptions(cmd *cobra.Command, args []string) (*config.Options, error) {
	loader := config.Loader{ProfilePath: getString(cmd, "config")}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		def, ok := config.Lookup(f.Name)
		if !ok {
			return
		}
		if !def.Kind.TakesArg() && f.Value.String() != "true" {
			return
		}
		loader.Settings = append(loader.Settings, config.Setting{Name: f.Name, Arg: f.Value.String()})
	})
	if len(args) == 1 {
		loader.Settings = append(loader.Settings, config.Setting{Name: "inputpath", Arg: args[0]})
	}

	opts, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if getBool(cmd, "cliserver") {
		opts.CliServer = true
	}
	return opts, nil
}

// report prints err the way the one-shot tool always has: invalid options
// come with usage, everything else with a category prefix.
func report(cmd *cobra.Command, err error) {
	var saveErr *clichart.SaveError
	switch {
	case errors.Is(err, internalerr.ErrInvalidOptions):
		cmd.PrintErrln(err.Error())
		cmd.PrintErrln()
		cmd.PrintErr(cmd.UsageString())
	case errors.Is(err, internalerr.ErrInvalidData):
		cmd.PrintErrln("Invalid data: " + err.Error())
	case errors.As(err, &saveErr):
		cmd.PrintErrln("Error saving chart: " + err.Error())
	case errors.Is(err, session.ErrInactive):
		cmd.PrintErrln("Exiting - " + err.Error())
	default:
		cmd.PrintErrln("Error: " + err.Error())
	}
}

func getString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}

func getInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(err)
	}
	return v
}

func getBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(err)
	}
	return v
}
