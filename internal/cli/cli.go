package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/exptgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varsFlag collects repeatable `-var key=value` flags.
type varsFlag map[string]string

func (v varsFlag) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, k+"="+val)
	}
	return strings.Join(pairs, ",")
}

func (v varsFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return errors.New("must be in key=value form")
	}
	v[key] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("exptgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
exptgrid - Generate experiment lists for Slurm job arrays from a hyperparameter grid.

Usage:
  exptgrid [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a single .hcl/.yaml file or a directory containing them.

Every experiment writes one invocation per line to its output file, so
task N of a job array runs line N.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the experiment configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the experiment configuration file or directory (shorthand).")
	experimentFlag := flagSet.String("experiment", "", "Comma-separated list of experiments to generate. Default: all.")
	outputFlag := flagSet.String("output", "", "Override the output file. Requires exactly one experiment.")
	oFlag := flagSet.String("o", "", "Override the output file (shorthand).")
	userFlag := flagSet.String("user", "", "User name used for scratch_home. Defaults to $USER.")
	scratchFlag := flagSet.String("scratch-disk", app.DefaultScratchDisk, "Node-local scratch disk.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the experiment lists instead of writing them.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	vars := varsFlag{}
	flagSet.Var(vars, "var", "Set a variable available as var.<key>, in key=value form. Repeatable.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	outPath := *outputFlag
	if outPath == "" {
		outPath = *oFlag
	}

	var experiments []string
	if *experimentFlag != "" {
		for _, name := range strings.Split(*experimentFlag, ",") {
			experiments = append(experiments, strings.TrimSpace(name))
		}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg := app.Config{
		ConfigPath:  path,
		Experiments: experiments,
		Output:      outPath,
		DryRun:      *dryRunFlag,
		User:        *userFlag,
		ScratchDisk: *scratchFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	}
	if len(vars) > 0 {
		cfg.Vars = vars
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
