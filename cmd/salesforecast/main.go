// Command salesforecast runs the SARIMA sales forecasting pipeline.
//
// Usage:
//
//	salesforecast batch    [-config file] [-env file] [-input file]
//	salesforecast forecast [-config file] [-env file] [-input file] [-family F] [-name N]
//	salesforecast evaluate [-config file] [-env file] [-input file] [-family F] [-name N]
//	salesforecast outliers [-config file] [-env file] [-input file] [-out dir]
//	salesforecast init     [-config file]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sartorproj/salesforecast/config"
	"github.com/sartorproj/salesforecast/dataset"
)

// envKeys are the environment variables resolved into the configuration.
var envKeys = []string{
	"DATE_COLUMN",
	"VALUE_COLUMN",
	"PRODUCT_FAMILY_COLUMN",
	"PRODUCT_NAME_COLUMN",
	"FORECAST_TYPE",
	"FORECAST_LENGTH",
	"PERIOD_OF_SEASONALITY",
	"CONFIDENCE_LEVEL",
	"INPUT_DATA_PATH",
	"FORECAST_DATA_PATH",
	"FORECAST_ACCURACY_PATH",
	"LOG_LEVEL",
}

// runner executes a command once flags are parsed.
type runner func(ctx context.Context, env *environment) error

type command struct {
	name  string
	usage string
	// setup registers command flags and returns the command body.
	setup func(fs *flag.FlagSet) runner
	// raw commands run without loading the configuration.
	raw bool
}

var commands = []command{
	{name: "batch", usage: "forecast and backtest every product hierarchy slice", setup: batchCommand},
	{name: "forecast", usage: "forecast a single slice and print it as JSON", setup: forecastCommand},
	{name: "evaluate", usage: "backtest a single slice and print the metrics as JSON", setup: evaluateCommand},
	{name: "outliers", usage: "split the input rows at the upper Tukey whisker", setup: outliersCommand},
	{name: "init", usage: "write the default configuration file", setup: initCommand, raw: true},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := os.Args[1]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := dispatch(ctx, c, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "salesforecast %s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: salesforecast <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.usage)
	}
}

// environment is the resolved configuration shared by every command.
type environment struct {
	configPath string
	config     *config.Config
	logger     *zap.Logger
	input      string
}

func dispatch(ctx context.Context, c command, args []string) error {
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	configPath := fs.String("config", "salesforecast.toml", "configuration file")
	envPath := fs.String("env", ".env", "dotenv file with configuration overrides")
	input := fs.String("input", "", "input .csv or .xlsx file (overrides the configuration)")
	run := c.setup(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.raw {
		return run(ctx, &environment{configPath: *configPath})
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	env, err := readEnv(*envPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in := cfg.Paths.Input
	if *input != "" {
		in = *input
	}
	return run(ctx, &environment{configPath: *configPath, config: cfg, logger: logger, input: in})
}

// readEnv resolves the configuration keys from the dotenv file and the
// process environment. Process values win, as with godotenv.Load.
func readEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		env = map[string]string{}
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = level
	return zc.Build()
}

func loadTable(path string) (*dataset.Table, error) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}
	return table, nil
}
