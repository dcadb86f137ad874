// -----------------------------------------------------------------------
// nativetrace - analyze captured native build dry-run logs into one
// aggregate build configuration
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	outputFormat = flag.String("format", "", "Output format: json or yaml (overrides config)")
	outputPath   = flag.String("out", "", "Output file path, stdout when empty (overrides config)")
	logLevel     = flag.String("log-level", "", "Log level (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("NativeTrace version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("nativetrace.toml"); err == nil {
			configFiles = append(configFiles, "nativetrace.toml")
		}
	}

	// Startup order: config -> CLI overrides -> validate -> logger -> banner
	config, err := common.LoadFromFiles(arbor.NewNoOpLogger(), configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration %v: %v\n", []string(configFiles), err)
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *outputFormat, *outputPath, *logLevel)
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	// stdout carries the result unless it is written to a file
	if config.Output.Path != "" {
		common.PrintBanner(common.GetVersion())
	}

	logger.Info().
		Strs("config_files", configFiles).
		Str("format", config.Output.Format).
		Int("variants", len(config.Variants)).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error().Err(err).Msg("Analysis failed")
		fmt.Fprintf(os.Stderr, "%s %v\n", failure("error:"), err)
		stop()
		os.Exit(1)
	}
}
