package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/models"
	"github.com/ternarybob/nativetrace/internal/services/buildconfig"
	"github.com/ternarybob/nativetrace/internal/services/classifier"
)

// ErrInvalidConfig wraps every configuration validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Logging    LoggingConfig       `toml:"logging"`
	Classifier classifier.Tables   `toml:"classifier"` // Extra entries, merged onto the built-in tables
	Builder    buildconfig.Options `toml:"builder"`
	Output     OutputConfig        `toml:"output"`
	Project    ProjectConfig       `toml:"project"`
	Vars       map[string]string   `toml:"vars"` // Values for {name} references in any string setting
	Variants   []VariantConfig     `toml:"variants" validate:"dive"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"` // default: "15:04:05"
}

type OutputConfig struct {
	Format string `toml:"format" validate:"oneof=json yaml"`
	Path   string `toml:"path"` // Empty writes to stdout
	Color  bool   `toml:"color"`
}

// ProjectConfig locates build description files referenced by the aggregate
type ProjectConfig struct {
	Root string `toml:"root"` // Searched for Android.mk, Makefile, CMakeLists.txt, ...; empty disables discovery
}

// VariantConfig is one captured dry-run log to analyze
type VariantConfig struct {
	Name         string `toml:"name" validate:"required"`
	Abi          string `toml:"abi"`           // Overrides the ABI derived from output paths
	Dialect      string `toml:"dialect"`       // "windows" or "posix"; empty uses the host OS
	BuildCommand string `toml:"build_command"` // Passed through to every library of this variant
	LogFile      string `toml:"log_file" validate:"required"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"file"},
			TimeFormat: "15:04:05",
		},
		Builder: buildconfig.DefaultOptions(),
		Output: OutputConfig{
			Format: "json",
			Color:  true,
		},
		Vars: map[string]string{},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> vars -> env.
// CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(logger arbor.ILogger, paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if len(config.Vars) > 0 {
		if err := ReplaceInStruct(config, config.Vars, logger); err != nil {
			return nil, fmt.Errorf("failed to resolve config references: %w", err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies NATIVETRACE_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("NATIVETRACE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("NATIVETRACE_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}
	if format := os.Getenv("NATIVETRACE_OUTPUT_FORMAT"); format != "" {
		config.Output.Format = format
	}
	if path := os.Getenv("NATIVETRACE_OUTPUT_PATH"); path != "" {
		config.Output.Path = path
	}
	if noColor := os.Getenv("NO_COLOR"); noColor != "" {
		config.Output.Color = false
	}
	if root := os.Getenv("NATIVETRACE_PROJECT_ROOT"); root != "" {
		config.Project.Root = root
	}
	if abis := os.Getenv("NATIVETRACE_KNOWN_ABIS"); abis != "" {
		config.Builder.KnownAbis = splitList(abis)
	}
	if parallelism := os.Getenv("NATIVETRACE_PARALLELISM"); parallelism != "" {
		if p, err := strconv.Atoi(parallelism); err == nil {
			config.Builder.Parallelism = p
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, format, output, logLevel string) {
	if format != "" {
		config.Output.Format = format
	}
	if output != "" {
		config.Output.Path = output
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate checks struct constraints and variant dialects
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, v := range c.Variants {
		if _, err := models.ParseDialect(v.Dialect); err != nil {
			return fmt.Errorf("%w: variant %s: %v", ErrInvalidConfig, v.Name, err)
		}
	}
	return nil
}

// BuilderOptions returns the builder options with the classifier tables
// extended by the [classifier] section.
func (c *Config) BuilderOptions() buildconfig.Options {
	opts := c.Builder
	opts.Tables = classifier.DefaultTables().Merge(c.Classifier)
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
