package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Output.Format)
	assert.Contains(t, config.Builder.KnownAbis, "arm64-v8a")
	assert.Contains(t, config.Builder.CExtensions, "S")
	assert.Contains(t, config.Builder.CppExtensions, "cpp")
	assert.Empty(t, config.Variants)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFiles_Layering(t *testing.T) {
	base := writeConfig(t, "base.toml", `
[logging]
level = "debug"

[output]
format = "yaml"

[builder]
parallelism = 4

[classifier]
source_extensions = ["m", "mm"]
launchers = ["buildcache"]

[[variants]]
name = "debug"
dialect = "posix"
build_command = "ndk-build -n NDK_DEBUG=1"
log_file = "logs/debug.txt"
`)
	override := writeConfig(t, "override.toml", `
[output]
format = "json"
path = "out/aggregate.json"
`)

	config, err := LoadFromFiles(arbor.NewNoOpLogger(), base, "", override)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, "out/aggregate.json", config.Output.Path)
	assert.Equal(t, 4, config.Builder.Parallelism)
	require.Len(t, config.Variants, 1)
	assert.Equal(t, "debug", config.Variants[0].Name)
	assert.Equal(t, "logs/debug.txt", config.Variants[0].LogFile)
	require.NoError(t, config.Validate())

	opts := config.BuilderOptions()
	assert.Contains(t, opts.Tables.SourceExtensions, "m")
	assert.Contains(t, opts.Tables.SourceExtensions, "cpp")
	assert.Contains(t, opts.Tables.Launchers, "buildcache")
	assert.Contains(t, opts.Tables.Launchers, "ccache")
	assert.Equal(t, 4, opts.Parallelism)
}

func TestLoadFromFiles_VarReferences(t *testing.T) {
	path := writeConfig(t, "vars.toml", `
[vars]
root = "/work/app"
ndk = "/opt/ndk"

[builder]
build_files = ["{root}/jni/Android.mk"]

[[variants]]
name = "release"
build_command = "{ndk}/ndk-build -n"
log_file = "{root}/logs/release.txt"
`)

	config, err := LoadFromFiles(arbor.NewNoOpLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/work/app/jni/Android.mk"}, config.Builder.BuildFiles)
	assert.Equal(t, "/opt/ndk/ndk-build -n", config.Variants[0].BuildCommand)
	assert.Equal(t, "/work/app/logs/release.txt", config.Variants[0].LogFile)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "env.toml", `
[logging]
level = "debug"
`)
	t.Setenv("NATIVETRACE_LOG_LEVEL", "warn")
	t.Setenv("NATIVETRACE_OUTPUT_FORMAT", "yaml")
	t.Setenv("NATIVETRACE_PARALLELISM", "2")
	t.Setenv("NATIVETRACE_KNOWN_ABIS", "x86, arm64-v8a,")

	config, err := LoadFromFiles(arbor.NewNoOpLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, 2, config.Builder.Parallelism)
	assert.Equal(t, []string{"x86", "arm64-v8a"}, config.Builder.KnownAbis)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, "yaml", "result.yaml", "")

	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, "result.yaml", config.Output.Path)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(arbor.NewNoOpLogger(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeConfig(t, "bad.toml", "[output\nformat = ")
	_, err = LoadFromFiles(arbor.NewNoOpLogger(), bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"negative parallelism", func(c *Config) { c.Builder.Parallelism = -1 }},
		{"variant without log", func(c *Config) {
			c.Variants = []VariantConfig{{Name: "debug"}}
		}},
		{"variant with unknown dialect", func(c *Config) {
			c.Variants = []VariantConfig{{Name: "debug", LogFile: "a.txt", Dialect: "cmd"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
