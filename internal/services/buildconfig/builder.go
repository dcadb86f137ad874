// -----------------------------------------------------------------------
// Package buildconfig folds per-variant, per-ABI trace analyses into one
// deduplicated AggregateBuildConfig.
// -----------------------------------------------------------------------

package buildconfig

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/models"
	"github.com/ternarybob/nativetrace/internal/services/classifier"
	"github.com/ternarybob/nativetrace/internal/services/cmdline"
	"github.com/ternarybob/nativetrace/internal/services/flow"
)

// ErrLibraryCollision is returned by Build when one library key was claimed
// by structurally incompatible descriptors.
var ErrLibraryCollision = errors.New("library key collision")

type language int

const (
	langC language = iota
	langCpp
)

// TraceAnalysis is the result of tokenizing, classifying and analyzing one log
type TraceAnalysis struct {
	Dialect     models.Dialect
	Invocations []models.Invocation
	Steps       []*models.BuildStep
	Chains      map[string]models.DependencyChain
	Warnings    []cmdline.Warning
}

// Builder accumulates libraries and toolchains. It is owned by a single
// caller; only AddVariants runs work concurrently and it folds serially.
type Builder struct {
	opts       Options
	logger     arbor.ILogger
	classifier *classifier.Classifier
	validate   *validator.Validate

	knownAbis map[string]struct{}
	extTable  map[string]language

	buildFiles     []string
	libraries      map[string]*models.LibraryDescriptor
	toolchains     map[string]*models.ToolchainDescriptor
	toolchainBySig map[string]string
	extensions     map[string]language
	collisions     []string
	warnings       []cmdline.Warning
}

// NewBuilder creates an empty builder
func NewBuilder(opts Options, logger arbor.ILogger) *Builder {
	b := &Builder{
		opts:           opts,
		logger:         logger,
		classifier:     classifier.New(opts.Tables, logger),
		validate:       validator.New(),
		knownAbis:      make(map[string]struct{}, len(opts.KnownAbis)),
		extTable:       make(map[string]language),
		libraries:      make(map[string]*models.LibraryDescriptor),
		toolchains:     make(map[string]*models.ToolchainDescriptor),
		toolchainBySig: make(map[string]string),
		extensions:     make(map[string]language),
	}
	for _, abi := range opts.KnownAbis {
		b.knownAbis[abi] = struct{}{}
	}
	for _, ext := range opts.CExtensions {
		b.extTable[ext] = langC
	}
	for _, ext := range opts.CppExtensions {
		if _, ok := b.extTable[ext]; !ok {
			b.extTable[ext] = langCpp
		}
	}
	b.AddBuildFiles(opts.BuildFiles...)
	return b
}

// AddBuildFiles records build description files; duplicates are ignored
func (b *Builder) AddBuildFiles(files ...string) {
	for _, f := range files {
		if f == "" || containsString(b.buildFiles, f) {
			continue
		}
		b.buildFiles = append(b.buildFiles, f)
	}
}

// AnalyzeTrace runs tokenize, classify and flow analysis over rawLog. It
// does not touch the builder's accumulated state.
func (b *Builder) AnalyzeTrace(rawLog string, dialect models.Dialect) *TraceAnalysis {
	return b.analyze(b.logger, rawLog, dialect)
}

func (b *Builder) analyze(logger arbor.ILogger, rawLog string, dialect models.Dialect) *TraceAnalysis {
	invocations, warnings := cmdline.Tokenize(rawLog, dialect)
	steps := classifier.New(b.opts.Tables, logger).ClassifyAll(invocations)
	chains := flow.NewAnalyzer(logger).Analyze(steps)

	for _, w := range warnings {
		logger.Warn().
			Int("line", w.Line).
			Str("text", w.Text).
			Msg(w.Message)
	}

	return &TraceAnalysis{
		Dialect:     dialect,
		Invocations: invocations,
		Steps:       steps,
		Chains:      chains,
		Warnings:    warnings,
	}
}

// AddVariant analyzes one (variant, ABI) log and folds it into the aggregate
func (b *Builder) AddVariant(buildCommand, variant, rawLog string, dialect models.Dialect) {
	b.fold(VariantTrace{
		BuildCommand: buildCommand,
		Variant:      variant,
		Dialect:      dialect,
	}, b.AnalyzeTrace(rawLog, dialect))
}

// Warnings returns every tokenizer warning seen so far
func (b *Builder) Warnings() []cmdline.Warning {
	return append([]cmdline.Warning(nil), b.warnings...)
}

func (b *Builder) fold(trace VariantTrace, analysis *TraceAnalysis) {
	b.warnings = append(b.warnings, analysis.Warnings...)

	outputs := make([]string, 0, len(analysis.Chains))
	for out := range analysis.Chains {
		outputs = append(outputs, out)
	}
	sort.Strings(outputs)

	added := 0
	for _, out := range outputs {
		if b.addLibrary(trace, out, analysis.Chains[out]) {
			added++
		}
	}

	b.logger.Info().
		Str("variant", trace.Variant).
		Int("invocations", len(analysis.Invocations)).
		Int("build_steps", len(analysis.Steps)).
		Int("terminal_outputs", len(outputs)).
		Int("libraries", added).
		Msg("Folded build trace")
}

// addLibrary registers the library built by output; false when the chain
// holds no compiled source.
func (b *Builder) addLibrary(trace VariantTrace, output string, chain models.DependencyChain) bool {
	abi := trace.Abi
	if abi == "" {
		abi = b.abiOf(output)
	}

	var (
		files     []models.SourceFileEntry
		fileExts  []string
		toolchain models.ToolchainDescriptor
	)
	for _, entry := range chain {
		if entry.Step.Kind != models.StepCompile || !b.classifier.IsSource(entry.Source) {
			b.logger.Debug().
				Str("output", output).
				Str("input", entry.Source).
				Msg("Skipping non-source leaf")
			continue
		}

		ext := classifier.Extension(entry.Source)
		lang := b.languageOf(ext, entry.Step.Executable())
		switch {
		case lang == langC && toolchain.CCompilerExecutable == "":
			toolchain.CCompilerExecutable = entry.Step.Executable()
		case lang == langCpp && toolchain.CppCompilerExecutable == "":
			toolchain.CppCompilerExecutable = entry.Step.Executable()
		}
		b.recordExtension(ext, lang)

		if !containsString(fileExts, ext) {
			fileExts = append(fileExts, ext)
		}
		if !containsSource(files, entry.Source) {
			files = append(files, models.SourceFileEntry{
				Src:   entry.Source,
				Flags: cmdline.Join(entry.Step.Flags, trace.Dialect),
			})
		}
	}

	if len(files) == 0 {
		b.logger.Debug().Str("output", output).Msg("No compiled sources, output skipped")
		return false
	}
	sort.Strings(fileExts)

	name := artifactName(output)
	lib := &models.LibraryDescriptor{
		BuildCommand:   trace.BuildCommand,
		Abi:            abi,
		ArtifactName:   name,
		Variant:        trace.Variant,
		Toolchain:      b.registerToolchain(abi, &toolchain),
		Output:         output,
		Files:          files,
		FileExtensions: fileExts,
	}
	b.mergeLibrary(libraryKey(name, trace.Variant, abi), lib)
	return true
}

func (b *Builder) mergeLibrary(key string, lib *models.LibraryDescriptor) {
	existing, ok := b.libraries[key]
	if !ok {
		b.libraries[key] = lib
		return
	}

	if existing.Toolchain != lib.Toolchain || existing.Output != lib.Output {
		b.logger.Warn().
			Str("library", key).
			Str("output", lib.Output).
			Str("existing_output", existing.Output).
			Str("toolchain", lib.Toolchain).
			Str("existing_toolchain", existing.Toolchain).
			Msg("Incompatible library registered under an existing key")
		if !containsString(b.collisions, key) {
			b.collisions = append(b.collisions, key)
		}
		return
	}

	for _, f := range lib.Files {
		if !existing.HasSource(f.Src) {
			existing.Files = append(existing.Files, f)
		}
	}
	for _, ext := range lib.FileExtensions {
		if !containsString(existing.FileExtensions, ext) {
			existing.FileExtensions = append(existing.FileExtensions, ext)
		}
	}
	sort.Strings(existing.FileExtensions)

	b.logger.Debug().
		Str("library", key).
		Int("files", len(existing.Files)).
		Msg("Merged library into existing key")
}

// registerToolchain returns the key of an identical toolchain when one is
// already known, otherwise registers tc under toolchain-<abi>.
func (b *Builder) registerToolchain(abi string, tc *models.ToolchainDescriptor) string {
	sig := tc.Signature()
	if key, ok := b.toolchainBySig[sig]; ok {
		return key
	}

	key := toolchainKey(abi)
	if _, taken := b.toolchains[key]; taken {
		key = disambiguate(key, sig)
	}
	b.toolchains[key] = tc
	b.toolchainBySig[sig] = key

	b.logger.Debug().
		Str("toolchain", key).
		Str("c", tc.CCompilerExecutable).
		Str("cpp", tc.CppCompilerExecutable).
		Msg("Registered toolchain")
	return key
}

// languageOf classifies ext by the table, falling back to the compiler role
func (b *Builder) languageOf(ext, compiler string) language {
	if lang, ok := b.extensions[ext]; ok {
		return lang
	}
	if lang, ok := b.extTable[ext]; ok {
		return lang
	}
	if b.classifier.IsCppCompiler(compiler) {
		return langCpp
	}
	return langC
}

// recordExtension keeps the first classification of ext
func (b *Builder) recordExtension(ext string, lang language) {
	if _, ok := b.extensions[ext]; !ok {
		b.extensions[ext] = lang
	}
}

// Build returns an independent, validated snapshot of the aggregate
func (b *Builder) Build() (*models.AggregateBuildConfig, error) {
	if len(b.collisions) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrLibraryCollision, strings.Join(b.collisions, ", "))
	}

	cfg := &models.AggregateBuildConfig{
		BuildFiles:        append([]string{}, b.buildFiles...),
		Libraries:         make(map[string]*models.LibraryDescriptor, len(b.libraries)),
		Toolchains:        make(map[string]*models.ToolchainDescriptor, len(b.toolchains)),
		CFileExtensions:   []string{},
		CppFileExtensions: []string{},
	}
	for key, lib := range b.libraries {
		cfg.Libraries[key] = lib.Clone()
	}
	for key, tc := range b.toolchains {
		copied := *tc
		cfg.Toolchains[key] = &copied
	}
	for ext, lang := range b.extensions {
		if lang == langCpp {
			cfg.CppFileExtensions = append(cfg.CppFileExtensions, ext)
		} else {
			cfg.CFileExtensions = append(cfg.CFileExtensions, ext)
		}
	}
	sort.Strings(cfg.CFileExtensions)
	sort.Strings(cfg.CppFileExtensions)

	if err := b.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid build configuration: %w", err)
	}
	return cfg, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsSource(files []models.SourceFileEntry, src string) bool {
	for _, f := range files {
		if f.Src == src {
			return true
		}
	}
	return false
}
