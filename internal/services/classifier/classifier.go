// -----------------------------------------------------------------------
// Package classifier turns tokenized invocations into build steps with
// explicit input and output roles. Compilers and archivers are recognised;
// every other tool is irrelevant to the dependency structure.
// -----------------------------------------------------------------------

package classifier

import (
	"path"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/models"
)

// toolKind is the closed set of tool families the classifier dispatches on
type toolKind int

const (
	toolIrrelevant toolKind = iota
	toolCompiler
	toolArchiver
)

func (k toolKind) String() string {
	switch k {
	case toolCompiler:
		return "compiler"
	case toolArchiver:
		return "archiver"
	default:
		return "irrelevant"
	}
}

var (
	// ar, gcc-ar, llvm-ar, arm-linux-androideabi-ar
	archiverPattern = regexp.MustCompile(`(^|[-_])ar$`)

	// gcc, g++, clang, clang++, cc, c++ and their target-prefixed forms
	compilerPattern = regexp.MustCompile(`gcc|g\+\+|clang|(^|[-_])c(c|\+\+)$`)
)

// Classifier classifies invocations using a fixed set of tables
type Classifier struct {
	tables Tables
	logger arbor.ILogger

	sourceExts       map[string]struct{}
	compilerValue    map[string]struct{}
	compileOnly      map[string]struct{}
	archiverValue    map[string]struct{}
	companionTools   []string
	launchers        map[string]struct{}
	executableSuffix []string
}

// New creates a classifier for the given tables
func New(tables Tables, logger arbor.ILogger) *Classifier {
	suffixes := make([]string, len(tables.ExecutableSuffixes))
	for i, s := range tables.ExecutableSuffixes {
		suffixes[i] = strings.ToLower(s)
	}
	return &Classifier{
		tables:           tables,
		logger:           logger,
		sourceExts:       toSet(tables.SourceExtensions),
		compilerValue:    toSet(tables.CompilerValueFlags),
		compileOnly:      toSet(tables.CompileOnlyFlags),
		archiverValue:    toSet(tables.ArchiverValueFlags),
		companionTools:   tables.CompanionTools,
		launchers:        toSet(tables.Launchers),
		executableSuffix: suffixes,
	}
}

// NewDefault creates a classifier with DefaultTables
func NewDefault(logger arbor.ILogger) *Classifier {
	return New(DefaultTables(), logger)
}

// Tables returns the policy the classifier was built with
func (c *Classifier) Tables() Tables {
	return c.tables
}

// Classify returns the build step for inv, or false when the invocation is
// irrelevant or produces no output.
func (c *Classifier) Classify(inv models.Invocation) (*models.BuildStep, bool) {
	inv = c.unwrapLauncher(inv)

	var step *models.BuildStep
	switch c.kindOf(inv.Executable) {
	case toolCompiler:
		step = c.classifyCompile(inv)
	case toolArchiver:
		step = c.classifyArchive(inv)
	default:
		return nil, false
	}

	if step == nil || len(step.Outputs) == 0 {
		return nil, false
	}
	return step, true
}

// ClassifyAll classifies invocations in order and keeps only actionable steps
func (c *Classifier) ClassifyAll(invocations []models.Invocation) []*models.BuildStep {
	steps := make([]*models.BuildStep, 0, len(invocations))
	for _, inv := range invocations {
		if step, ok := c.Classify(inv); ok {
			steps = append(steps, step)
		}
	}

	c.logger.Debug().
		Int("invocations", len(invocations)).
		Int("build_steps", len(steps)).
		Msg("Classified build invocations")

	return steps
}

// IsSource reports whether p has a recognised source extension
func (c *Classifier) IsSource(p string) bool {
	_, ok := c.sourceExts[Extension(p)]
	return ok
}

// IsCompiler reports whether exe names a compiler driver
func (c *Classifier) IsCompiler(exe string) bool {
	return c.kindOf(exe) == toolCompiler
}

// IsCppCompiler reports whether exe names a C++ compiler driver
func (c *Classifier) IsCppCompiler(exe string) bool {
	name := c.toolName(exe)
	return c.kindOf(exe) == toolCompiler && strings.Contains(name, "++")
}

func (c *Classifier) kindOf(exe string) toolKind {
	name := c.toolName(exe)
	if name == "" {
		return toolIrrelevant
	}
	if archiverPattern.MatchString(name) {
		return toolArchiver
	}
	for _, tool := range c.companionTools {
		if name == tool || strings.HasSuffix(name, "-"+tool) {
			return toolIrrelevant
		}
	}
	if compilerPattern.MatchString(name) {
		return toolCompiler
	}
	return toolIrrelevant
}

// toolName lowercases the executable basename and strips platform suffixes
func (c *Classifier) toolName(exe string) string {
	name := strings.ToLower(BaseName(exe))
	for _, suffix := range c.executableSuffix {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

func (c *Classifier) unwrapLauncher(inv models.Invocation) models.Invocation {
	for len(inv.Args) > 0 {
		if _, ok := c.launchers[c.toolName(inv.Executable)]; !ok {
			break
		}
		inv = models.Invocation{Executable: inv.Args[0], Args: inv.Args[1:]}
	}
	return inv
}

// BaseName returns the last element of p, accepting both / and \ separators
func BaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// DirName returns everything before the last / or \ in p, or ""
func DirName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[:i]
	}
	return ""
}

// Extension returns the extension of p without the dot, or ""
func Extension(p string) string {
	return strings.TrimPrefix(path.Ext(BaseName(p)), ".")
}
