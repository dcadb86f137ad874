package models

// StepKind tags which tool family produced a BuildStep
type StepKind string

const (
	StepCompile StepKind = "compile"
	StepArchive StepKind = "archive"
)

// StepInput is one input file of a build step
type StepInput struct {
	Path string `json:"path" yaml:"path"`
	// IsSource marks an original source file (recognised source extension)
	// as opposed to an intermediate artifact such as an object file.
	IsSource bool `json:"is_source" yaml:"is_source"`
}

// BuildStep is a classified Invocation with explicit file roles.
// Created by the classifier and read-only afterwards.
type BuildStep struct {
	Kind       StepKind    `json:"kind" yaml:"kind"`
	Invocation Invocation  `json:"invocation" yaml:"invocation"`
	Inputs     []StepInput `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs    []string    `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// Flags holds the arguments that describe how inputs are processed:
	// everything except the inputs, the output flag and its value, and -c.
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// InputPaths returns the input paths in order
func (s *BuildStep) InputPaths() []string {
	paths := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		paths[i] = in.Path
	}
	return paths
}

// Executable returns the invoked tool
func (s *BuildStep) Executable() string {
	return s.Invocation.Executable
}

// ChainEntry pairs an original source with the step that consumed it directly
type ChainEntry struct {
	Source string     `json:"source" yaml:"source"`
	Step   *BuildStep `json:"step" yaml:"step"`
}

// DependencyChain is the backward trace of one terminal output, sorted by source
type DependencyChain []ChainEntry

// Sources returns the source paths of the chain in order
func (c DependencyChain) Sources() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Source
	}
	return out
}
