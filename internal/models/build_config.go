// -----------------------------------------------------------------------
// Build configuration model - consolidated result of native trace analysis
// -----------------------------------------------------------------------

package models

import "sort"

// SourceFileEntry is one compiled source and the flags it was compiled with
type SourceFileEntry struct {
	Src   string `json:"src" yaml:"src" validate:"required"`
	Flags string `json:"flags" yaml:"flags"`
}

// ToolchainDescriptor names the compilers used for one ABI
type ToolchainDescriptor struct {
	CCompilerExecutable   string `json:"cCompilerExecutable,omitempty" yaml:"c_compiler_executable,omitempty" validate:"required_without=CppCompilerExecutable"`
	CppCompilerExecutable string `json:"cppCompilerExecutable,omitempty" yaml:"cpp_compiler_executable,omitempty" validate:"required_without=CCompilerExecutable"`
}

// Signature identifies a toolchain by compiler role and path
func (t *ToolchainDescriptor) Signature() string {
	return "c=" + t.CCompilerExecutable + "\x00cpp=" + t.CppCompilerExecutable
}

// LibraryDescriptor describes one build artifact for one variant and ABI
type LibraryDescriptor struct {
	BuildCommand   string            `json:"buildCommand" yaml:"build_command"`
	Abi            string            `json:"abi" yaml:"abi"`
	ArtifactName   string            `json:"artifactName" yaml:"artifact_name" validate:"required"`
	Variant        string            `json:"variant,omitempty" yaml:"variant,omitempty"`
	Toolchain      string            `json:"toolchain" yaml:"toolchain" validate:"required"`
	Output         string            `json:"output" yaml:"output" validate:"required"`
	Files          []SourceFileEntry `json:"files" yaml:"files" validate:"required,min=1,dive"`
	FileExtensions []string          `json:"fileExtensions,omitempty" yaml:"file_extensions,omitempty"`
}

// HasSource reports whether src is already listed
func (l *LibraryDescriptor) HasSource(src string) bool {
	for _, f := range l.Files {
		if f.Src == src {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (l *LibraryDescriptor) Clone() *LibraryDescriptor {
	c := *l
	c.Files = append([]SourceFileEntry(nil), l.Files...)
	c.FileExtensions = append([]string(nil), l.FileExtensions...)
	return &c
}

// AggregateBuildConfig is the union of all analysed (variant, ABI) pairs.
// Library and toolchain keys are unique.
type AggregateBuildConfig struct {
	BuildFiles        []string                        `json:"buildFiles" yaml:"build_files"`
	Libraries         map[string]*LibraryDescriptor   `json:"libraries" yaml:"libraries" validate:"dive"`
	Toolchains        map[string]*ToolchainDescriptor `json:"toolchains" yaml:"toolchains" validate:"dive"`
	CFileExtensions   []string                        `json:"cFileExtensions" yaml:"c_file_extensions"`
	CppFileExtensions []string                        `json:"cppFileExtensions" yaml:"cpp_file_extensions"`
}

// LibraryKeys returns the library keys sorted
func (a *AggregateBuildConfig) LibraryKeys() []string {
	keys := make([]string, 0, len(a.Libraries))
	for k := range a.Libraries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToolchainKeys returns the toolchain keys sorted
func (a *AggregateBuildConfig) ToolchainKeys() []string {
	keys := make([]string, 0, len(a.Toolchains))
	for k := range a.Toolchains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
