package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input string
		want  Dialect
	}{
		{"windows", DialectWindows},
		{"WIN32", DialectWindows},
		{" posix ", DialectPOSIX},
		{"linux", DialectPOSIX},
		{"darwin", DialectPOSIX},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseDialect("cmd")
	assert.Error(t, err)

	_, err = ParseDialect("")
	assert.NoError(t, err)
}

func TestDialectForOS(t *testing.T) {
	assert.Equal(t, DialectWindows, DialectForOS("windows"))
	assert.Equal(t, DialectPOSIX, DialectForOS("linux"))
	assert.Equal(t, DialectPOSIX, DialectForOS("darwin"))
	assert.Equal(t, "windows", DialectWindows.String())
	assert.Equal(t, "posix", DialectPOSIX.String())
}

func TestInvocation(t *testing.T) {
	tokens := []string{"gcc", "-c", "a.c"}
	inv := NewInvocation(tokens)
	tokens[1] = "changed"

	assert.Equal(t, "gcc", inv.Executable)
	assert.Equal(t, []string{"-c", "a.c"}, inv.Args)
	assert.Equal(t, "gcc -c a.c", inv.String())

	assert.True(t, inv.Equal(Invocation{Executable: "gcc", Args: []string{"-c", "a.c"}}))
	assert.False(t, inv.Equal(Invocation{Executable: "gcc", Args: []string{"-c"}}))
	assert.False(t, inv.Equal(Invocation{Executable: "g++", Args: []string{"-c", "a.c"}}))

	bare := NewInvocation([]string{"make"})
	assert.NotNil(t, bare.Args)
	assert.Equal(t, "make", bare.String())
	assert.Equal(t, Invocation{}, NewInvocation(nil))
}

func TestLibraryDescriptor_Clone(t *testing.T) {
	lib := &LibraryDescriptor{
		ArtifactName:   "foo",
		Files:          []SourceFileEntry{{Src: "a.c", Flags: "-O2"}},
		FileExtensions: []string{"c"},
	}
	clone := lib.Clone()
	clone.Files[0].Src = "b.c"
	clone.FileExtensions[0] = "cpp"

	assert.Equal(t, "a.c", lib.Files[0].Src)
	assert.Equal(t, "c", lib.FileExtensions[0])
	assert.True(t, lib.HasSource("a.c"))
	assert.False(t, lib.HasSource("b.c"))
}

func TestToolchainSignature(t *testing.T) {
	c := &ToolchainDescriptor{CCompilerExecutable: "clang"}
	cpp := &ToolchainDescriptor{CppCompilerExecutable: "clang"}
	assert.NotEqual(t, c.Signature(), cpp.Signature())
	assert.Equal(t, c.Signature(), (&ToolchainDescriptor{CCompilerExecutable: "clang"}).Signature())
}

func TestAggregateKeysSorted(t *testing.T) {
	agg := &AggregateBuildConfig{
		Libraries:  map[string]*LibraryDescriptor{"b": {}, "a": {}, "c": {}},
		Toolchains: map[string]*ToolchainDescriptor{"toolchain-x86": {}, "toolchain-arm64-v8a": {}},
	}
	assert.Equal(t, []string{"a", "b", "c"}, agg.LibraryKeys())
	assert.Equal(t, []string{"toolchain-arm64-v8a", "toolchain-x86"}, agg.ToolchainKeys())

	chain := DependencyChain{{Source: "a.c"}, {Source: "b.c"}}
	assert.Equal(t, []string{"a.c", "b.c"}, chain.Sources())
}
