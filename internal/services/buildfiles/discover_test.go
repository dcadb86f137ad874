package buildfiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestIsBuildFile(t *testing.T) {
	buildFiles := []string{
		"jni/Android.mk",
		"jni/Application.mk",
		"Makefile",
		"Makefile.am",
		"GNUmakefile",
		"src/CMakeLists.txt",
		"cmake/toolchain.cmake",
		"configure",
		"configure.ac",
		"app.vcxproj",
		"app.sln",
	}
	for _, p := range buildFiles {
		assert.True(t, IsBuildFile(p), p)
	}

	for _, p := range []string{"jni/a.c", "README.md", "makefile.txt", "build.gradle"} {
		assert.False(t, IsBuildFile(p), p)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"jni/Android.mk":           "LOCAL_MODULE := foo",
		"jni/Application.mk":       "APP_ABI := all",
		"jni/foo.c":                "int x;",
		"jni/sub/Android.mk":       "",
		"obj/local/x86/Android.mk": "",
		".git/Makefile":            "",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	found, err := Discover(context.Background(), root, arbor.NewNoOpLogger())
	require.NoError(t, err)

	want := []string{
		filepath.ToSlash(filepath.Join(root, "jni", "Android.mk")),
		filepath.ToSlash(filepath.Join(root, "jni", "Application.mk")),
		filepath.ToSlash(filepath.Join(root, "jni", "sub", "Android.mk")),
	}
	assert.Equal(t, want, found)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), arbor.NewNoOpLogger())
	assert.Error(t, err)
}
