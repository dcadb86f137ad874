package buildconfig

import "github.com/ternarybob/nativetrace/internal/services/classifier"

// Options configures a Builder
type Options struct {
	// KnownAbis are matched against output path components, nearest first
	KnownAbis []string `toml:"known_abis"`
	// CExtensions and CppExtensions partition source extensions by language
	CExtensions   []string `toml:"c_extensions"`
	CppExtensions []string `toml:"cpp_extensions"`
	// BuildFiles are passed through to the aggregate untouched
	BuildFiles []string `toml:"build_files"`
	// Parallelism bounds AddVariants; 0 means unbounded
	Parallelism int `toml:"parallelism" validate:"gte=0"`

	Tables classifier.Tables `toml:"-"`
}

// DefaultOptions returns the built-in ABI list and extension tables
func DefaultOptions() Options {
	return Options{
		KnownAbis: []string{
			"armeabi", "armeabi-v7a", "arm64-v8a",
			"x86", "x86_64",
			"mips", "mips64",
			"riscv64",
		},
		CExtensions:   []string{"c", "S", "s"},
		CppExtensions: []string{"cc", "cp", "cpp", "cxx", "c++", "C", "CPP"},
		Tables:        classifier.DefaultTables(),
	}
}
