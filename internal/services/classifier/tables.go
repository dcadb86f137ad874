package classifier

// Tables is the policy data the classifier runs on. The values are observed
// from real compiler and archiver front ends, not derived from a formal CLI
// grammar, so they are extended through configuration as new tools appear.
type Tables struct {
	// SourceExtensions lists extensions (without dot, case-sensitive) of
	// original source files.
	SourceExtensions []string `toml:"source_extensions"`
	// CompilerValueFlags take the next argument as their own value.
	CompilerValueFlags []string `toml:"compiler_value_flags"`
	// CompileOnlyFlags are dropped from the per-source flag string.
	CompileOnlyFlags []string `toml:"compile_only_flags"`
	// ArchiverValueFlags take the next argument as their own value.
	ArchiverValueFlags []string `toml:"archiver_value_flags"`
	// ExecutableSuffixes are stripped (case-insensitive) before matching.
	ExecutableSuffixes []string `toml:"executable_suffixes"`
	// CompanionTools share a compiler prefix (x86-gcc-nm) but never compile.
	CompanionTools []string `toml:"companion_tools"`
	// Launchers wrap the real compiler (ccache gcc ...).
	Launchers []string `toml:"launchers"`
}

// DefaultTables returns the built-in policy for gcc/clang compatible
// drivers and GNU/LLVM ar.
func DefaultTables() Tables {
	return Tables{
		SourceExtensions: []string{"c", "cc", "cp", "cpp", "cxx", "c++", "C", "CPP", "S", "s"},
		CompilerValueFlags: []string{
			"-o", "-I", "-D", "-U",
			"-include", "-imacros", "-isystem", "-idirafter", "-iquote",
			"-iprefix", "-iwithprefix", "-iwithprefixbefore", "-isysroot", "--sysroot",
			"-MF", "-MT", "-MQ",
			"-x", "-Xlinker", "-Xassembler", "-Xpreprocessor", "-Xclang",
			"-L", "-l", "-T", "-u", "-z",
			"-target", "--target", "-gcc-toolchain", "--gcc-toolchain", "-arch",
			"-aux-info", "--param", "-main-file-name",
		},
		CompileOnlyFlags:   []string{"-c"},
		ArchiverValueFlags: []string{"--plugin", "--target", "--output", "-X"},
		ExecutableSuffixes: []string{".exe", ".cmd", ".bat"},
		CompanionTools: []string{
			"ar", "ranlib", "nm", "strip", "objcopy", "objdump", "readelf",
			"tidy", "format", "cov", "size", "addr2line",
		},
		Launchers: []string{"ccache", "sccache", "distcc", "icecc"},
	}
}

// Merge appends the entries of extra to t, skipping duplicates
func (t Tables) Merge(extra Tables) Tables {
	return Tables{
		SourceExtensions:   mergeUnique(t.SourceExtensions, extra.SourceExtensions),
		CompilerValueFlags: mergeUnique(t.CompilerValueFlags, extra.CompilerValueFlags),
		CompileOnlyFlags:   mergeUnique(t.CompileOnlyFlags, extra.CompileOnlyFlags),
		ArchiverValueFlags: mergeUnique(t.ArchiverValueFlags, extra.ArchiverValueFlags),
		ExecutableSuffixes: mergeUnique(t.ExecutableSuffixes, extra.ExecutableSuffixes),
		CompanionTools:     mergeUnique(t.CompanionTools, extra.CompanionTools),
		Launchers:          mergeUnique(t.Launchers, extra.Launchers),
	}
}

func mergeUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
