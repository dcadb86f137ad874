package buildconfig

import (
	"fmt"
	"path"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/ternarybob/nativetrace/internal/services/classifier"
)

// abiOf returns the nearest path component of output naming a known ABI,
// else the name of its parent directory.
func (b *Builder) abiOf(output string) string {
	dir := classifier.DirName(output)
	parts := strings.FieldsFunc(dir, func(r rune) bool { return r == '/' || r == '\\' })
	for i := len(parts) - 1; i >= 0; i-- {
		if _, ok := b.knownAbis[parts[i]]; ok {
			return parts[i]
		}
	}
	return classifier.BaseName(dir)
}

// artifactName strips directory, extension and lib prefix: obj/libfoo.so -> foo
func artifactName(output string) string {
	base := classifier.BaseName(output)
	base = strings.TrimSuffix(base, path.Ext(base))
	if len(base) > 3 && strings.HasPrefix(base, "lib") {
		base = base[3:]
	}
	return base
}

// libraryKey joins the non-empty parts as name-variant-abi
func libraryKey(name, variant, abi string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{name, variant, abi} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

func toolchainKey(abi string) string {
	if abi == "" {
		return "toolchain"
	}
	return "toolchain-" + abi
}

// disambiguate derives a stable alternative for a taken toolchain key
func disambiguate(key, signature string) string {
	return fmt.Sprintf("%s-%016x", key, fnv1a.HashString64(signature))
}
