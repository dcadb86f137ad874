// -----------------------------------------------------------------------
// Invocation - One parsed shell command from a build driver trace
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"runtime"
	"strings"
)

// Dialect selects the quoting and escaping rules used to split a command line.
type Dialect int

const (
	// DialectWindows follows the Microsoft C runtime argv splitting rules
	DialectWindows Dialect = iota
	// DialectPOSIX follows POSIX shell backslash and double quote rules
	DialectPOSIX
)

// String returns the config name of the dialect
func (d Dialect) String() string {
	switch d {
	case DialectWindows:
		return "windows"
	case DialectPOSIX:
		return "posix"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect converts a config string ("windows", "posix") into a Dialect.
// An empty string resolves to the dialect of the running host.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DialectForOS(runtime.GOOS), nil
	case "windows", "win32", "win":
		return DialectWindows, nil
	case "posix", "unix", "linux", "darwin":
		return DialectPOSIX, nil
	default:
		return DialectPOSIX, fmt.Errorf("unknown dialect %q", s)
	}
}

// DialectForOS returns the dialect a trace captured on goos is written in
func DialectForOS(goos string) Dialect {
	if goos == "windows" {
		return DialectWindows
	}
	return DialectPOSIX
}

// Invocation is an executable name plus its ordered arguments.
// Treat it as immutable once created.
type Invocation struct {
	Executable string   `json:"executable" yaml:"executable"`
	Args       []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// NewInvocation builds an Invocation from a token list (executable first)
func NewInvocation(tokens []string) Invocation {
	if len(tokens) == 0 {
		return Invocation{}
	}
	args := make([]string, len(tokens)-1)
	copy(args, tokens[1:])
	return Invocation{Executable: tokens[0], Args: args}
}

// Equal reports structural equality (executable and argument sequence)
func (i Invocation) Equal(other Invocation) bool {
	if i.Executable != other.Executable || len(i.Args) != len(other.Args) {
		return false
	}
	for n := range i.Args {
		if i.Args[n] != other.Args[n] {
			return false
		}
	}
	return true
}

// String renders the invocation space separated, for logs only
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Executable
	}
	return i.Executable + " " + strings.Join(i.Args, " ")
}
