package classifier

import (
	"strings"

	"github.com/ternarybob/nativetrace/internal/models"
)

// classifyCompile handles gcc/clang compatible drivers. Positional arguments
// are inputs, -o names the output, and value-taking flags keep their value.
func (c *Classifier) classifyCompile(inv models.Invocation) *models.BuildStep {
	step := &models.BuildStep{Kind: models.StepCompile, Invocation: inv}
	args := inv.Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o":
			if i+1 < len(args) {
				step.Outputs = []string{args[i+1]}
				i++
			}
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
			step.Outputs = []string{arg[2:]}
		case c.isCompileOnly(arg):
			// structural, not part of the flag string
		case c.takesCompilerValue(arg):
			step.Flags = append(step.Flags, arg)
			if i+1 < len(args) {
				step.Flags = append(step.Flags, args[i+1])
				i++
			}
		case isFlag(arg):
			step.Flags = append(step.Flags, arg)
		default:
			step.Inputs = append(step.Inputs, models.StepInput{
				Path:     arg,
				IsSource: c.IsSource(arg),
			})
		}
	}

	return step
}

func (c *Classifier) isCompileOnly(arg string) bool {
	_, ok := c.compileOnly[arg]
	return ok
}

func (c *Classifier) takesCompilerValue(arg string) bool {
	_, ok := c.compilerValue[arg]
	return ok
}

// isFlag treats "-x", "--x" and response files ("@file") as flags.
// A lone "-" (stdin) is a flag too since it names no file.
func isFlag(arg string) bool {
	return strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "@")
}
