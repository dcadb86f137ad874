package classifier

import (
	"strings"

	"github.com/ternarybob/nativetrace/internal/models"
)

const (
	// arModeLetters are every operation and modifier letter GNU ar accepts
	arModeLetters = "dmpqrstxabcDfilNoPsSTuUvV"
	// arCreateLetters mark a mode that writes the archive
	arCreateLetters = "crq"
	// arRelposModifiers take a member name positional before the archive
	arRelposModifiers = "abi"
)

// classifyArchive handles ar-style archivers:
//
//	ar [-]mode [--plugin p] [--target t] [relpos] [count] archive member...
//
// Modes without a create/replace letter produce no step.
func (c *Classifier) classifyArchive(inv models.Invocation) *models.BuildStep {
	var (
		mode       string
		flags      []string
		positional []string
	)

	args := inv.Args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case c.takesArchiverValue(arg):
			flags = append(flags, arg)
			if i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
		case strings.HasPrefix(arg, "--"):
			flags = append(flags, arg)
		case mode == "" && isDashMode(arg):
			mode = arg[1:]
			flags = append(flags, arg)
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			flags = append(flags, arg)
		case mode == "":
			mode = arg
			flags = append(flags, arg)
		default:
			positional = append(positional, arg)
		}
	}

	if !strings.ContainsAny(mode, arCreateLetters) {
		return nil
	}

	skip := 0
	if strings.ContainsAny(mode, arRelposModifiers) {
		skip++
	}
	if strings.Contains(mode, "N") {
		skip++
	}
	if len(positional) <= skip {
		return nil
	}
	positional = positional[skip:]

	step := &models.BuildStep{
		Kind:       models.StepArchive,
		Invocation: inv,
		Outputs:    []string{positional[0]},
		Flags:      flags,
	}
	for _, member := range positional[1:] {
		step.Inputs = append(step.Inputs, models.StepInput{
			Path:     member,
			IsSource: c.IsSource(member),
		})
	}
	return step
}

func (c *Classifier) takesArchiverValue(arg string) bool {
	_, ok := c.archiverValue[arg]
	return ok
}

// isDashMode reports whether arg is a dash-prefixed ar mode such as -crs
func isDashMode(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	for _, r := range arg[1:] {
		if !strings.ContainsRune(arModeLetters, r) {
			return false
		}
	}
	return true
}
