package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ternarybob/nativetrace/internal/models"
	"github.com/ternarybob/nativetrace/internal/services/cmdline"
)

var (
	success = color.New(color.FgGreen, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// printSummary lists libraries, toolchains and parse warnings
func printSummary(w io.Writer, aggregate *models.AggregateBuildConfig, warnings []cmdline.Warning, useColor bool) {
	color.NoColor = !useColor

	fmt.Fprintf(w, "%s %d libraries, %d toolchains\n",
		success("analyzed:"), len(aggregate.Libraries), len(aggregate.Toolchains))

	for _, key := range aggregate.LibraryKeys() {
		lib := aggregate.Libraries[key]
		fmt.Fprintf(w, "  %s %s %s\n", key, faint(lib.Output), faint(fmt.Sprintf("(%d files, %s)", len(lib.Files), lib.Toolchain)))
	}
	for _, key := range aggregate.ToolchainKeys() {
		tc := aggregate.Toolchains[key]
		fmt.Fprintf(w, "  %s c=%s cpp=%s\n", key, tc.CCompilerExecutable, tc.CppCompilerExecutable)
	}

	for _, warn := range warnings {
		fmt.Fprintf(w, "%s %s\n", warning("warning:"), warn.String())
	}
}
