package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/nativetrace/internal/common"
	"github.com/ternarybob/nativetrace/internal/models"
	"github.com/ternarybob/nativetrace/internal/services/buildconfig"
	"github.com/ternarybob/nativetrace/internal/services/buildfiles"
)

var errNoVariants = errors.New("no [[variants]] configured")

// run reads every configured log, folds them into one aggregate and writes it
func run(ctx context.Context, config *common.Config, logger arbor.ILogger) error {
	traces, err := loadTraces(config.Variants)
	if err != nil {
		return err
	}

	builder := buildconfig.NewBuilder(config.BuilderOptions(), logger)
	if config.Project.Root != "" {
		files, err := buildfiles.Discover(ctx, config.Project.Root, logger)
		if err != nil {
			return err
		}
		builder.AddBuildFiles(files...)
	}

	if err := builder.AddVariants(ctx, traces); err != nil {
		return err
	}

	aggregate, err := builder.Build()
	if err != nil {
		return err
	}

	if err := writeAggregate(aggregate, config.Output); err != nil {
		return err
	}

	printSummary(os.Stderr, aggregate, builder.Warnings(), config.Output.Color)
	return nil
}

func loadTraces(variants []common.VariantConfig) ([]buildconfig.VariantTrace, error) {
	if len(variants) == 0 {
		return nil, errNoVariants
	}

	traces := make([]buildconfig.VariantTrace, 0, len(variants))
	for _, v := range variants {
		dialect, err := models.ParseDialect(v.Dialect)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Name, err)
		}
		data, err := os.ReadFile(v.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read build log for variant %s: %w", v.Name, err)
		}
		traces = append(traces, buildconfig.VariantTrace{
			BuildCommand: v.BuildCommand,
			Variant:      v.Name,
			Abi:          v.Abi,
			RawLog:       string(data),
			Dialect:      dialect,
		})
	}
	return traces, nil
}

func writeAggregate(aggregate *models.AggregateBuildConfig, output common.OutputConfig) error {
	if output.Path == "" {
		return render(os.Stdout, aggregate, output.Format)
	}

	file, err := os.Create(output.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := render(file, aggregate, output.Format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// render encodes the aggregate as json or yaml
func render(w io.Writer, aggregate *models.AggregateBuildConfig, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(aggregate); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(aggregate); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
