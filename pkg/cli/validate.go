package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

func cmdValidate() *cli.Command {
	var path string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a field configuration document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config-path",
				Aliases:     []string{"c"},
				Usage:       "Path to the field configuration JSON document",
				Value:       "field-configs.json",
				Sources:     cli.EnvVars("DWPORTAL_CONFIG_PATH"),
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return validateConfigFile(path)
		},
	}
}

func validateConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read field configuration", goerr.V("path", path))
	}

	var sections model.SectionMap
	if err := json.Unmarshal(data, &sections); err != nil {
		return goerr.Wrap(err, "field configuration is not valid JSON", goerr.V("path", path))
	}

	findings := collectFindings(&sections)

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Validated %s\n", path)

	if len(findings) == 0 {
		ok := color.New(color.FgGreen)
		_, _ = ok.Printf("✔ %d section(s), no problems found\n", len(sections.FieldConfigs))
		return nil
	}

	bad := color.New(color.FgRed)
	for _, f := range findings {
		_, _ = bad.Printf("✘ %s\n", f)
	}
	return goerr.New("field configuration has problems",
		goerr.V("path", path),
		goerr.V("count", len(findings)),
	)
}

// collectFindings runs every per-section check instead of stopping at the
// first error, so operators see the full list in one run.
func collectFindings(sections *model.SectionMap) []string {
	var findings []string

	for section := range sections.FieldConfigs {
		if !section.IsValid() {
			findings = append(findings, fmt.Sprintf("unknown section %q", section))
		}
	}

	for _, section := range types.AllSections() {
		descriptors, ok := sections.FieldConfigs[section]
		if !ok {
			continue
		}
		if err := model.ValidateDescriptors(descriptors); err != nil {
			findings = append(findings, fmt.Sprintf("section %q: %s", section, err.Error()))
		}
		if _, ok := sections.TrackerIDs[section]; !ok {
			findings = append(findings, fmt.Sprintf("section %q: no tracker bound", section))
		}
	}

	return findings
}
