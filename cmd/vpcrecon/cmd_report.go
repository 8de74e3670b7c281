package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/netscribe/vpcrecon/cost"
	"github.com/netscribe/vpcrecon/diagram"
	"github.com/netscribe/vpcrecon/inventory"
	"github.com/netscribe/vpcrecon/report"
)

var (
	reportFormat     string
	reportOutput     string
	reportSections   []string
	reportConcurrent bool
	reportCost       bool
	reportDiagram    bool
	reportStdout     bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <vpc-id>",
	Short: "Collect a VPC's networking resources and render a report",
	Long: `Collect every networking resource attached to a VPC and render the
result in the chosen format. Failed sections are reported inline; one
throttled or denied API call never aborts the rest of the collection.`,
	Example: `  vpcrecon report vpc-0abc123                      # markdown to ./reports
  vpcrecon report vpc-0abc123 --format json --stdout
  vpcrecon report vpc-0abc123 --sections subnets,route_tables
  vpcrecon report vpc-0abc123 --concurrent --cost --diagram`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "Output format: markdown, json, yaml, console")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (defaults to the configured report directory)")
	reportCmd.Flags().StringSliceVar(&reportSections, "sections", nil, "Comma-separated sections to collect (default: all)")
	reportCmd.Flags().BoolVar(&reportConcurrent, "concurrent", false, "Collect sections concurrently")
	reportCmd.Flags().BoolVar(&reportCost, "cost", false, "Append a monthly cost estimate")
	reportCmd.Flags().BoolVar(&reportDiagram, "diagram", false, "Write a DOT topology diagram next to the report")
	reportCmd.Flags().BoolVar(&reportStdout, "stdout", false, "Write the report to stdout instead of a file")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vpcID := args[0]

	formatName := reportFormat
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	q, cache, err := newQueryClient(ctx)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	opts := inventory.Options{Sections: reportSections}
	if format == report.FormatConsole {
		opts.Progress = consoleProgress{}
	}

	start := time.Now()
	var result *inventory.CollectionResult
	if reportConcurrent {
		result, err = inventory.CollectConcurrent(ctx, q, vpcID, opts)
	} else {
		result, err = inventory.Collect(ctx, q, vpcID, opts)
	}
	if err != nil {
		return err
	}
	log.Info().Str("vpc_id", vpcID).Dur("elapsed", time.Since(start)).
		Int("sections", len(result.Sections)).Msg("collection complete")

	rendered, err := report.Render(format, result, time.Now())
	if err != nil {
		return err
	}

	if reportCost {
		breakdown := cost.Estimate(result)
		rendered += renderCostSummary(breakdown)
	}

	if reportStdout || format == report.FormatConsole {
		fmt.Println(rendered)
	} else {
		path, err := writeReport(vpcID, format, rendered)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if reportDiagram {
		path, err := writeDiagram(vpcID, result)
		if err != nil {
			return err
		}
		fmt.Printf("Diagram written to %s\n", path)
	}
	return nil
}

func writeReport(vpcID string, format report.Format, rendered string) (string, error) {
	path := reportOutput
	if path == "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
			return "", fmt.Errorf("creating report directory: %w", err)
		}
		name := fmt.Sprintf("%s-%s%s", vpcID, time.Now().Format("20060102-150405"), format.Extension())
		path = filepath.Join(cfg.Output.Directory, name)
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func writeDiagram(vpcID string, result *inventory.CollectionResult) (string, error) {
	gen := &diagram.Generator{}
	dotSource, err := gen.GenerateString(result)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(cfg.Output.Directory, vpcID+".dot")
	if err := os.WriteFile(path, []byte(dotSource), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram: %w", err)
	}
	return path, nil
}

func renderCostSummary(b *cost.Breakdown) string {
	var sb strings.Builder
	sb.WriteString("\n## Estimated Monthly Cost\n\n")
	fmt.Fprintf(&sb, "**Total: $%s/month**\n\n", b.TotalMonthlyCost.StringFixed(2))
	for _, d := range b.Drivers {
		fmt.Fprintf(&sb, "- %s: $%s/month (%s)\n", d.Resource, d.MonthlyCost.StringFixed(2), d.Description)
	}
	if len(b.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, r := range b.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return sb.String()
}

// consoleProgress prints one line per section as collection runs.
type consoleProgress struct{}

func (consoleProgress) SectionStarted(section string) {
	fmt.Fprintf(os.Stderr, "  collecting %s...\n", section)
}

func (consoleProgress) SectionFinished(section string, result inventory.SectionResult) {
	if !result.Success {
		fmt.Fprintf(os.Stderr, "  %s failed: %s\n", section, result.Error)
	}
}
