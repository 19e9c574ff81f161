package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jitbench/internal/analysis"
	"jitbench/internal/graphs"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <metrics.json>",
	Short: "Re-render charts from a saved metrics file",
	Long: `Reads a metrics.json produced by 'jitbench run' and regenerates the chart
set, by default next to the metrics file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsPath := args[0]
		data, err := os.ReadFile(metricsPath)
		if err != nil {
			return fmt.Errorf("failed to read metrics file: %w", err)
		}
		var metrics map[string]*analysis.Metrics
		if err := json.Unmarshal(data, &metrics); err != nil {
			return fmt.Errorf("failed to parse metrics file: %w", err)
		}

		outDir := renderOut
		if outDir == "" {
			outDir = filepath.Dir(metricsPath)
		}
		return graphs.Generate(metrics, outDir)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Directory to place the graphs/ folder in (default: next to the metrics file)")
}
