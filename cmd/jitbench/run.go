package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jitbench/internal/config"
	"jitbench/internal/graphs"
	"jitbench/internal/history"
	"jitbench/internal/runner"
	"jitbench/internal/suite"
	"jitbench/internal/telemetry"
	"jitbench/internal/ui"
)

var (
	runJava      string
	runJar       string
	runOutputDir string
	runNoGraphs  bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run <suite> [benchmarks...]",
	Short: "Run cold/profiling/warm trials for a benchmark suite",
	Long: `Runs every requested benchmark (default: all the suite offers) through
trials of the cold/profiling/warm sequence, writes raw logs and metrics.json
to a timestamped results directory, and renders comparison charts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBenchmarks,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("profile-iters", 0, "Iterations for the profiling run")
	runCmd.Flags().Int("bench-iters", 0, "Iterations for cold/warm runs")
	runCmd.Flags().Int("trials", 0, "Number of trials per benchmark")
	runCmd.Flags().Int("metrics-port", 0, "Serve Prometheus metrics on this port during the run")
	runCmd.Flags().StringVar(&runJava, "java", "", "Path to the java binary")
	runCmd.Flags().StringVar(&runJar, "jar", "", "Path to the suite jar")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Output directory (default: results/)")
	runCmd.Flags().BoolVar(&runNoGraphs, "no-graphs", false, "Skip chart generation")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Skip saving the run to the history database")

	viper.BindPFlag("profile_iters", runCmd.Flags().Lookup("profile-iters"))
	viper.BindPFlag("bench_iters", runCmd.Flags().Lookup("bench-iters"))
	viper.BindPFlag("trials", runCmd.Flags().Lookup("trials"))
	viper.BindPFlag("metrics_port", runCmd.Flags().Lookup("metrics-port"))
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	suiteName := args[0]
	requested := args[1:]

	paths, err := config.ResolvePaths(suiteName, runJava, runJar)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Java:  %s\n", paths.Java)
	fmt.Fprintf(cmd.OutOrStdout(), "Jar:   %s\n", paths.Jar)

	timeout := time.Duration(viper.GetInt("run_timeout")) * time.Second
	s, err := suite.New(suiteName, paths, timeout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ValidateSetup(ctx); err != nil {
		return err
	}

	available := s.AvailableBenchmarks()
	benchmarks := requested
	if len(benchmarks) == 0 {
		benchmarks = available
	} else {
		known := make(map[string]bool, len(available))
		for _, b := range available {
			known[b] = true
		}
		for _, b := range benchmarks {
			if !known[b] {
				return fmt.Errorf("unknown benchmark %q; available: %v", b, available)
			}
		}
	}

	profileIters := viper.GetInt("profile_iters")
	benchIters := viper.GetInt("bench_iters")
	trials := viper.GetInt("trials")

	fmt.Fprintf(cmd.OutOrStdout(), "Suite: %s\n", s.Name())
	fmt.Fprintf(cmd.OutOrStdout(), "Benchmarks: %v\n", benchmarks)
	fmt.Fprintf(cmd.OutOrStdout(), "Config: profile_iters=%d, bench_iters=%d, trials=%d\n",
		profileIters, benchIters, trials)

	var metrics *telemetry.Metrics
	if port := viper.GetInt("metrics_port"); port > 0 {
		metrics = telemetry.NewMetrics()
		srv := metrics.StartServer(port)
		defer srv.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Metrics: http://localhost:%d/metrics\n", port)
	}

	outputDir := runOutputDir
	if outputDir == "" {
		outputDir = viper.GetString("output_dir")
	}

	orch := &runner.Orchestrator{
		Suite:        s,
		ProfileIters: profileIters,
		BenchIters:   benchIters,
		Trials:       trials,
		OutputDir:    outputDir,
		Metrics:      metrics,
		Out:          cmd.OutOrStdout(),
	}

	out, err := orch.Run(ctx, benchmarks)
	if err != nil {
		return err
	}

	if !runNoGraphs {
		if err := graphs.Generate(out.Metrics, out.RunDir); err != nil {
			return err
		}
	}

	if !runNoHistory {
		if err := saveHistory(s.Name(), out); err != nil {
			// History is a convenience layer; a broken DB should not fail a
			// completed run.
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save run history: %v\n", err)
		}
	}

	ui.RenderSummary(cmd.OutOrStdout(), out.Metrics)
	fmt.Fprintf(cmd.OutOrStdout(), "\nDone. Results in %s\n", out.RunDir)
	return nil
}

func saveHistory(suiteName string, out *runner.Output) error {
	store, err := history.Open(viper.GetString("history_db"))
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Save(suiteName, out.RunDir, out.Metrics)
	return err
}
