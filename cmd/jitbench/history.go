package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jitbench/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(viper.GetString("history_db"))
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tSUITE\tBENCHMARKS\tRUN DIR")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Suite, r.Benchmarks, r.RunDir)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the stored metrics of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		store, err := history.Open(viper.GetString("history_db"))
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.RunMetrics(runID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No metrics stored for run %d.\n", runID)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "BENCHMARK\tCOLD OPTIMAL\tSPEEDUP\tWARM TARGET\tIMPROVEMENT\tITERS TO OPT\tCOMPILE MED")
		for _, r := range rows {
			compile := "n/a"
			if r.CompileTimeMedian != nil {
				compile = fmt.Sprintf("%.0fms", *r.CompileTimeMedian)
			}
			fmt.Fprintf(w, "%s\t%.0fms\t%.2fx\t%.0fms\t%.2fx\t%d\t%s\n",
				r.Benchmark, r.ColdOptimal, r.OptimalSpeedup, r.WarmTarget,
				r.OurImprovement, r.ColdTimeToOptimal, compile)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 10, "Maximum number of runs to list")
}
