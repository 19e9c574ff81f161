package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jitbench/internal/config"
	"jitbench/internal/suite"
)

var (
	listJava string
	listJar  string
)

var listCmd = &cobra.Command{
	Use:   "list <suite>",
	Short: "List the benchmarks a suite offers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suiteName := args[0]
		paths, err := config.ResolvePaths(suiteName, listJava, listJar)
		if err != nil {
			return err
		}
		timeout := time.Duration(viper.GetInt("run_timeout")) * time.Second
		s, err := suite.New(suiteName, paths, timeout)
		if err != nil {
			return err
		}
		for _, b := range s.AvailableBenchmarks() {
			fmt.Fprintln(cmd.OutOrStdout(), b)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listJava, "java", "", "Path to the java binary")
	listCmd.Flags().StringVar(&listJar, "jar", "", "Path to the suite jar")
}
