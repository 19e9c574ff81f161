package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"jitbench/internal/config"
	"jitbench/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jitbench",
	Short: "Benchmark runner for JIT profile checkpoint evaluation",
	Long: `jitbench measures whether loading a pre-recorded JIT compilation profile
into the JVM before a benchmark run produces faster early iterations than a
profile-less run. It drives the DaCapo and Renaissance suites through
cold/profiling/warm runs and reduces the raw timings to comparison metrics.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'jitbench --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./jitbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write structured logs to this file")

	bindFlags(rootCmd.PersistentFlags())
}

// bindFlags mirrors persistent flags into viper so env vars and config files
// can override them uniformly.
func bindFlags(fs *pflag.FlagSet) {
	viper.BindPFlag("verbose", fs.Lookup("verbose"))
	viper.BindPFlag("log_file", fs.Lookup("log-file"))
}

func initConfig() {
	config.Load(cfgFile)
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
}
