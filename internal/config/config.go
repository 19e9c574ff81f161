package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
func Load(cfgFile string) {
	// explicit .env loading; a missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("jitbench")
	}

	viper.SetEnvPrefix("JITBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Benchmark defaults
	viper.SetDefault("profile_iters", 1)
	viper.SetDefault("bench_iters", 10)
	viper.SetDefault("trials", 3)
	viper.SetDefault("output_dir", "results")
	viper.SetDefault("run_timeout", 1800) // seconds per subprocess
	viper.SetDefault("history_db", ".jitbench/history.db")
	viper.SetDefault("metrics_port", 0) // 0 = no metrics server
	viper.SetDefault("verbose", false)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
