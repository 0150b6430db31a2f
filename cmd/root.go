package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/provebench/leanc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "leanc",
	Short:        "Lean compilation service",
	Long:         `Compile Lean sources through a content-addressed result cache and an append-only attempt ledger.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for cached compilation results")
	rootCmd.PersistentFlags().String("attempts-dir", "", "Directory for the attempt ledger")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(projectCmd)

	viper.SetDefault("lean_path", "lean")
	viper.SetDefault("elan_path", "elan")
	viper.SetDefault("cache_backend", "file")
	viper.SetDefault("timeout", 60)
	viper.SetDefault("max_concurrent", 4)
}

func bindPersistentFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("attempts_dir", cmd.Flags().Lookup("attempts-dir"))
}
