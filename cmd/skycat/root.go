package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/skycat/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "skycat",
	Short: "Indexed lookups into zone-partitioned star catalogs",
	Long: "skycat resolves catalog identifiers and finds the nearest stars around a sky position " +
		"in UCAC4-style catalogs stored on disk, S3 or MinIO.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .skycat.yaml)")
	flags.StringP("catalog", "c", "", "catalog root: directory, s3://bucket/prefix or minio://endpoint/bucket/prefix")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.Int64("cache-size", 0, "block cache size in bytes (0 disables)")

	_ = viper.BindPFlag("catalog", flags.Lookup("catalog"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("cache.size", flags.Lookup("cache-size"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".skycat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	config.InitEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// addQueryFlags registers the positional query flags shared by nearest,
// batch and serve.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("max-results", "k", 1, "maximum number of neighbors")
	cmd.Flags().IntP("expand-radius", "r", 1, "maximum number of rings searched around the home cell")
	cmd.Flags().Bool("wrap-ra", false, "search across the 0/360 right-ascension seam")
	cmd.Flags().Float64("max-separation", 0, "drop neighbors farther than this many degrees (0 disables)")
}

// bindQueryFlags binds the query flags of the command that is about to run.
// Binding happens in PreRun because several commands share the same keys.
func bindQueryFlags(cmd *cobra.Command, _ []string) {
	_ = viper.BindPFlag("max_results", cmd.Flags().Lookup("max-results"))
	_ = viper.BindPFlag("expand_radius", cmd.Flags().Lookup("expand-radius"))
	_ = viper.BindPFlag("wrap_ra", cmd.Flags().Lookup("wrap-ra"))
	_ = viper.BindPFlag("max_separation", cmd.Flags().Lookup("max-separation"))
}
