// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hedwig CLI: an aggregated
// research-paper search over arXiv, OpenAlex, and Crossref, served either
// as a one-shot terminal search or as a REST API for the web frontend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hedwig/internal/secrets"
	"github.com/pdiddy/hedwig/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "hedwig/0.1"
)

// loadedSecrets holds polite-pool identities loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the hedwig CLI.
var rootCmd = &cobra.Command{
	Use:   "hedwig",
	Short: "Aggregated research-paper search across arXiv, OpenAlex, and Crossref",
	Long: `hedwig queries three bibliographic APIs concurrently, merges and
deduplicates their results, and returns one ranked paper list.

Use "hedwig search" for a one-shot query from the terminal, or
"hedwig serve" to run the REST API consumed by the web frontend.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hedwig.yaml or ~/.config/hedwig/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hedwig")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hedwig"))
		}
	}

	viper.SetEnvPrefix("HEDWIG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// searchConfig assembles the adapter configuration from config file, env,
// and loaded secrets.
func searchConfig() types.SearchConfig {
	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
	}
	if t := viper.GetDuration("search.timeout"); t > 0 {
		cfg.Timeout = t
	}
	if ua := viper.GetString("search.user_agent"); ua != "" {
		cfg.UserAgent = ua
	}

	cfg.OpenAlexEmail = viper.GetString("search.openalex_email")
	if cfg.OpenAlexEmail == "" {
		cfg.OpenAlexEmail = loadedSecrets["openalex-email"]
	}
	cfg.CrossrefMailto = viper.GetString("search.crossref_mailto")
	if cfg.CrossrefMailto == "" {
		cfg.CrossrefMailto = loadedSecrets["crossref-mailto"]
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
