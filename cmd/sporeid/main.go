// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sporeid CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sporeid/internal/classifier"
	"github.com/pdiddy/sporeid/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the sporeid CLI.
var rootCmd = &cobra.Command{
	Use:   "sporeid",
	Short: "Identify fungal families from spore measurements",
	Long: `sporeid sends spore, genetic, habitat and soil measurements to a
prediction service and reports the most likely fungal family with its
confidence and the top three candidates.

Manual classifications are kept in a local history when the history is
durable. Photo captures use a placeholder classifier and are always kept.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./sporeid.yaml or ~/.config/sporeid/sporeid.yaml)")
	pf.String("server", classifier.DefaultBaseURL, "prediction service base URL")
	pf.String("history-backend", string(types.HistorySQLite), "history backend: sqlite or memory")
	pf.String("history-path", "", "history database file (default: ~/.local/share/sporeid/history.db)")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")

	_ = viper.BindPFlag("server.base_url", pf.Lookup("server"))
	_ = viper.BindPFlag("history.backend", pf.Lookup("history-backend"))
	_ = viper.BindPFlag("history.path", pf.Lookup("history-path"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sporeid")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sporeid"))
		}
	}

	viper.SetDefault("server.base_url", classifier.DefaultBaseURL)
	viper.SetDefault("server.connect_timeout", classifier.DefaultConnectTimeout)
	viper.SetDefault("server.read_timeout", classifier.DefaultReadTimeout)
	viper.SetDefault("server.health_timeout", classifier.DefaultHealthTimeout)
	viper.SetDefault("server.user_agent", classifier.DefaultUserAgent+" ("+version+")")
	viper.SetDefault("server.families_ttl", classifier.DefaultFamiliesTTL)
	viper.SetDefault("server.api_token", "")
	viper.SetDefault("history.backend", string(types.HistorySQLite))
	viper.SetDefault("history.path", defaultHistoryPath())
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")

	viper.SetEnvPrefix("SPOREID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sporeid", "history.db")
	}
	return filepath.Join(home, ".local", "share", "sporeid", "history.db")
}

// loadConfig assembles the effective configuration from defaults, the
// config file, SPOREID_* environment variables and flags.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	// An empty --history-path flag still overrides the default.
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath()
	}
	cfg.History.Path = expandHome(cfg.History.Path)
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
