package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinchtab/todobench/internal/config"
	"github.com/pinchtab/todobench/internal/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "todobench",
	Short: "Replay the TodoMVC add/complete/delete suite in a browser",
	Long: `todobench drives a TodoMVC page through a fixed sequence of steps:
type and enter N todos, check each of them, then remove them all.
Every step is timed and reported.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "text or json")
}

// loadConfig merges defaults, the config file, the environment and any flag
// the user set on cmd, then validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if flags.Changed(name) {
			*dst, _ = flags.GetDuration(name)
		}
	}
	setString("url", &cfg.URL)
	setString("pointer", &cfg.Pointer)
	setString("format", &cfg.Format)
	setString("remote-url", &cfg.RemoteURL)
	setString("chrome-path", &cfg.ChromePath)
	setString("listen", &cfg.Listen)
	setString("log-level", &cfg.LogLevel)
	setString("log-format", &cfg.LogFormat)
	setDuration("timeout", &cfg.Timeout)
	setDuration("step-timeout", &cfg.StepTimeout)
	if flags.Changed("items") {
		cfg.Items, _ = flags.GetInt("items")
	}
	if flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("only") {
		cfg.Only, _ = flags.GetStringSlice("only")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger, nil
}

// addSuiteFlags registers the flags shared by commands that run the suite.
func addSuiteFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("items", 0, "number of todos to add, complete and delete (default 100)")
	f.StringSlice("only", nil, "only run these phases (Inputing, Entering, Checking, Removing)")
	f.Duration("step-timeout", 0, "per-step timeout (default 5s)")
	f.Duration("timeout", 0, "whole-run timeout (default 1m)")
	f.String("format", "", "report format: text, json or yaml")
}

// addBrowserFlags registers the flags that configure Chrome.
func addBrowserFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("headless", true, "run Chrome headless")
	f.String("pointer", "", "click delivery: native or mouse")
	f.String("remote-url", "", "connect to a running browser's DevTools websocket instead of launching Chrome")
	f.String("chrome-path", "", "Chrome executable")
}
