// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the landscape-pdf CLI. The root command
// turns a folder of images into one or more landscape A4 PDFs with two
// images per page; scan and history are read-only helpers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/landscape-pdf/internal/config"
	"github.com/pdiddy/landscape-pdf/internal/logging"
	"github.com/pdiddy/landscape-pdf/internal/opener"
)

// version is set at build time via ldflags.
var version = "dev"

// current is the application state built before any command runs.
var current *app

// rootCmd generates PDFs when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "landscape-pdf",
	Short: "Lay out images two per landscape A4 page and write them as PDF",
	Long: `landscape-pdf scans the input folder recursively for images and writes
them into landscape A4 PDFs, two images side by side on each page with the page
number centred underneath.

Several copies can be generated in one run. The first copy keeps the discovery
order; every further copy uses an independent random order. Pass --seed to
reproduce the order of an earlier run.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./landscape-pdf.yaml or ~/.config/landscape-pdf/landscape-pdf.yaml)")
	rootCmd.PersistentFlags().String("input", "", "input folder (overrides paths.input_folder)")
	rootCmd.PersistentFlags().String("output", "", "output folder (overrides paths.output_folder)")

	_ = viper.BindPFlag(config.KeyInputFolder, rootCmd.PersistentFlags().Lookup("input"))
	_ = viper.BindPFlag(config.KeyOutputFolder, rootCmd.PersistentFlags().Lookup("output"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("landscape-pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "landscape-pdf"))
		}
	}

	config.SetDefaults(viper.GetViper())
}

// setup loads .env and the config file, then builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	readErr := viper.ReadInConfig()
	cfg, notices := config.Load(viper.GetViper())

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	cfg = config.ResolvePaths(cfg, wd)

	logger := logging.New(logging.Options{
		Name:    cfg.Logging.Name,
		Level:   cfg.Logging.Level,
		ToFile:  cfg.Logging.ToFile,
		Dir:     cfg.Logging.Dir,
		Console: cmd.ErrOrStderr(),
	})

	if readErr == nil {
		logger.Info("config loaded", "file", viper.ConfigFileUsed())
	} else if errors.As(readErr, new(viper.ConfigFileNotFoundError)) {
		logger.Info("no config file found, using defaults")
	} else {
		logger.Warn("cannot read config file, using defaults", "error", readErr)
	}
	for _, n := range notices {
		logger.Info("config: " + n)
	}
	if p := logger.FilePath(); p != "" {
		logger.Debug("logging to file", "path", p)
	}

	current = &app{
		cfg:    cfg,
		log:    logger.Logger,
		closer: logger,
		opener: opener.New(),
	}
	return nil
}

func main() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	if current != nil {
		current.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
