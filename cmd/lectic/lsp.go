package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lectic/internal/config"
	"lectic/internal/lsp"
	"lectic/internal/models"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the lectic language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Int("debounce", -1, "diagnostics debounce in milliseconds (overrides lsp.toml)")
	lspCmd.Flags().Int("max-diagnostics", -1, "maximum diagnostics per document (overrides lsp.toml)")
	lspCmd.Flags().Bool("no-model-fetch", false, "never fetch provider model lists")
	lspCmd.Flags().String("settings", "", "settings file (default: lsp.toml in the lectic config directory)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	settingsPath, err := cmd.Flags().GetString("settings")
	if err != nil {
		return fmt.Errorf("failed to get settings flag: %w", err)
	}
	if settingsPath == "" {
		settingsPath = config.SettingsPath(os.LookupEnv)
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		// stdout carries the protocol; a bad settings file only costs defaults.
		fmt.Fprintf(os.Stderr, "lsp: %v\n", err)
	}

	debounce, err := cmd.Flags().GetInt("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	if debounce >= 0 {
		settings.DebounceMS = debounce
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics >= 0 {
		settings.MaxDiagnostics = maxDiagnostics
	}
	noFetch, err := cmd.Flags().GetBool("no-model-fetch")
	if err != nil {
		return fmt.Errorf("failed to get no-model-fetch flag: %w", err)
	}
	if noFetch {
		settings.FetchModels = false
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Settings:  settings,
		Resolver:  config.NewResolver(),
		Models:    models.NewRegistry(models.DefaultFetchers(os.LookupEnv)),
		LookupEnv: os.LookupEnv,
		Tracer:    tracer,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
