package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lectic/internal/prof"
	"lectic/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lectic",
	Short: "Language tooling for lectic conversation documents",
	Long:  `lectic checks conversation documents against their configuration and serves them to editors over LSP`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		color.NoColor = !colorEnabled(mode, os.Stdout)
		return startProfiling(cmd)
	},
}

var profile *prof.Session

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpu, err := flags.GetString("cpuprofile")
	if err != nil {
		return err
	}
	mem, err := flags.GetString("memprofile")
	if err != nil {
		return err
	}
	profile, err = prof.Start(cpu, mem)
	return err
}

// main loads .env, registers subcommands and runs the root command. A
// failing command exits with status 1.
func main() {
	// API keys for model listing may live in .env; a missing file is fine.
	_ = godotenv.Load()

	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|request|detail|debug)")

	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to file on exit")

	err := rootCmd.Execute()
	if stopErr := profile.Stop(); stopErr != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", stopErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// colorEnabled resolves the --color flag for f.
func colorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(f)
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
