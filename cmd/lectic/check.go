package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lectic/internal/analysis"
	"lectic/internal/check"
	"lectic/internal/config"
	"lectic/internal/diag"
	"lectic/internal/diagfmt"
	"lectic/internal/markdown"
	"lectic/internal/models"
	"lectic/internal/observ"
	"lectic/internal/trace"
)

var errCheckFailed = errors.New("check found errors")

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.lec|directory>...",
	Short: "Check lectic documents against their configuration",
	Long: `Check runs the same rules the language server publishes: header shape,
interlocutor and macro references, tool targets, hooks and file links.
Directories are searched recursively for *.lec files.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("no-warnings", false, "drop warnings from the output")
	checkCmd.Flags().Bool("fetch-models", false, "fetch provider model lists and check header models")
	checkCmd.Flags().Duration("fetch-timeout", 10*time.Second, "timeout for model list requests")
	checkCmd.Flags().Int("max-diagnostics", 200, "maximum diagnostics per document (0 = unlimited)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("timings", false, "print per-phase timings to stderr")
}

type checkOptions struct {
	format       string
	pathMode     diagfmt.PathMode
	withNotes    bool
	suggest      bool
	noWarnings   bool
	fetchModels  bool
	fetchTimeout time.Duration
	max          int
	jobs         int
	timer        *observ.Timer
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return opts, fmt.Errorf("unknown path-mode value: %s", mode)
	}
	if opts.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.suggest, err = flags.GetBool("suggest"); err != nil {
		return opts, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if opts.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if opts.fetchModels, err = flags.GetBool("fetch-models"); err != nil {
		return opts, fmt.Errorf("failed to get fetch-models flag: %w", err)
	}
	if opts.fetchTimeout, err = flags.GetDuration("fetch-timeout"); err != nil {
		return opts, fmt.Errorf("failed to get fetch-timeout flag: %w", err)
	}
	if opts.max, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		opts.timer = observ.NewTimer()
	}
	if opts.jobs <= 0 {
		opts.jobs = runtime.GOMAXPROCS(0)
	}
	return opts, nil
}

// runCheck checks every document named on the command line and prints the
// findings. It fails when any document has an error.
func runCheck(cmd *cobra.Command, args []string) error {
	_, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	paths, err := collectDocuments(args)
	if err != nil {
		return err
	}

	resolver := config.NewResolver()
	var registry *models.Registry
	if opts.fetchModels {
		registry = models.NewRegistry(models.DefaultFetchers(os.LookupEnv))
	}

	ctx := cmd.Context()
	reports := make([]diagfmt.Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, path := range paths {
		g.Go(func() error {
			report, err := checkDocument(gctx, path, resolver, registry, opts)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	out := cmd.OutOrStdout()
	if opts.format == "json" {
		err = diagfmt.JSON(out, reports, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			BaseDir:      cwd,
			IncludeNotes: opts.withNotes,
			IncludeFixes: opts.suggest,
		})
	} else {
		err = diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:     colorEnabledFor(cmd),
			PathMode:  opts.pathMode,
			BaseDir:   cwd,
			ShowNotes: opts.withNotes,
			ShowFixes: opts.suggest,
		})
	}
	if err != nil {
		return err
	}

	if opts.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.timer.Summary())
	}

	errorsFound, warnings := countSeverities(reports)
	if opts.format == "pretty" && (errorsFound > 0 || warnings > 0) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d error(s), %d warning(s) in %d document(s)\n", errorsFound, warnings, len(reports))
	}
	if errorsFound > 0 {
		return errCheckFailed
	}
	return nil
}

func colorEnabledFor(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return colorEnabled(mode, os.Stdout)
}

// collectDocuments expands directories into their *.lec files. The result
// is sorted and free of duplicates.
func collectDocuments(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		matches, err := doublestar.Glob(filepath.Join(arg, "**", "*.lec"))
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", arg, err)
		}
		for _, m := range matches {
			add(filepath.Clean(m))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no lectic documents found")
	}
	sort.Strings(out)
	return out, nil
}

func checkDocument(ctx context.Context, path string, resolver *config.Resolver, registry *models.Registry, opts checkOptions) (diagfmt.Report, error) {
	span, ctx := trace.BeginCtx(ctx, trace.ScopeFeature, "check")
	defer span.WithExtra("path", path).End("")

	data, err := os.ReadFile(path)
	if err != nil {
		return diagfmt.Report{}, err
	}
	text := string(data)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	done := opts.timer.Begin("parse")
	doc := markdown.Parse(text)
	copts := check.Options{
		WorkspaceDir:   filepath.Dir(abs),
		DocPath:        abs,
		Resolver:       resolver,
		Bundle:         analysis.Build(doc, text),
		MaxDiagnostics: opts.max,
	}
	done()
	done = opts.timer.Begin("resolve")
	copts.Resolution = check.Resolve(doc, text, copts)
	done()
	done = opts.timer.Begin("rules")
	diags := check.Document(doc, text, copts)
	done()

	if registry != nil {
		stopModels := opts.timer.Begin("models")
		defer stopModels()
		fetchCtx, cancel := context.WithTimeout(ctx, opts.fetchTimeout)
		for _, provider := range check.ModelProviders(copts.Resolution) {
			if _, err := registry.Fetch(fetchCtx, provider); err != nil && !errors.Is(err, models.ErrUnsupportedProvider) {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			}
		}
		cancel()
		copts.Models = registry
		diags = append(diags, check.Models(doc, text, copts)...)
	}

	if opts.noWarnings {
		kept := diags[:0]
		for _, d := range diags {
			if d.Severity == diag.SevError {
				kept = append(kept, d)
			}
		}
		diags = kept
	}
	return diagfmt.Report{Path: path, Text: text, Diagnostics: diags}, nil
}

func countSeverities(reports []diagfmt.Report) (errorsFound, warnings int) {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			switch d.Severity {
			case diag.SevError:
				errorsFound++
			case diag.SevWarning:
				warnings++
			}
		}
	}
	return errorsFound, warnings
}
