package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

// topFlags holds the flag values of the top command.
type topFlags struct {
	rows        int
	maxPages    int
	minStars    float64
	packages    bool
	description bool
	noCache     bool
	table       bool
	format      string
	progress    string
	markup      string
	cacheDir    string
}

// topCommand creates the command that lists the most starred dependents.
func (c *CLI) topCommand() *cobra.Command {
	var flags topFlags

	cmd := &cobra.Command{
		Use:   "top <owner/repo | github URL>",
		Short: "List the most starred dependents of a repository",
		Long: `List the most starred dependents of a GitHub repository.

The "Used by" listing is crawled page by page (one request per second),
dependents are deduplicated and ranked by stars. Pages are cached for a day
so repeated runs are fast.`,
		Example: `  # Top 10 dependents of a repository
  topdeps top psf/requests

  # Top 25 packages with at least 100 stars, with descriptions
  topdeps top https://github.com/psf/requests --packages -n 25 --min-stars 100 --description

  # Machine-readable output
  topdeps top psf/requests --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &flags)
			return c.runTop(cmd, args[0], flags)
		},
	}

	defaults := defaultConfig()
	f := cmd.Flags()
	f.IntVarP(&flags.rows, "rows", "n", defaults.Rows, "number of dependents to show")
	f.IntVar(&flags.maxPages, "max-pages", defaults.MaxPages, "maximum listing pages to crawl")
	f.Float64Var(&flags.minStars, "min-stars", defaults.MinStars, "minimum stars to count a dependent")
	f.BoolVar(&flags.packages, "packages", false, "list dependent packages instead of repositories")
	f.BoolVarP(&flags.description, "description", "d", false, "fetch the description of each dependent")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the page cache")
	f.StringVarP(&flags.format, "format", "f", defaults.Format, "output format: text, table, json")
	f.BoolVarP(&flags.table, "table", "t", false, "shorthand for --format table")
	f.StringVar(&flags.progress, "progress", defaults.Progress, "progress display: auto, always, never")
	f.StringVar(&flags.markup, "markup", github.MarkupCurrent, "listing markup: current, legacy")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/topdeps)")

	return cmd
}

// applyConfig fills every flag the user did not set from the loaded config.
func (c *CLI) applyConfig(cmd *cobra.Command, flags *topFlags) {
	cfg := c.Config
	set := cmd.Flags().Changed

	if !set("rows") {
		flags.rows = cfg.Rows
	}
	if !set("max-pages") {
		flags.maxPages = cfg.MaxPages
	}
	if !set("min-stars") {
		flags.minStars = cfg.MinStars
	}
	if !set("packages") {
		flags.packages = cfg.Packages
	}
	if !set("description") {
		flags.description = cfg.Description
	}
	if !set("no-cache") {
		flags.noCache = cfg.NoCache
	}
	if !set("format") && cfg.Format != "" {
		flags.format = cfg.Format
	}
	if !set("progress") && cfg.Progress != "" {
		flags.progress = cfg.Progress
	}
	if !set("markup") && cfg.Markup != "" {
		flags.markup = cfg.Markup
	}
	if !set("cache-dir") {
		flags.cacheDir = cfg.CacheDir
	}
	if flags.table {
		flags.format = formatTable
	}
}

func (c *CLI) runTop(cmd *cobra.Command, ref string, flags topFlags) error {
	ctx := cmd.Context()

	owner, repo, err := github.ParseRepoRef(ref)
	if err != nil {
		return err
	}
	format, err := parseFormat(flags.format)
	if err != nil {
		return err
	}
	interactive, err := showProgress(flags.progress, os.Stderr)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache, flags.cacheDir, flags.markup)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Owner:        owner,
		Repo:         repo,
		TopN:         flags.rows,
		MaxPages:     flags.maxPages,
		MinStars:     flags.minStars,
		Type:         dependents.TypeRepository,
		Descriptions: flags.description,
		UseCache:     !flags.noCache,
		Logger:       c.Logger,
	}
	if flags.packages {
		opts.Type = dependents.TypePackage
	}
	if flags.maxPages == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max pages must be at least 1")
	}
	if err := validateExplicit(&opts, flags.rows == 0); err != nil {
		return err
	}

	c.Logger.Info("crawling dependents", "repo", owner+"/"+repo, "type", opts.Type, "max_pages", opts.MaxPages)
	sw := newStopwatch(c.Logger)

	var display *crawlDisplay
	if interactive {
		display = startCrawlDisplay(ctx, os.Stderr, opts.MaxPages)
		opts.Listener = display.Listen
		// Loggers derived during the run copy this output.
		c.Logger.SetOutput(display.LogWriter())
	} else {
		opts.Listener = logListener(c.Logger)
	}

	result, err := runner.Run(ctx, opts)
	if display != nil {
		c.Logger.SetOutput(c.logOut)
		display.Stop()
	}
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("no dependents fetched: %w", result.Stopped)
	}
	sw.done("ranked dependents", "selected", len(result.Dependents), "pages", result.PagesVisited)

	return writeResult(cmd.OutOrStdout(), format, result, runner.Site, flags.description)
}

// validateExplicit applies option defaults but keeps a requested row count
// of zero, which selects nothing and only reports the counts. Validated
// options are not defaulted again by Run.
func validateExplicit(opts *pipeline.Options, zeroRows bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if zeroRows {
		opts.TopN = 0
	}
	return nil
}
