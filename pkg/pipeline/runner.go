package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topdeps/pkg/cache"
	"github.com/matzehuels/topdeps/pkg/dependents"
	"github.com/matzehuels/topdeps/pkg/integrations"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
	"github.com/matzehuels/topdeps/pkg/observability"
)

// Runner executes runs against one site with one cache.
//
// The Runner is stateless except for its configuration - it doesn't store
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Site   github.Site
	Parser dependents.PageParser
	Logger *log.Logger

	// Delay is the pause between listing pages.
	Delay time.Duration

	// ClientOptions are applied to the HTTP client of every run.
	ClientOptions []integrations.Option
}

// NewRunner creates a runner for site backed by c.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, site github.Site, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if site.BaseURL == "" {
		site = github.NewSite("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Site:   site,
		Parser: github.NewParser(),
		Logger: logger,
		Delay:  dependents.DefaultDelay,
	}
}

// Run probes, crawls, ranks and optionally enriches the dependents of
// opts.Owner/opts.Repo. Page failures end the crawl and are reported in
// Result.Stopped; the returned error is non-nil only for invalid options or
// a cancelled context.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	logger = logger.With("run", runID[:8])

	ref := opts.Owner + "/" + opts.Repo
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, ref)
	start := time.Now()

	store := r.Cache
	if !opts.UseCache {
		store = cache.NewNullCache()
	}
	clientOpts := append([]integrations.Option{integrations.WithLogger(logger)}, r.ClientOptions...)
	client := integrations.NewClient(store, nil, clientOpts...)

	listing := r.Site.ListingURL(opts.Owner, opts.Repo, opts.Type)
	pager := dependents.NewPaginator(client, r.Parser, r.Site.Resolve, logger)
	pager.MaxPages = opts.MaxPages
	pager.Delay = r.Delay
	notify := func(e Event) {
		if opts.Listener != nil {
			e.MaxPages = opts.MaxPages
			opts.Listener(e)
		}
	}
	pager.Listener = func(e dependents.PageEvent) {
		hooks.OnPageFetched(ctx, e.Page, e.Records, e.Err)
		notify(Event{Stage: StagePage, Page: e})
	}

	result := &Result{
		RunID:    runID,
		Owner:    opts.Owner,
		Repo:     opts.Repo,
		Type:     opts.Type,
		MinStars: opts.MinStars,
	}

	result.TotalKnown = pager.ProbeTotal(ctx, listing)
	if result.TotalKnown > 0 {
		logger.Info("found total dependents", "total", result.TotalKnown)
	}
	notify(Event{Stage: StageProbe, Total: result.TotalKnown})

	crawl, err := pager.Run(ctx, listing)
	if err != nil {
		hooks.OnRunComplete(ctx, ref, 0, time.Since(start), err)
		return nil, err
	}
	result.PagesVisited = crawl.Pages
	result.RawCount = len(crawl.Records)
	result.Stopped = crawl.Stopped

	selected, distinct, above := dependents.Rank(crawl.Records, opts.MinStars, opts.TopN)
	result.TotalDistinct = distinct
	result.AboveThreshold = above
	logger.Debug("ranked dependents", "raw", result.RawCount, "distinct", distinct, "above", above)

	if opts.Descriptions && len(selected) > 0 {
		notify(Event{Stage: StageEnrich, Total: len(selected)})
		enrichStart := time.Now()
		enricher := dependents.NewEnricher(client, r.Parser, r.Site.RepoURL, logger)
		selected = enricher.Enrich(ctx, selected)
		if err := ctx.Err(); err != nil {
			hooks.OnRunComplete(ctx, ref, 0, time.Since(start), err)
			return nil, err
		}
		hooks.OnEnrichComplete(ctx, len(selected), described(selected), time.Since(enrichStart))
	}
	result.Dependents = selected
	result.Elapsed = time.Since(start)

	hooks.OnRunComplete(ctx, ref, len(selected), result.Elapsed, result.Stopped)
	logger.Debug("run complete",
		"pages", result.PagesVisited,
		"selected", len(selected),
		"duration", result.Elapsed)
	return result, nil
}

func described(ds []dependents.Dependent) int {
	n := 0
	for _, d := range ds {
		if d.Description != nil {
			n++
		}
	}
	return n
}
