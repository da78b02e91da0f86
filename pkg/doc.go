// Package pkg provides the core libraries for topdeps.
//
// # Overview
//
// Topdeps finds the most starred dependents of a GitHub repository by
// walking its "Used by" listing. The pkg directory is organized into these
// areas:
//
//  1. [dependents] - Domain logic (pagination, star parsing, ranking, enrichment)
//  2. [integrations] - HTTP client with retry and caching, GitHub markup
//  3. [cache] - Expiring on-disk page cache
//  4. [pipeline] - Orchestration (probe → crawl → rank → enrich)
//  5. [observability] - Hooks and Prometheus metrics
//
// # Architecture
//
// The data flow of one run:
//
//	github.com/<owner>/<repo>/network/dependents
//	         ↓
//	    [integrations] cached fetch, 429 retry with backoff
//	         ↓
//	    [integrations/github] parse rows, next link, total count
//	         ↓
//	    [dependents] paginate, dedupe, rank, describe
//	         ↓
//	    text / table / JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/topdeps/pkg/cache"
//	    "github.com/matzehuels/topdeps/pkg/integrations/github"
//	    "github.com/matzehuels/topdeps/pkg/pipeline"
//	)
//
//	fc, _ := cache.NewFileCache(dir, cache.DefaultTTL)
//	runner := pipeline.NewRunner(fc, github.NewSite(""), logger)
//	result, err := runner.Run(ctx, pipeline.Options{Owner: "psf", Repo: "requests", UseCache: true})
//
// [dependents]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/dependents
// [integrations]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/integrations/github
// [cache]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/topdeps/pkg/observability
package pkg
