// Package pipeline wires the topdeps stages into a single run.
//
// This package composes the cache, the HTTP client, the GitHub parser and
// the dependents stages so that the CLI and the HTTP server share one code
// path and one set of defaults.
//
// # Architecture
//
// A run has four steps:
//
//  1. Probe: read the total dependents count from the first listing page
//  2. Crawl: follow the listing pages up to MaxPages
//  3. Rank: dedupe, filter by MinStars and keep the top TopN
//  4. Enrich: optionally fetch a description for each selected dependent
//
// # Usage
//
//	runner := pipeline.NewRunner(fileCache, github.NewSite(""), logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    Owner:    "psf",
//	    Repo:     "requests",
//	    TopN:     10,
//	    UseCache: true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, d := range result.Dependents {
//	    fmt.Println(d.Key, d.StarsText)
//	}
//
// A page that fails to load ends the crawl without failing the run; the
// failure is kept in [Result.Stopped] and [Result.Failed] tells whether the
// run produced nothing because of it.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTopN is the number of dependents returned.
	DefaultTopN = 10

	// DefaultMaxPages is the listing page cap.
	DefaultMaxPages = dependents.DefaultMaxPages

	// DefaultMinStars keeps every dependent with a known count.
	DefaultMinStars = 0.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Owner        string          `json:"owner"`
	Repo         string          `json:"repo"`
	TopN         int             `json:"top_n,omitempty"`     // 0 selects DefaultTopN
	MaxPages     int             `json:"max_pages,omitempty"` // 0 selects DefaultMaxPages
	MinStars     float64         `json:"min_stars"`
	Type         dependents.Type `json:"type,omitempty"` // "" selects REPOSITORY
	Descriptions bool            `json:"descriptions,omitempty"`
	UseCache     bool            `json:"use_cache"`

	// Runtime options (not serialized)
	Listener Listener    `json:"-"`
	Logger   *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Events - Run Progress
// =============================================================================

// Stage identifies what an Event reports.
type Stage int

const (
	// StageProbe carries the total count read from the first listing page.
	StageProbe Stage = iota
	// StagePage carries one crawled listing page.
	StagePage
	// StageEnrich marks the start of description fetching.
	StageEnrich
)

// Event reports run progress to a Listener.
type Event struct {
	Stage Stage

	// Total is the listed dependents count (StageProbe) or the number of
	// records to describe (StageEnrich).
	Total int

	// MaxPages is the page cap in effect for the run.
	MaxPages int

	// Page is set for StagePage.
	Page dependents.PageEvent
}

// Listener receives run progress. It is called from the goroutine running
// the pipeline.
type Listener func(Event)

// Result contains the outcome of a run.
type Result struct {
	RunID string
	Owner string
	Repo  string
	Type  dependents.Type

	// Dependents are the selected records, highest star count first.
	Dependents []dependents.Dependent

	// TotalDistinct is the number of distinct dependents seen.
	TotalDistinct int

	// AboveThreshold is the number of distinct dependents with at least
	// MinStars stars.
	AboveThreshold int

	// TotalKnown is the count shown on the listing, 0 when unknown.
	TotalKnown int

	PagesVisited int
	RawCount     int     // rows seen before dedupe
	MinStars     float64 // threshold that was applied

	// Stopped is the failure that ended the crawl early, if any.
	Stopped error

	Elapsed time.Duration
}

// Failed reports whether no listing page yielded data because of a rate
// limit or an unexpected HTTP status.
func (r *Result) Failed() bool {
	return r.RawCount == 0 && errs.IsFatal(r.Stopped)
}

// HiddenCount is the number of listed dependents that were never seen,
// usually private repositories.
func (r *Result) HiddenCount() int {
	if r.TotalKnown > r.TotalDistinct {
		return r.TotalKnown - r.TotalDistinct
	}
	return 0
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := github.ValidateRepoRef(o.Owner, o.Repo); err != nil {
		return err
	}
	if o.TopN < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "rows must not be negative (got %d)", o.TopN)
	}
	if o.MaxPages < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max pages must not be negative (got %d)", o.MaxPages)
	}
	typ, err := dependents.ParseType(string(o.Type))
	if err != nil {
		return err
	}
	o.Type = typ

	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	if o.MaxPages == 0 {
		o.MaxPages = DefaultMaxPages
	}
	o.validated = true
	return nil
}
