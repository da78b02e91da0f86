package dependents

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of description fetches in flight.
const DefaultConcurrency = 5

// Enricher attaches descriptions to ranked dependents.
type Enricher struct {
	Fetcher Fetcher
	Parser  PageParser

	// PageURL maps a dependent key to the URL of its page.
	PageURL func(key string) string

	// Concurrency bounds in-flight fetches. Values below 1 select
	// DefaultConcurrency.
	Concurrency int

	Logger *log.Logger
}

// NewEnricher creates an Enricher with DefaultConcurrency.
func NewEnricher(f Fetcher, p PageParser, pageURL func(string) string, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{
		Fetcher:     f,
		Parser:      p,
		PageURL:     pageURL,
		Concurrency: DefaultConcurrency,
		Logger:      logger,
	}
}

// Enrich returns a copy of selected where each entry carries the description
// found on its page, or nil when the page could not be fetched or has none.
// Entries keep their positions. Enrich waits for every fetch to finish; if
// ctx is cancelled, entries not yet started are left without description.
func (e *Enricher) Enrich(ctx context.Context, selected []Dependent) []Dependent {
	out := make([]Dependent, len(selected))
	copy(out, selected)

	n := e.Concurrency
	if n < 1 {
		n = DefaultConcurrency
	}
	sem := semaphore.NewWeighted(int64(n))

	var wg sync.WaitGroup
	for i := range out {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(d *Dependent) {
			defer wg.Done()
			defer sem.Release(1)
			d.Description = e.describe(ctx, d.Key)
		}(&out[i])
	}
	wg.Wait()
	return out
}

func (e *Enricher) describe(ctx context.Context, key string) *string {
	url := e.PageURL(key)
	body, err := e.Fetcher.CachedFetch(ctx, url)
	if err != nil {
		e.Logger.Debug("failed to fetch description", "repo", key, "err", err)
		return nil
	}
	desc, ok := e.Parser.ParseDescription(body)
	if !ok {
		e.Logger.Debug("no description", "repo", key)
		return nil
	}
	return &desc
}
