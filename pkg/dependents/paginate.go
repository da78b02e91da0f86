package dependents

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/topdeps/pkg/errors"
)

const (
	// DefaultMaxPages caps a crawl when no limit is configured.
	DefaultMaxPages = 100

	// DefaultDelay is the pause between two listing pages.
	DefaultDelay = time.Second

	// PageSize is the number of rows on a full listing page.
	PageSize = 30
)

// PageEvent describes one visited listing page.
type PageEvent struct {
	Page     int    // 1-based page number
	URL      string // URL that was fetched
	Records  int    // rows found on this page
	Total    int    // rows accumulated so far
	MaxPages int    // configured page cap
	Err      error  // fetch or parse failure that ended the crawl
}

// Listener observes pagination progress. It is called synchronously after
// every visited page and must not block.
type Listener func(PageEvent)

// Crawl is the outcome of one pagination run.
type Crawl struct {
	Records []RawRecord // rows of every page in visit order
	Pages   int         // pages visited, including a failed one
	Stopped error       // failure that ended the crawl early, if any
}

// Paginator walks a dependents listing page by page.
type Paginator struct {
	Fetcher Fetcher
	Parser  PageParser

	// Resolve turns a raw next-page href into an absolute URL.
	Resolve func(link string) string

	// MaxPages bounds the crawl. Values below 1 select DefaultMaxPages.
	MaxPages int

	// Delay is the pause before each following page. Zero disables it.
	Delay time.Duration

	Listener Listener
	Logger   *log.Logger
}

// NewPaginator creates a Paginator with the default page cap and delay.
func NewPaginator(f Fetcher, p PageParser, resolve func(string) string, logger *log.Logger) *Paginator {
	if logger == nil {
		logger = log.Default()
	}
	return &Paginator{
		Fetcher:  f,
		Parser:   p,
		Resolve:  resolve,
		MaxPages: DefaultMaxPages,
		Delay:    DefaultDelay,
		Logger:   logger,
	}
}

// Run crawls from firstURL. Fetch and parse failures end the crawl and are
// reported in Crawl.Stopped; the records gathered up to that point are kept.
// The returned error is non-nil only when ctx is cancelled.
func (p *Paginator) Run(ctx context.Context, firstURL string) (Crawl, error) {
	maxPages := p.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}

	var crawl Crawl
	url := firstURL
	for {
		crawl.Pages++
		p.Logger.Debug("fetching page", "page", crawl.Pages, "url", url)

		body, err := p.Fetcher.CachedFetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return crawl, ctx.Err()
			}
			p.Logger.Error("failed to fetch page", "page", crawl.Pages, "url", url, "err", err)
			crawl.Stopped = err
			p.notify(crawl, url, 0, maxPages, err)
			return crawl, nil
		}

		records, next, err := p.Parser.ParseListing(body)
		if err != nil {
			err = errs.Wrap(errs.ErrCodeDecode, err, "parse page %d", crawl.Pages)
			p.Logger.Error("failed to parse page", "page", crawl.Pages, "url", url, "err", err)
			crawl.Stopped = err
			p.notify(crawl, url, 0, maxPages, err)
			return crawl, nil
		}
		if len(records) == 0 {
			p.Logger.Debug("empty page, stopping", "page", crawl.Pages)
			p.notify(crawl, url, 0, maxPages, nil)
			return crawl, nil
		}

		crawl.Records = append(crawl.Records, records...)
		p.notify(crawl, url, len(records), maxPages, nil)

		if next == "" {
			return crawl, nil
		}
		if crawl.Pages >= maxPages {
			p.Logger.Debug("page cap reached", "pages", crawl.Pages)
			return crawl, nil
		}

		url = next
		if p.Resolve != nil {
			url = p.Resolve(next)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return crawl, err
		}
	}
}

// ProbeTotal reads the total dependents count from the listing at url.
// It returns 0 when the page cannot be fetched or shows no count.
func (p *Paginator) ProbeTotal(ctx context.Context, url string) int {
	body, err := p.Fetcher.CachedFetch(ctx, url)
	if err != nil {
		p.Logger.Debug("total count unavailable", "url", url, "err", err)
		return 0
	}
	return p.Parser.ParseTotalCount(body)
}

func (p *Paginator) notify(c Crawl, url string, n, maxPages int, err error) {
	if p.Listener == nil {
		return
	}
	p.Listener(PageEvent{
		Page:     c.Pages,
		URL:      url,
		Records:  n,
		Total:    len(c.Records),
		MaxPages: maxPages,
		Err:      err,
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
