// Package dependents implements the core of topdeps: walking the paginated
// dependents listing of a repository, ranking what was found, and attaching
// descriptions to the winners.
//
// # Pipeline
//
// A run has three phases, each usable on its own:
//
//  1. [Paginator] fetches listing pages one after another through a
//     [Fetcher], hands each body to a [PageParser] and follows the next-page
//     link until a page is empty, has no link, or the page cap is reached.
//  2. [Rank] normalizes star counts with [StarsToNumber], keeps the best
//     record per key, drops entries below the threshold and returns the top N
//     in descending order.
//  3. [Enricher] fetches the page of every selected dependent with at most
//     [DefaultConcurrency] requests in flight and attaches its description.
//
// # Failure Model
//
// Nothing in this package fails a run. A page that cannot be fetched ends
// pagination and is reported through [Crawl.Stopped]; a description that
// cannot be fetched or found is left nil. Only context cancellation is
// returned as an error.
//
// # Markup
//
// All knowledge of the listing markup lives behind [PageParser]; see the
// github subpackage of integrations for the implementations.
package dependents
