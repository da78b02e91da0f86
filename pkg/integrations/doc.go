// Package integrations provides the HTTP access layer for topdeps.
//
// # Overview
//
// [Client] wraps an [net/http.Client] with the browser User-Agent, a retry
// loop and a response cache:
//
//	c := integrations.NewClient(fileCache, nil, integrations.WithLogger(logger))
//	html, err := c.CachedFetch(ctx, "https://github.com/owner/repo/network/dependents")
//
// [Client.FetchWithRetry] retries 429 responses and transport failures with
// exponential backoff (1s, 2s, 4s, ...) and fails fast on every other
// non-2xx status. [Client.CachedFetch] serves fresh cache entries and stores
// successful fetches; cache failures are logged and never fail the call.
//
// Site-specific parsing lives in the [github] subpackage.
//
// [github]: github.com/matzehuels/topdeps/pkg/integrations/github
package integrations
