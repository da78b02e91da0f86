// Package github knows the shape of GitHub's dependents pages.
//
// # Overview
//
// [Site] builds the URLs of a GitHub origin: the dependents listing of a
// repository, the page of a dependent, and absolute forms of pagination
// links. [Parser] implements dependents.PageParser on top of goquery.
//
// # Usage
//
//	site := github.NewSite("")
//	owner, repo, err := github.ParseRepoRef("https://github.com/psf/requests")
//	if err != nil {
//	    return err
//	}
//	html, err := client.CachedFetch(ctx, site.ListingURL(owner, repo, dependents.TypeRepository))
//	records, next, err := github.NewParser().ParseListing(html)
//
// # Markup Variants
//
// The dependents page has been served with more than one structure. Each
// variant is a [Selectors] value; [CurrentSelectors] is the default and
// [LegacySelectors] matches the older, more nested layout. [ParserFor]
// selects one by name so callers can switch without code changes.
//
// # Validation
//
// [ParseRepoRef] accepts "owner/repo" as well as github.com URLs and
// validates both parts against GitHub's naming rules.
package github
