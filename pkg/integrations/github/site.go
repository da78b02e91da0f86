package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/topdeps/pkg/dependents"
)

// DefaultBaseURL is the origin of github.com.
const DefaultBaseURL = "https://github.com"

// Site builds the URLs topdeps fetches from a GitHub origin.
type Site struct {
	BaseURL string
}

// NewSite returns a Site for base, or for DefaultBaseURL when base is empty.
// A trailing slash is removed.
func NewSite(base string) Site {
	if base == "" {
		base = DefaultBaseURL
	}
	return Site{BaseURL: strings.TrimRight(base, "/")}
}

// ListingURL returns the first dependents listing page of owner/repo,
// filtered to the given dependent type.
func (s Site) ListingURL(owner, repo string, typ dependents.Type) string {
	return fmt.Sprintf("%s/%s/%s/network/dependents?dependent_type=%s",
		s.BaseURL, owner, repo, url.QueryEscape(string(typ)))
}

// RepoURL returns the page of a dependent key ("owner/name").
func (s Site) RepoURL(key string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(key, "/")
}

// Resolve turns a pagination href into an absolute URL. Links with a scheme
// are returned unchanged, root-relative links are joined to the origin and
// anything else is joined to the origin with a slash.
func (s Site) Resolve(link string) string {
	switch {
	case hasScheme(link):
		return link
	case strings.HasPrefix(link, "/"):
		return s.BaseURL + link
	default:
		return s.BaseURL + "/" + link
	}
}

func hasScheme(link string) bool {
	u, err := url.Parse(link)
	return err == nil && u.Scheme != "" && u.Host != ""
}
