package dependents

import (
	"context"
	"strings"

	errs "github.com/matzehuels/topdeps/pkg/errors"
)

// Type selects which kind of dependent the listing shows.
type Type string

const (
	TypeRepository Type = "REPOSITORY"
	TypePackage    Type = "PACKAGE"
)

// ParseType accepts "repository" or "package" in any case, singular or
// plural. An empty string selects TypeRepository.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "REPOSITORY", "REPOSITORIES", "REPO", "REPOS":
		return TypeRepository, nil
	case "PACKAGE", "PACKAGES":
		return TypePackage, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown dependent type %q: use repository or package", s)
}

// Noun returns the lower-case word used in output ("repository", "package").
func (t Type) Noun() string {
	if t == TypePackage {
		return "package"
	}
	return "repository"
}

// RawRecord is one listing row as extracted from a page.
type RawRecord struct {
	Key       string // lower-cased "owner/name"
	StarsText string // as displayed: "1.2k", "1,234", "N/A" or empty
}

// Dependent is a ranked record, optionally carrying a description.
type Dependent struct {
	Key         string  `json:"repo"`
	StarsText   string  `json:"stars"`
	Description *string `json:"description,omitempty"`
}

// Stars returns the normalized star count of d.
func (d Dependent) Stars() float64 { return StarsToNumber(d.StarsText) }

// PageParser turns page bodies into records. Implementations hold all
// knowledge of the markup and must be free of side effects.
type PageParser interface {
	// ParseListing extracts the rows of a listing page and the raw href of
	// the next page, or "" when there is none.
	ParseListing(html string) ([]RawRecord, string, error)

	// ParseDescription extracts the description of a repository page.
	ParseDescription(html string) (string, bool)

	// ParseTotalCount reads the total dependents count shown on a listing
	// page, or 0 when it cannot be found.
	ParseTotalCount(html string) int
}

// Fetcher returns the body of a URL, from cache when possible.
// *integrations.Client satisfies it.
type Fetcher interface {
	CachedFetch(ctx context.Context, url string) (string, error)
}
