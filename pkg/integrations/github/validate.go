package github

import (
	"net/url"
	"regexp"
	"strings"

	errs "github.com/matzehuels/topdeps/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errs.New(errs.ErrCodeInvalidInput, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errs.New(errs.ErrCodeInvalidInput, "repo is required")
	}
	if repo == "." || repo == ".." || !validRepo.MatchString(repo) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ParseRepoRef parses a repository reference and validates both parts.
// Accepted forms:
//
//	owner/repo
//	github.com/owner/repo
//	https://github.com/owner/repo[.git][/any/sub/path]
func ParseRepoRef(ref string) (owner, repo string, err error) {
	ref = strings.TrimSpace(ref)
	path := ref
	switch {
	case strings.Contains(ref, "://"):
		u, perr := url.Parse(ref)
		if perr != nil {
			return "", "", errs.Wrap(errs.ErrCodeInvalidInput, perr, "invalid repository URL %q", ref)
		}
		path = u.Path
	case strings.HasPrefix(strings.ToLower(ref), "github.com/"):
		path = ref[len("github.com/"):]
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || (len(parts) > 2 && !strings.Contains(ref, "github.com")) {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "invalid repository %q: use owner/repo or a GitHub URL", ref)
	}
	owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
