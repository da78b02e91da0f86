package github_test

import (
	"fmt"

	"github.com/matzehuels/topdeps/pkg/dependents"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
)

func ExampleSite_Resolve() {
	site := github.NewSite("")
	fmt.Println(site.Resolve("https://github.com/a/b/network/dependents?dependents_after=X"))
	fmt.Println(site.Resolve("/a/b/network/dependents?dependents_after=X"))
	fmt.Println(site.Resolve("a/b/network/dependents?dependents_after=X"))
	// Output:
	// https://github.com/a/b/network/dependents?dependents_after=X
	// https://github.com/a/b/network/dependents?dependents_after=X
	// https://github.com/a/b/network/dependents?dependents_after=X
}

func ExampleSite_ListingURL() {
	site := github.NewSite("")
	fmt.Println(site.ListingURL("psf", "requests", dependents.TypePackage))
	// Output:
	// https://github.com/psf/requests/network/dependents?dependent_type=PACKAGE
}

func ExampleParseRepoRef() {
	owner, repo, _ := github.ParseRepoRef("https://github.com/psf/requests.git")
	fmt.Println(owner, repo)
	// Output:
	// psf requests
}
