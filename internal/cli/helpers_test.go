package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const listingURI = "/o/r/network/dependents?dependent_type=REPOSITORY"

type row struct{ key, stars string }

// listing renders a single dependents page in GitHub's markup.
func listing(total int, rows ...row) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="table-list-header-toggle"><a class="btn-link selected">%d Repositories</a></div>`, total)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="Box-row d-flex flex-items-center"><span><a class="text-bold" href="/%s">%s</a></span><div><span>%s</span></div></div>`, r.key, r.key, r.stars)
	}
	return b.String()
}

// fakeSite serves fixed pages by request URI; a status entry overrides the
// page with an empty response of that code.
type fakeSite struct {
	*httptest.Server
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	hits   int
}

func newFakeSite(t *testing.T, pages map[string]string) *fakeSite {
	t.Helper()
	f := &fakeSite{pages: pages, status: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits++
		code, hasCode := f.status[r.URL.RequestURI()]
		body, ok := f.pages[r.URL.RequestURI()]
		f.mu.Unlock()
		switch {
		case hasCode:
			w.WriteHeader(code)
		case !ok:
			http.NotFound(w, r)
		default:
			io.WriteString(w, body)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSite) setStatus(uri string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[uri] = code
}

func (f *fakeSite) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

// oneRepoSite serves one listing page of three rows for o/r plus the
// repository page of e/f.
func oneRepoSite(t *testing.T) *fakeSite {
	return newFakeSite(t, map[string]string{
		listingURI: listing(5, row{"a/b", "100"}, row{"c/d", "N/A"}, row{"e/f", "1.2k"}),
		"/e/f":     `<div class="BorderGrid-cell"><p>The E/F project</p></div>`,
	})
}

// isolate points the CLI at site and at empty config and cache directories.
func isolate(t *testing.T, site *fakeSite) (cacheDir string) {
	t.Helper()
	cacheDir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envCacheDir, cacheDir)
	t.Setenv(envSite, site.URL)
	return cacheDir
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
