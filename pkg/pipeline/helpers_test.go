package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topdeps/pkg/cache"
	"github.com/matzehuels/topdeps/pkg/integrations"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
)

type row struct{ key, stars string }

// listing renders a dependents page in GitHub's markup.
func listing(total int, rows []row, next string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="table-list-header-toggle"><a class="btn-link selected">%d Repositories</a></div>`, total)
	b.WriteString(`<div class="Box">`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="Box-row d-flex flex-items-center"><span><a class="text-bold" href="/%s">%s</a></span><div><span>%s</span></div></div>`, r.key, r.key, r.stars)
	}
	b.WriteString(`</div>`)
	if next != "" {
		fmt.Fprintf(&b, `<div class="paginate-container"><div><a href="%s">Next</a></div></div>`, next)
	}
	return b.String()
}

func repoPage(desc string) string {
	return `<div class="BorderGrid-cell"><h2>About</h2><p>` + desc + `</p></div>`
}

// fakeGitHub serves fixed pages keyed by request URI and counts requests.
type fakeGitHub struct {
	*httptest.Server
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	hits   map[string]int
	total  atomic.Int32
}

func newFakeGitHub(t *testing.T, pages map[string]string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{pages: pages, status: map[string]int{}, hits: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.total.Add(1)
		f.mu.Lock()
		f.hits[r.URL.RequestURI()]++
		code, hasCode := f.status[r.URL.RequestURI()]
		body, ok := f.pages[r.URL.RequestURI()]
		f.mu.Unlock()
		if hasCode {
			w.WriteHeader(code)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) setStatus(uri string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[uri] = code
}

func (f *fakeGitHub) hitsFor(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[uri]
}

// instantTimer fires immediately. It is safe for concurrent use.
type instantTimer struct{}

var fired = func() chan time.Time {
	c := make(chan time.Time)
	close(c)
	return c
}()

func (instantTimer) Start(time.Duration) {}
func (instantTimer) Stop()               {}
func (instantTimer) C() <-chan time.Time { return fired }

func newTestRunner(t *testing.T, server *fakeGitHub) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir(), cache.DefaultTTL)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, github.NewSite(server.URL), log.New(io.Discard))
	r.Delay = 0
	r.ClientOptions = []integrations.Option{
		integrations.WithHTTPClient(server.Client()),
		integrations.WithTimer(instantTimer{}),
	}
	return r
}
