package dependents

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var discard = log.New(io.Discard)

// fakeFetcher serves bodies from a map and records the URLs it was asked for.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

func (f *fakeFetcher) CachedFetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	body, ok := f.pages[url]
	if !ok {
		return "", errors.New("not found: " + url)
	}
	return body, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.called...)
}

// lineParser reads a tiny line format:
//
//	key stars      one row per line
//	next <href>    the next-page link
//	total <n>      the total count
//	desc <text>    a description
type lineParser struct{}

func (lineParser) ParseListing(html string) ([]RawRecord, string, error) {
	var (
		records []RawRecord
		next    string
	)
	for _, line := range strings.Split(html, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "!broken" {
			return nil, "", errors.New("broken page")
		}
		key, rest, _ := strings.Cut(line, " ")
		switch key {
		case "next":
			next = rest
		case "total", "desc":
		default:
			records = append(records, RawRecord{Key: key, StarsText: rest})
		}
	}
	return records, next, nil
}

func (lineParser) ParseDescription(html string) (string, bool) {
	for _, line := range strings.Split(html, "\n") {
		if rest, ok := strings.CutPrefix(line, "desc "); ok {
			return rest, true
		}
	}
	return "", false
}

func (lineParser) ParseTotalCount(html string) int {
	for _, line := range strings.Split(html, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "total "); ok {
			n, _ := strconv.Atoi(rest)
			return n
		}
	}
	return 0
}
