package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/topdeps/pkg/errors"
)

func TestTop_JSON(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	out, err := execute(t, "top", "o/r", "--format", "json", "--progress", "never")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "o", rep.Owner)
	assert.Equal(t, "r", rep.Repo)
	require.Len(t, rep.Dependents, 2)
	assert.Equal(t, "e/f", rep.Dependents[0].Key)
	assert.Equal(t, "1.2k", rep.Dependents[0].StarsText)
	assert.Equal(t, "a/b", rep.Dependents[1].Key)
	assert.Nil(t, rep.Dependents[0].Description)
	assert.Equal(t, 3, rep.Stats.TotalRepositories)
	assert.Equal(t, 2, rep.Stats.RepositoriesWithStars)
	assert.Equal(t, 5, rep.Stats.TotalKnown)
	assert.Equal(t, 1, rep.Stats.Pages)
	assert.Empty(t, rep.Stats.Stopped)
}

func TestTop_AcceptsURL(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	out, err := execute(t, "top", "https://github.com/o/r", "-n", "1", "-f", "json", "--progress", "never")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Dependents, 1)
	assert.Equal(t, "e/f", rep.Dependents[0].Key)
}

func TestTop_Text(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	out, err := execute(t, "top", "o/r", "--format", "text", "--description", "--progress", "never")
	require.NoError(t, err)

	assert.Contains(t, out, "1. "+site.URL+"/e/f")
	assert.Contains(t, out, "2. "+site.URL+"/a/b")
	assert.Contains(t, out, "The E/F project")
	assert.Contains(t, out, "found 3 repositories, 2 others are hidden")
	assert.Contains(t, out, "2 repositories with at least 0 stars")
	assert.NotContains(t, out, "c/d", "N/A rows are filtered at the default threshold")
}

func TestTop_TableShorthand(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	out, err := execute(t, "top", "o/r", "--format", "json", "--table", "--progress", "never")
	require.NoError(t, err)

	assert.Contains(t, out, site.URL+"/e/f")
	assert.Contains(t, out, "1.2k")
	assert.Contains(t, out, "stars")
	assert.False(t, json.Valid([]byte(out)), "--table wins over --format")
}

func TestTop_ConfigDefaults(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("rows = 1\nformat = \"json\"\nprogress = \"never\"\n"), 0o644))

	out, err := execute(t, "top", "o/r", "--config", cfgPath)
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Dependents, 1, "rows comes from the config file")

	out, err = execute(t, "top", "o/r", "--config", cfgPath, "-n", "2")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Dependents, 2, "flags override the config file")
}

func TestTop_CacheReuse(t *testing.T) {
	site := oneRepoSite(t)
	dir := isolate(t, site)

	_, err := execute(t, "top", "o/r", "--progress", "never")
	require.NoError(t, err)
	first := site.requests()
	assert.Equal(t, 1, first, "probe and first page share one fetch")

	_, err = execute(t, "top", "o/r", "--progress", "never")
	require.NoError(t, err)
	assert.Equal(t, first, site.requests(), "second run is served from %s", dir)

	_, err = execute(t, "top", "o/r", "--progress", "never", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, first+2, site.requests())
}

func TestTop_Failed(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)
	site.setStatus(listingURI, http.StatusForbidden)

	_, err := execute(t, "top", "o/r", "--progress", "never")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeHTTPStatus))
	assert.Contains(t, err.Error(), "no dependents fetched")
}

func TestTop_ZeroRows(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	out, err := execute(t, "top", "o/r", "-n", "0", "-f", "json", "--progress", "never")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Empty(t, rep.Dependents)
	assert.Equal(t, 3, rep.Stats.TotalRepositories)
	assert.Equal(t, 2, rep.Stats.RepositoriesWithStars)
}

func TestTop_InvalidInput(t *testing.T) {
	site := oneRepoSite(t)
	isolate(t, site)

	tests := []struct {
		name string
		args []string
	}{
		{"bad ref", []string{"top", "not-a-repo"}},
		{"bad format", []string{"top", "o/r", "--format", "yaml"}},
		{"bad progress", []string{"top", "o/r", "--progress", "sometimes"}},
		{"bad markup", []string{"top", "o/r", "--markup", "future"}},
		{"negative rows", []string{"top", "o/r", "-n", "-1", "--progress", "never"}},
		{"zero pages", []string{"top", "o/r", "--max-pages", "0", "--progress", "never"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)
		})
	}
	assert.Zero(t, site.requests(), "invalid input never reaches the network")
}

func TestCacheCommands(t *testing.T) {
	site := oneRepoSite(t)
	dir := isolate(t, site)

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(out))

	_, err = execute(t, "top", "o/r", "--progress", "never")
	require.NoError(t, err)

	out, err = execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, "Entries")
	assert.Regexp(t, `Entries\s+1\b`, out)

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached entries")

	out, err = execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Regexp(t, `Entries\s+0\b`, out)
}
