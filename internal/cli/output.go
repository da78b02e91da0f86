package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

// Output formats.
const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case formatText, formatTable, formatJSON:
		return f, nil
	case "":
		return formatTable, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown format %q: use %s, %s or %s", s, formatText, formatTable, formatJSON)
}

// =============================================================================
// JSON Report - shared by the CLI and the HTTP server
// =============================================================================

type report struct {
	Owner      string                 `json:"owner"`
	Repo       string                 `json:"repo"`
	Type       dependents.Type        `json:"type"`
	Dependents []dependents.Dependent `json:"dependents"`
	Stats      reportStats            `json:"stats"`
}

type reportStats struct {
	TotalRepositories     int     `json:"total_repositories"`
	RepositoriesWithStars int     `json:"repositories_with_stars"`
	TotalKnown            int     `json:"total_known"`
	Pages                 int     `json:"pages"`
	MinStars              float64 `json:"min_stars"`
	ElapsedSeconds        float64 `json:"elapsed_seconds"`
	Stopped               string  `json:"stopped,omitempty"`
}

func newReport(r *pipeline.Result) report {
	deps := r.Dependents
	if deps == nil {
		deps = []dependents.Dependent{}
	}
	rep := report{
		Owner:      r.Owner,
		Repo:       r.Repo,
		Type:       r.Type,
		Dependents: deps,
		Stats: reportStats{
			TotalRepositories:     r.TotalDistinct,
			RepositoriesWithStars: r.AboveThreshold,
			TotalKnown:            r.TotalKnown,
			Pages:                 r.PagesVisited,
			MinStars:              r.MinStars,
			ElapsedSeconds:        r.Elapsed.Seconds(),
		},
	}
	if r.Stopped != nil {
		rep.Stats.Stopped = r.Stopped.Error()
	}
	return rep
}

// =============================================================================
// Writers
// =============================================================================

// writeResult renders r to w in the given format.
func writeResult(w io.Writer, format string, r *pipeline.Result, site github.Site, descriptions bool) error {
	switch format {
	case formatJSON:
		return writeJSON(w, r)
	case formatText:
		writeText(w, r, site, descriptions)
	default:
		writeTable(w, r, site, descriptions)
	}
	return nil
}

func writeJSON(w io.Writer, r *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newReport(r))
}

func writeText(w io.Writer, r *pipeline.Result, site github.Site, descriptions bool) {
	width := len(strconv.Itoa(len(r.Dependents)))
	for i, d := range r.Dependents {
		fmt.Fprintf(w, "%*d. %s  %s\n", width, i+1, StyleLink.Render(site.RepoURL(d.Key)), StyleNumber.Render("★ "+d.StarsText))
		if descriptions && d.Description != nil && *d.Description != "" {
			fmt.Fprintf(w, "%*s  %s\n", width+1, "", StyleDim.Render(*d.Description))
		}
	}
	if len(r.Dependents) > 0 {
		fmt.Fprintln(w)
	}
	writeSummary(w, r)
}

func writeTable(w io.Writer, r *pipeline.Result, site github.Site, descriptions bool) {
	if len(r.Dependents) > 0 {
		headers := []string{"#", "url", "stars"}
		if descriptions {
			headers = append(headers, "description")
		}
		rows := make([][]string, len(r.Dependents))
		for i, d := range r.Dependents {
			row := []string{strconv.Itoa(i + 1), site.RepoURL(d.Key), d.StarsText}
			if descriptions {
				desc := ""
				if d.Description != nil {
					desc = *d.Description
				}
				row = append(row, desc)
			}
			rows[i] = row
		}

		cell := lipgloss.NewStyle().Padding(0, 1)
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(StyleDim).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return cell.Inherit(StyleTitle)
				case col == 1:
					return cell.Inherit(StyleLink)
				case col == 2:
					return cell.Inherit(StyleNumber).Align(lipgloss.Right)
				}
				return cell
			})
		fmt.Fprintln(w, t.Render())
	}
	writeSummary(w, r)
}

// writeSummary prints the counts below the listing.
func writeSummary(w io.Writer, r *pipeline.Result) {
	noun := plural(r.Type)
	if hidden := r.HiddenCount(); hidden > 0 {
		printInfo(w, "found %d %s, %d others are hidden (likely private)", r.TotalDistinct, noun, hidden)
	} else {
		printInfo(w, "found %d %s", r.TotalDistinct, noun)
	}
	printInfo(w, "%d %s with at least %s stars", r.AboveThreshold, noun, strconv.FormatFloat(r.MinStars, 'f', -1, 64))
	if r.Stopped != nil {
		printWarning(w, "listing stopped after %d pages: %s", r.PagesVisited, errs.UserMessage(r.Stopped))
	}
	printDetail(w, "completed in %.2fs", r.Elapsed.Seconds())
}

func plural(t dependents.Type) string {
	if t == dependents.TypePackage {
		return "packages"
	}
	return "repositories"
}
