package github

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
)

// Selectors locates the parts of the dependents markup.
type Selectors struct {
	Row         string // one element per dependent
	Link        string // anchor whose href is "/owner/name", within Row
	StarsBox    string // container of the star count, within Row
	Stars       string // star count element, within StarsBox
	Pager       string // pagination anchors
	TotalCount  string // "1,234 Repositories" toggle
	Description string // "About" paragraph on a repository page
}

// Markup variants seen on the dependents pages.
var (
	CurrentSelectors = Selectors{
		Row:         ".flex-items-center",
		Link:        "a.text-bold",
		StarsBox:    "div",
		Stars:       "span",
		Pager:       ".paginate-container a",
		TotalCount:  ".table-list-header-toggle .btn-link.selected",
		Description: "div.BorderGrid-cell p",
	}

	LegacySelectors = Selectors{
		Row:         "div.Box > div.flex-items-center",
		Link:        "span > a.text-bold",
		StarsBox:    "div",
		Stars:       "span:nth-child(1)",
		Pager:       "div.paginate-container > div > a",
		TotalCount:  ".table-list-header-toggle .btn-link.selected",
		Description: "div.BorderGrid-cell p",
	}
)

// Markup names accepted by ParserFor.
const (
	MarkupCurrent = "current"
	MarkupLegacy  = "legacy"
)

// Parser extracts dependents from GitHub HTML with goquery.
type Parser struct {
	sel Selectors
}

// NewParser returns a Parser for the current markup.
func NewParser() *Parser { return &Parser{sel: CurrentSelectors} }

// NewParserWithSelectors returns a Parser for a custom markup variant.
func NewParserWithSelectors(sel Selectors) *Parser { return &Parser{sel: sel} }

// ParserFor returns the Parser for a named markup variant.
func ParserFor(markup string) (*Parser, error) {
	switch strings.ToLower(markup) {
	case "", MarkupCurrent:
		return NewParser(), nil
	case MarkupLegacy:
		return NewParserWithSelectors(LegacySelectors), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown markup %q: use %s or %s", markup, MarkupCurrent, MarkupLegacy)
}

// ParseListing implements dependents.PageParser. Rows without a link or
// without a star count are skipped.
func (p *Parser) ParseListing(html string) ([]dependents.RawRecord, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", err
	}

	var records []dependents.RawRecord
	doc.Find(p.sel.Row).Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find(p.sel.Link).First().Attr("href")
		if !ok {
			return
		}
		stars := row.Find(p.sel.StarsBox).Find(p.sel.Stars).First()
		if stars.Length() == 0 {
			return
		}
		records = append(records, dependents.RawRecord{
			Key:       strings.ToLower(strings.TrimLeft(href, "/")),
			StarsText: strings.TrimSpace(stars.Text()),
		})
	})

	return records, nextLink(doc.Find(p.sel.Pager)), nil
}

// nextLink picks the "Next" anchor. Without labels, the second of two
// anchors or a lone anchor not labelled "Previous" is taken.
func nextLink(anchors *goquery.Selection) string {
	var next string
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) == "Next" {
			next = a.AttrOr("href", "")
			return false
		}
		return true
	})
	if next != "" {
		return next
	}
	switch anchors.Length() {
	case 1:
		if strings.TrimSpace(anchors.Text()) != "Previous" {
			return anchors.AttrOr("href", "")
		}
	case 2:
		return anchors.Eq(1).AttrOr("href", "")
	}
	return ""
}

// ParseDescription implements dependents.PageParser.
func (p *Parser) ParseDescription(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	el := doc.Find(p.sel.Description).First()
	if el.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// ParseTotalCount implements dependents.PageParser. It reads the first word
// of the selected toggle ("1,234 Repositories") and returns 0 when the toggle
// is missing or the word is not a number.
func (p *Parser) ParseTotalCount(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	fields := strings.Fields(doc.Find(p.sel.TotalCount).First().Text())
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var _ dependents.PageParser = (*Parser)(nil)
