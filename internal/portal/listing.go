package portal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingRowSelector = "table tbody tr"
	pageLinkSelector   = "a.paginate_button"
)

// Listing sweeps the "all current agreement items" view page by page.
type Listing struct {
	page Page
	url  string

	// RowWait bounds the wait for the table to show at least one data row.
	RowWait time.Duration
	// PageSettle is a fixed delay after advancing a page; the table refreshes
	// in place without an observable loading condition.
	PageSettle time.Duration
	// MaxPages caps the sweep; 0 means no ceiling.
	MaxPages int
}

func NewListing(page Page, url string, maxPages int) *Listing {
	return &Listing{
		page:       page,
		url:        url,
		RowWait:    20 * time.Second,
		PageSettle: 2 * time.Second,
		MaxPages:   maxPages,
	}
}

func (l *Listing) Open() error {
	return l.page.Goto(l.url)
}

// ReadRows waits for the current page's table and returns every row as its
// raw cell texts. Classification of the cells is the caller's problem.
func (l *Listing) ReadRows() ([][]string, error) {
	if err := l.page.WaitVisible(listingRowSelector, l.RowWait); err != nil {
		return nil, err
	}
	html, err := l.page.HTML()
	if err != nil {
		return nil, err
	}
	return parseTableRows(html)
}

// NextPage advances to page current+1 by clicking the pagination link carrying
// that ordinal. Returns false when the link is absent (sweep complete) or the
// configured ceiling is reached.
func (l *Listing) NextPage(current int) (bool, error) {
	if l.MaxPages > 0 && current >= l.MaxPages {
		return false, nil
	}
	found, err := l.page.ClickByText(pageLinkSelector, strconv.Itoa(current+1))
	if err != nil || !found {
		return false, err
	}
	time.Sleep(l.PageSettle)
	return true, nil
}

func parseTableRows(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("portal: parse listing html: %w", err)
	}

	var rows [][]string
	doc.Find(listingRowSelector).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows, nil
}
