package ledger

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/famshare/famshare-backend/internal/domain"
)

// licensesTableClass marks the purchase-history table inside the uploaded
// account page.
const licensesTableClass = "account_table"

// parseRows extracts (date, item) rows from the uploaded licenses page.
// The first table row is the header and is skipped, as is any row with
// fewer than three cells or with an empty date or item cell. A document
// without the history table yields found=false and zero rows, not an
// error.
func parseRows(content []byte) (rows []domain.LedgerRow, found bool, err error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, false, err
	}

	table := findTable(doc)
	if table == nil {
		return nil, false, nil
	}

	first := true
	for _, tr := range findAll(table, "tr") {
		if first {
			first = false
			continue
		}
		cells := findAll(tr, "td")
		if len(cells) < 3 {
			continue
		}
		row := domain.LedgerRow{
			RawDate: strings.TrimSpace(text(cells[0])),
			RawItem: strings.TrimSpace(text(cells[1])),
		}
		if row.RawDate == "" || row.RawItem == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, true, nil
}

// findTable returns the first <table> whose class list contains the
// licenses table class.
func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		for _, a := range n.Attr {
			if a.Key == "class" && hasClass(a.Val, licensesTableClass) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

// findAll collects descendant elements with the given tag, in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
			continue
		}
		out = append(out, findAll(c, tag)...)
	}
	return out
}

// text concatenates all text nodes under n.
func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(text(c))
	}
	return b.String()
}
