package walmart

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/basketcost/backend/internal/domain"
)

// automationAttr is the test-id attribute Walmart puts on product card parts
const automationAttr = "data-automation-id"

// ParseProduct extracts the first product card from a search results page.
// A card without a title or a parsable price yields ErrNoProductCard.
func ParseProduct(r io.Reader) (*domain.ScrapedProduct, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	card := findByAutomationID(doc, atom.Div, "search-product")
	if card == nil {
		return nil, domain.ErrNoProductCard
	}

	title := ""
	if el := findByAutomationID(card, atom.Span, "product-title"); el != nil {
		title = strippedText(el)
	}

	brand := ""
	if el := findByAutomationID(card, atom.Span, "product-brand"); el != nil {
		brand = strippedText(el)
	}

	price, ok := parsePrice(
		findByAutomationID(card, atom.Span, "price-characteristic"),
		findByAutomationID(card, atom.Span, "price-mantissa"),
	)

	var unitSize *string
	if el := findByAutomationID(card, atom.Div, "product-variant"); el != nil {
		if size := strippedText(el); size != "" {
			unitSize = &size
		}
	}

	if title == "" || !ok {
		return nil, domain.ErrNoProductCard
	}

	return &domain.ScrapedProduct{
		ScrapedName: title,
		Price:       price,
		UnitSize:    unitSize,
		Brand:       brand,
	}, nil
}

// parsePrice joins the dollars and cents spans. Dollars come from the
// content attribute or the text; cents only from the content attribute,
// defaulting to "00" when the span is missing entirely.
func parsePrice(whole, frac *html.Node) (float64, bool) {
	if whole == nil {
		return 0, false
	}

	dollars, ok := attr(whole, "content")
	if !ok || dollars == "" {
		dollars = strippedText(whole)
	}

	cents := "00"
	if frac != nil {
		c, ok := attr(frac, "content")
		if !ok {
			return 0, false
		}
		cents = c
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(dollars+"."+cents), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// findByAutomationID returns the first element in document order below n
// with the given tag and data-automation-id
func findByAutomationID(n *html.Node, tag atom.Atom, id string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			if v, ok := attr(c, automationAttr); ok && v == id {
				return c
			}
		}
		if found := findByAutomationID(c, tag, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// strippedText concatenates the trimmed text nodes below n
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
