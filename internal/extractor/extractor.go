package extractor

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopscrape/internal/product"

	"github.com/PuerkitoBio/goquery"
)

const nbsp = "\u00a0"

var errNoToken = errors.New("no leading token")

// Selectors describes where each product field lives in the listing markup
type Selectors struct {
	Container   string // one match per product
	Title       string // element carrying the title attribute
	TitleAttr   string
	Description string
	Price       string
	Star        string // counted, zero matches is a valid rating
	ReviewCount string
}

// DefaultSelectors returns the selectors of the webscraper.io e-commerce listing markup
func DefaultSelectors() Selectors {
	return Selectors{
		Container:   ".thumbnail",
		Title:       ".title",
		TitleAttr:   "title",
		Description: ".description",
		Price:       ".price",
		Star:        ".ratings span.ws-icon.ws-icon-star",
		ReviewCount: ".review-count",
	}
}

// Extractor maps product blocks of a rendered page to product records
type Extractor struct {
	sel Selectors
}

// NewExtractor creates a new Extractor instance
func NewExtractor(sel Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// ExtractHTML parses html and extracts every product block in document order
func (e *Extractor) ExtractHTML(html string) ([]product.Product, error) {
	return e.ExtractReader(strings.NewReader(html))
}

// ExtractReader parses the document read from r and extracts its products
func (e *Extractor) ExtractReader(r io.Reader) ([]product.Product, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return e.Extract(doc.Selection)
}

// Extract extracts the products contained in root. The first malformed block
// aborts extraction; no partial list is returned.
func (e *Extractor) Extract(root *goquery.Selection) ([]product.Product, error) {
	blocks := root.Find(e.sel.Container)
	products := make([]product.Product, 0, blocks.Length())

	var err error
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		var p product.Product
		p, err = e.ExtractOne(block)
		if err != nil {
			err = fmt.Errorf("failed to parse product %d: %w", i, err)
			return false
		}
		products = append(products, p)
		return true
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

// ExtractOne maps a single product block to a record
func (e *Extractor) ExtractOne(block *goquery.Selection) (product.Product, error) {
	var p product.Product

	titleEl, err := e.first(block, "title", e.sel.Title)
	if err != nil {
		return p, err
	}
	title, ok := titleEl.Attr(e.sel.TitleAttr)
	if !ok {
		return p, &MissingFieldError{Field: "title", Selector: e.sel.Title + "[" + e.sel.TitleAttr + "]"}
	}
	p.Title = title

	descEl, err := e.first(block, "description", e.sel.Description)
	if err != nil {
		return p, err
	}
	p.Description = strings.ReplaceAll(descEl.Text(), nbsp, " ")

	priceEl, err := e.first(block, "price", e.sel.Price)
	if err != nil {
		return p, err
	}
	if p.Price, err = parsePrice(priceEl.Text()); err != nil {
		return p, err
	}

	p.Rating = block.Find(e.sel.Star).Length()

	reviewEl, err := e.first(block, "num_of_reviews", e.sel.ReviewCount)
	if err != nil {
		return p, err
	}
	if p.NumOfReviews, err = parseReviewCount(reviewEl.Text()); err != nil {
		return p, err
	}

	return p, nil
}

func (e *Extractor) first(block *goquery.Selection, field, selector string) (*goquery.Selection, error) {
	s := block.Find(selector).First()
	if s.Length() == 0 {
		return nil, &MissingFieldError{Field: field, Selector: selector}
	}
	return s, nil
}

// parsePrice strips the currency sign from text like "$19.99"
func parsePrice(text string) (float64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(text, "$", ""))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FormatError{Field: "price", Value: text, Err: err}
	}
	return v, nil
}

// parseReviewCount reads the leading number of text like "42 reviews"
func parseReviewCount(text string) (int, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0, &FormatError{Field: "num_of_reviews", Value: text, Err: errNoToken}
	}
	n, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, &FormatError{Field: "num_of_reviews", Value: text, Err: err}
	}
	return n, nil
}
