package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shopscrape/internal/formatter"
	"shopscrape/internal/product"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// WriteCSV writes the header row then one row per product
func WriteCSV(w io.Writer, products []product.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(product.Fields()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range products {
		if err := cw.Write(p.Row()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV creates or truncates path and writes products to it as CSV
func SaveCSV(path string, products []product.Product) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(file, products); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// ProductContent renders a product list in every output format
type ProductContent struct {
	Products []product.Product
}

// NewProductContent creates a new ProductContent instance
func NewProductContent(products []product.Product) *ProductContent {
	return &ProductContent{Products: products}
}

func (c *ProductContent) ToCSV() (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, c.Products); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (c *ProductContent) ToJSON() ([]byte, error) {
	products := c.Products
	if products == nil {
		products = []product.Product{}
	}
	return json.MarshalIndent(products, "", "  ")
}

// ToHTML renders the products as a table
func (c *ProductContent) ToHTML() (string, error) {
	var b strings.Builder
	b.WriteString("<table>\n<thead><tr>")
	for _, f := range product.Fields() {
		b.WriteString("<th>" + f + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, p := range c.Products {
		b.WriteString("<tr>")
		for _, cell := range p.Row() {
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String(), nil
}

// ToMarkdown renders the products as a Markdown table
func (c *ProductContent) ToMarkdown() (string, error) {
	table, err := c.ToHTML()
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(table))
	if err != nil {
		return "", fmt.Errorf("failed to parse table: %w", err)
	}
	return tableToMarkdown(doc.Find("table").First()), nil
}

// ToText renders one block per product
func (c *ProductContent) ToText() (string, error) {
	var b strings.Builder
	for _, p := range c.Products {
		fmt.Fprintf(&b, "<h3>%s</h3>\n<p>%s</p>\n<p>Price: $%s, rating: %d, reviews: %d</p>\n",
			html.EscapeString(p.Title),
			html.EscapeString(p.Description),
			product.FormatPrice(p.Price),
			p.Rating,
			p.NumOfReviews,
		)
	}

	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(b.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to text: %w", err)
	}
	return text, nil
}

// tableToMarkdown converts a header row plus tbody rows to a Markdown table
func tableToMarkdown(table *goquery.Selection) string {
	headers := []string{}
	table.Find("thead tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, markdownCell(cell))
	})
	if len(headers) == 0 {
		return ""
	}

	var builder strings.Builder
	writeRow := func(cells []string) {
		builder.WriteString("| ")
		builder.WriteString(strings.Join(cells, " | "))
		builder.WriteString(" |\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, markdownCell(cell))
		})
		if len(cells) > 0 {
			writeRow(cells)
		}
	})

	return builder.String()
}

func markdownCell(cell *goquery.Selection) string {
	text := strings.TrimSpace(cell.Text())
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "|", `\|`)
}

// FileSink writes every finished batch entry under Dir
type FileSink struct {
	Dir    string
	Format string // "auto" or empty picks the format from the file extension
}

// Save writes products to file, relative to the sink directory
func (s *FileSink) Save(file string, products []product.Product) error {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, file)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	format := s.Format
	if format == "" || format == "auto" {
		format = formatter.InferFormat(path)
	}

	if format == "csv" {
		return SaveCSV(path, products)
	}

	content, err := formatter.Format(NewProductContent(products), format)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", file, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
