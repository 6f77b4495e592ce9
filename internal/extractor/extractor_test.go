package extractor

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"shopscrape/internal/product"
)

const shirtHTML = `
	<div class="thumbnail">
		<h4 class="price">$19.99</h4>
		<h4><a class="title" title="Classic Shirt" href="/product/1">Classic Sh...</a></h4>
		<p class="description">Soft&nbsp;cotton</p>
		<div class="ratings">
			<p class="review-count">42 reviews</p>
			<p data-rating="2">
				<span class="ws-icon ws-icon-star"></span>
				<span class="ws-icon ws-icon-star"></span>
			</p>
		</div>
	</div>`

func page(blocks ...string) string {
	return "<html><body><div class=\"row\">" + strings.Join(blocks, "\n") + "</div></body></html>"
}

func TestExtractor_ExtractHTML(t *testing.T) {
	e := NewExtractor(DefaultSelectors())

	products, err := e.ExtractHTML(page(shirtHTML))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(products))
	}

	expected := product.Product{
		Title:        "Classic Shirt",
		Description:  "Soft cotton",
		Price:        19.99,
		Rating:       2,
		NumOfReviews: 42,
	}
	if products[0] != expected {
		t.Errorf("Product mismatch.\nExpected: %+v\nGot: %+v", expected, products[0])
	}
}

func TestExtractor_DocumentOrder(t *testing.T) {
	e := NewExtractor(DefaultSelectors())

	var blocks []string
	for i := 1; i <= 3; i++ {
		blocks = append(blocks, strings.Replace(shirtHTML, "Classic Shirt", "Shirt "+strconv.Itoa(i), 1))
	}

	products, err := e.ExtractHTML(page(blocks...))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Expected 3 products, got %d", len(products))
	}
	for i, p := range products {
		if want := "Shirt " + strconv.Itoa(i+1); p.Title != want {
			t.Errorf("Product %d title = %q, want %q", i, p.Title, want)
		}
	}
}

func TestExtractor_NoProducts(t *testing.T) {
	e := NewExtractor(DefaultSelectors())

	products, err := e.ExtractHTML(page())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Expected no products, got %d", len(products))
	}
}

func TestExtractor_ZeroStars(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	block := strings.ReplaceAll(shirtHTML, `<span class="ws-icon ws-icon-star"></span>`, "")

	products, err := e.ExtractHTML(page(block))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if products[0].Rating != 0 {
		t.Errorf("Expected rating 0, got %d", products[0].Rating)
	}
}

func TestExtractor_StarsOutsideRatingsIgnored(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	block := strings.Replace(shirtHTML, `<p class="description">`,
		`<span class="ws-icon ws-icon-star"></span><p class="description">`, 1)

	products, err := e.ExtractHTML(page(block))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if products[0].Rating != 2 {
		t.Errorf("Expected rating 2, got %d", products[0].Rating)
	}
}

func TestExtractor_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		field string
	}{
		{"no title element", `class="title"`, `class="name"`, "title"},
		{"no title attribute", `title="Classic Shirt"`, ``, "title"},
		{"no description", `class="description"`, `class="text"`, "description"},
		{"no price", `class="price"`, `class="cost"`, "price"},
		{"no review count", `class="review-count"`, `class="reviews"`, "num_of_reviews"},
	}

	e := NewExtractor(DefaultSelectors())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := strings.Replace(shirtHTML, tt.from, tt.to, 1)

			products, err := e.ExtractHTML(page(block))
			if err == nil {
				t.Fatalf("Expected error, got %d products", len(products))
			}
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("Expected MissingFieldError, got %T: %v", err, err)
			}
			if missing.Field != tt.field {
				t.Errorf("Field = %q, want %q", missing.Field, tt.field)
			}
			if products != nil {
				t.Errorf("Expected no partial result, got %v", products)
			}
		})
	}
}

func TestExtractor_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		field string
	}{
		{"price not a number", "$19.99", "$N/A", "price"},
		{"empty price", "$19.99", "", "price"},
		{"review count not a number", "42 reviews", "many reviews", "num_of_reviews"},
		{"empty review count", "42 reviews", "  ", "num_of_reviews"},
	}

	e := NewExtractor(DefaultSelectors())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := strings.Replace(shirtHTML, tt.from, tt.to, 1)

			_, err := e.ExtractHTML(page(block))
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Expected FormatError, got %T: %v", err, err)
			}
			if formatErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", formatErr.Field, tt.field)
			}
		})
	}
}

func TestExtractor_MalformedBlockAbortsPage(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	bad := strings.Replace(shirtHTML, "$19.99", "$N/A", 1)

	products, err := e.ExtractHTML(page(shirtHTML, bad, shirtHTML))
	if err == nil {
		t.Fatal("Expected error for malformed second product")
	}
	if !strings.Contains(err.Error(), "product 1") {
		t.Errorf("Expected error to name product 1, got %v", err)
	}
	if products != nil {
		t.Errorf("Expected no products, got %d", len(products))
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$19.99", 19.99},
		{"$1178.99", 1178.99},
		{" $24.99\n", 24.99},
		{"100", 100},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if err != nil {
			t.Errorf("parsePrice(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseReviewCount_UnwrapsStrconv(t *testing.T) {
	_, err := parseReviewCount("x reviews")
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("Expected wrapped *strconv.NumError, got %T", err)
	}
}
