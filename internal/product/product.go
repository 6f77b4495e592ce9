package product

import (
	"math"
	"strconv"
	"strings"
)

// Product is one scraped listing. Field order is the output column order.
type Product struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Rating       int     `json:"rating"`
	NumOfReviews int     `json:"num_of_reviews"`
}

var fieldNames = []string{"title", "description", "price", "rating", "num_of_reviews"}

// Fields returns the column names in declaration order.
func Fields() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// Row returns the product as strings, ordered like Fields.
func (p Product) Row() []string {
	return []string{
		p.Title,
		p.Description,
		FormatPrice(p.Price),
		strconv.Itoa(p.Rating),
		strconv.Itoa(p.NumOfReviews),
	}
}

// FormatPrice renders a price as the shortest decimal that round-trips,
// keeping a ".0" on integral values so 100 is written as "100.0".
func FormatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
