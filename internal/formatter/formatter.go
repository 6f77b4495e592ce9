package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"shopscrape/internal/scraper"
)

// Formats lists the accepted values of --format
var Formats = []string{"auto", "csv", "json", "markdown", "html", "text"}

func Format(content scraper.Content, format string) (string, error) {
	switch format {
	case "html":
		return content.ToHTML()
	case "text":
		return content.ToText()
	case "markdown":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	case "json":
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Valid reports whether format is one of Formats
func Valid(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// InferFormat infers output format from file extension, defaulting to csv
func InferFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	default:
		return "csv"
	}
}
