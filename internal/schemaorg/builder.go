// Package schemaorg builds schema.org JSON-LD payloads for generated
// page metadata.
package schemaorg

import (
	"encoding/json"
	"fmt"
	"strings"
)

const context = "https://schema.org"

// Thing is a generic JSON-LD node.
type Thing map[string]any

// WebPageInput describes a generic web page.
type WebPageInput struct {
	URL         string
	Name        string
	Description string
	Language    string
}

// WebPage builds a WebPage node.
func WebPage(in WebPageInput) Thing {
	t := Thing{
		"@context": context,
		"@type":    "WebPage",
	}
	setIfPresent(t, "url", in.URL)
	setIfPresent(t, "name", in.Name)
	setIfPresent(t, "description", in.Description)
	setIfPresent(t, "inLanguage", in.Language)
	return t
}

// ArticleInput describes an article page.
type ArticleInput struct {
	URL           string
	Headline      string
	Description   string
	Image         string
	Language      string
	AuthorName    string
	DatePublished string
	DateModified  string
}

// Article builds an Article node.
func Article(in ArticleInput) Thing {
	t := Thing{
		"@context": context,
		"@type":    "Article",
	}
	setIfPresent(t, "url", in.URL)
	setIfPresent(t, "headline", in.Headline)
	setIfPresent(t, "description", in.Description)
	setIfPresent(t, "image", in.Image)
	setIfPresent(t, "inLanguage", in.Language)
	setIfPresent(t, "datePublished", in.DatePublished)
	setIfPresent(t, "dateModified", in.DateModified)
	if strings.TrimSpace(in.AuthorName) != "" {
		t["author"] = Thing{"@type": "Person", "name": in.AuthorName}
	}
	return t
}

// ProductInput describes a product page.
type ProductInput struct {
	URL         string
	Name        string
	Description string
	Image       string
}

// Product builds a Product node.
func Product(in ProductInput) Thing {
	t := Thing{
		"@context": context,
		"@type":    "Product",
	}
	setIfPresent(t, "url", in.URL)
	setIfPresent(t, "name", in.Name)
	setIfPresent(t, "description", in.Description)
	setIfPresent(t, "image", in.Image)
	return t
}

// BreadcrumbItem is one trail entry, in order.
type BreadcrumbItem struct {
	Name string
	URL  string
}

// Breadcrumbs builds a BreadcrumbList node.
func Breadcrumbs(items []BreadcrumbItem) Thing {
	elements := make([]Thing, 0, len(items))
	for i, item := range items {
		el := Thing{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     item.Name,
		}
		setIfPresent(el, "item", item.URL)
		elements = append(elements, el)
	}

	return Thing{
		"@context":        context,
		"@type":           "BreadcrumbList",
		"itemListElement": elements,
	}
}

// OrganizationInput describes the publishing organization.
type OrganizationInput struct {
	Name string
	URL  string
	Logo string
}

// Organization builds an Organization node.
func Organization(in OrganizationInput) Thing {
	t := Thing{
		"@context": context,
		"@type":    "Organization",
	}
	setIfPresent(t, "name", in.Name)
	setIfPresent(t, "url", in.URL)
	setIfPresent(t, "logo", in.Logo)
	return t
}

// Marshal renders a node as compact JSON.
func Marshal(t Thing) (json.RawMessage, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode json-ld: %w", err)
	}
	return data, nil
}

// ScriptTag renders a node as an embeddable ld+json script element.
func ScriptTag(t Thing) (string, error) {
	data, err := Marshal(t)
	if err != nil {
		return "", err
	}
	return `<script type="application/ld+json">` + string(data) + `</script>`, nil
}

func setIfPresent(t Thing, key, value string) {
	if strings.TrimSpace(value) != "" {
		t[key] = value
	}
}
