package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/pagemeta/pagemeta/internal/core"
)

// HTMLFormatter renders the metadata as a head snippet ready to paste
// into a page.
type HTMLFormatter struct{}

// FormatResult renders a generation result as HTML meta tags.
func (f *HTMLFormatter) FormatResult(result *core.GenerateResult) (string, error) {
	if result == nil || result.Metadata == nil {
		return "", nil
	}

	meta := result.Metadata
	var sb strings.Builder

	if meta.Title != "" {
		sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(meta.Title)))
	}
	if meta.Description != "" {
		writeMeta(&sb, "name", "description", meta.Description)
	}
	if len(meta.Keywords) > 0 {
		writeMeta(&sb, "name", "keywords", strings.Join(meta.Keywords, ", "))
	}
	if meta.Canonical != "" {
		sb.WriteString(fmt.Sprintf("<link rel=\"canonical\" href=%q>\n", meta.Canonical))
	}
	for _, key := range sortedKeys(meta.OpenGraph) {
		writeMeta(&sb, "property", key, meta.OpenGraph[key])
	}
	for _, key := range sortedKeys(meta.TwitterCard) {
		writeMeta(&sb, "name", key, meta.TwitterCard[key])
	}
	if len(meta.JSONLD) > 0 {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.Write(meta.JSONLD)
		sb.WriteString("</script>\n")
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

func writeMeta(sb *strings.Builder, attr, key, value string) {
	sb.WriteString(fmt.Sprintf("<meta %s=%q content=%q>\n", attr, key, html.EscapeString(value)))
}
