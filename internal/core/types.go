// Package core holds the domain types shared across pagemeta.
package core

import (
	"encoding/json"

	"github.com/pagemeta/pagemeta/internal/analyzer"
)

// Metadata is the generated SEO metadata for one page.
type Metadata struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords,omitempty"`
	Canonical   string            `json:"canonical,omitempty"`
	OpenGraph   map[string]string `json:"open_graph,omitempty"`
	TwitterCard map[string]string `json:"twitter_card,omitempty"`
	JSONLD      json.RawMessage   `json:"json_ld,omitempty"`
}

// GenerateRequest asks for metadata for one page.
type GenerateRequest struct {
	// URL is the page's public URL, used for canonical links and
	// internal-vs-external link classification. Optional.
	URL string `json:"url,omitempty"`

	// HTML is the raw page markup to analyze.
	HTML string `json:"html"`

	// Provider selects a configured backend instance; empty means the
	// configured default.
	Provider string `json:"provider,omitempty"`

	// Prompt selects a prompt slug; empty means "metadata".
	Prompt string `json:"prompt,omitempty"`

	// SkipCache bypasses the metadata cache for this request.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// GenerateResult is the engine's answer, including the analysis that fed
// the generation.
type GenerateResult struct {
	Metadata *Metadata          `json:"metadata"`
	Analysis *analyzer.Analysis `json:"analysis,omitempty"`
	Provider string             `json:"provider,omitempty"`
	Cached   bool               `json:"cached"`
}
