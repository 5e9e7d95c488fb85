// Package engine orchestrates page analysis, prompt construction, and the
// rate-limited provider call that produces final metadata.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagemeta/pagemeta/internal/analyzer"
	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/provider/driver"
	"github.com/pagemeta/pagemeta/internal/provider/prompt"
	"github.com/pagemeta/pagemeta/internal/schemaorg"
)

// Completer runs one gated completion against a named provider. Satisfied
// by *provider.Invoker.
type Completer interface {
	Complete(ctx context.Context, providerName string, req *driver.Request) (*driver.Response, error)
}

// Cache is the lookaside store for generated metadata.
type Cache interface {
	Get(ctx context.Context, key string) (*core.Metadata, error)
	Put(ctx context.Context, key string, meta *core.Metadata, ttl time.Duration) error
}

// Engine generates metadata for pages. A nil Invoker degrades to purely
// heuristic metadata derived from the analysis, so the CLI works without
// provider credentials.
type Engine struct {
	Invoker  Completer
	Prompts  map[string]*prompt.Prompt
	Cache    Cache
	CacheTTL time.Duration
	Logger   *zap.Logger

	// SiteName, when set, is emitted as og:site_name.
	SiteName string
}

// maxPromptText caps how much page text is sent to a provider.
const maxPromptText = 6000

// Generate analyzes the page and produces metadata, serving from cache
// when possible. Rate limit errors from the invoker pass through
// unchanged so callers can apply their own backoff.
func (e *Engine) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, fmt.Errorf("html content is required")
	}

	a := analyzer.Analyze(req.HTML, req.URL)
	key := cacheKey(req)

	if e.Cache != nil && !req.SkipCache {
		meta, err := e.Cache.Get(ctx, key)
		if err != nil {
			e.logger().Warn("metadata cache read failed", zap.Error(err))
		} else if meta != nil {
			return &core.GenerateResult{Metadata: meta, Analysis: a, Cached: true}, nil
		}
	}

	var (
		meta       *core.Metadata
		providerID string
		err        error
	)
	if e.Invoker != nil {
		meta, providerID, err = e.generate(ctx, req, a)
		if err != nil {
			return nil, err
		}
	} else {
		meta = heuristicMetadata(a)
	}

	e.decorate(meta, a, req.URL)

	if e.Cache != nil {
		ttl := e.CacheTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if err := e.Cache.Put(ctx, key, meta, ttl); err != nil {
			e.logger().Warn("metadata cache write failed", zap.Error(err))
		}
	}

	return &core.GenerateResult{Metadata: meta, Analysis: a, Provider: providerID}, nil
}

func (e *Engine) generate(ctx context.Context, req core.GenerateRequest, a *analyzer.Analysis) (*core.Metadata, string, error) {
	slug := strings.TrimSpace(req.Prompt)
	if slug == "" {
		slug = "metadata"
	}

	p, ok := e.Prompts[slug]
	if !ok {
		return nil, "", fmt.Errorf("unknown prompt %q", slug)
	}

	system, user, err := p.Render(promptData(req, a))
	if err != nil {
		return nil, "", err
	}

	resp, err := e.Invoker.Complete(ctx, req.Provider, &driver.Request{System: system, Prompt: user})
	if err != nil {
		return nil, "", err
	}

	meta, err := parseMetadata(slug, resp.Text)
	if err != nil {
		return nil, "", err
	}
	return meta, req.Provider, nil
}

func promptData(req core.GenerateRequest, a *analyzer.Analysis) map[string]string {
	heading := a.Title
	for _, h := range a.Headings {
		if h.Level == 1 {
			heading = h.Text
			break
		}
	}

	words := make([]string, 0, len(a.Keywords))
	for _, k := range a.Keywords {
		words = append(words, k.Word)
	}

	text := a.Text
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	return map[string]string{
		"url":          req.URL,
		"language":     a.Language,
		"content_type": a.ContentType,
		"heading":      heading,
		"keywords":     strings.Join(words, ", "),
		"text":         text,
	}
}

// parseMetadata maps a provider response onto Metadata. The metadata
// prompt demands a JSON object; single-field prompts return plain text.
func parseMetadata(slug, text string) (*core.Metadata, error) {
	text = strings.TrimSpace(text)

	switch slug {
	case "title":
		return &core.Metadata{Title: text}, nil
	case "description":
		return &core.Metadata{Description: text}, nil
	}

	payload := extractJSONObject(text)
	if payload == "" {
		return nil, fmt.Errorf("provider response is not a JSON object")
	}

	var parsed struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	return &core.Metadata{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Keywords:    parsed.Keywords,
	}, nil
}

// extractJSONObject tolerates code fences and prose around the object.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// decorate fills the derived fields: canonical, open graph, twitter card,
// JSON-LD, plus analysis fallbacks for anything the provider left empty.
func (e *Engine) decorate(meta *core.Metadata, a *analyzer.Analysis, pageURL string) {
	if meta.Title == "" {
		meta.Title = a.Title
	}
	if meta.Description == "" {
		meta.Description = a.MetaDescription
	}
	if len(meta.Keywords) == 0 {
		for _, k := range a.Keywords {
			meta.Keywords = append(meta.Keywords, k.Word)
		}
	}

	meta.Canonical = firstNonEmpty(a.Canonical, pageURL)

	ogType := "website"
	if a.ContentType == analyzer.ContentTypeArticle {
		ogType = "article"
	}
	meta.OpenGraph = map[string]string{
		"og:title":       meta.Title,
		"og:description": meta.Description,
		"og:type":        ogType,
	}
	if meta.Canonical != "" {
		meta.OpenGraph["og:url"] = meta.Canonical
	}
	if e.SiteName != "" {
		meta.OpenGraph["og:site_name"] = e.SiteName
	}

	image := ""
	if len(a.Images) > 0 {
		image = a.Images[0].Src
		meta.OpenGraph["og:image"] = image
	}

	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	meta.TwitterCard = map[string]string{
		"twitter:card":        card,
		"twitter:title":       meta.Title,
		"twitter:description": meta.Description,
	}

	node := jsonLDNode(meta, a)
	if e.SiteName != "" {
		node["publisher"] = schemaorg.Organization(schemaorg.OrganizationInput{
			Name: e.SiteName,
		})
	}
	if data, err := schemaorg.Marshal(node); err == nil {
		meta.JSONLD = data
	}
}

func jsonLDNode(meta *core.Metadata, a *analyzer.Analysis) schemaorg.Thing {
	image := ""
	if len(a.Images) > 0 {
		image = a.Images[0].Src
	}

	switch a.ContentType {
	case analyzer.ContentTypeArticle:
		return schemaorg.Article(schemaorg.ArticleInput{
			URL:         meta.Canonical,
			Headline:    meta.Title,
			Description: meta.Description,
			Image:       image,
			Language:    a.Language,
		})
	case analyzer.ContentTypeProduct:
		return schemaorg.Product(schemaorg.ProductInput{
			URL:         meta.Canonical,
			Name:        meta.Title,
			Description: meta.Description,
			Image:       image,
		})
	default:
		return schemaorg.WebPage(schemaorg.WebPageInput{
			URL:         meta.Canonical,
			Name:        meta.Title,
			Description: meta.Description,
			Language:    a.Language,
		})
	}
}

// heuristicMetadata derives metadata from the analysis alone.
func heuristicMetadata(a *analyzer.Analysis) *core.Metadata {
	title := a.Title
	if title == "" {
		for _, h := range a.Headings {
			if h.Level == 1 {
				title = h.Text
				break
			}
		}
	}

	description := a.MetaDescription
	if description == "" {
		description = truncate(a.Text, 160)
	}

	return &core.Metadata{Title: title, Description: description}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}

func cacheKey(req core.GenerateRequest) string {
	h := sha256.New()
	h.Write([]byte(req.URL))
	h.Write([]byte{0})
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(req.HTML))
	return hex.EncodeToString(h.Sum(nil))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}
