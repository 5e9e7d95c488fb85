package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/provider/driver"
	"github.com/pagemeta/pagemeta/internal/provider/prompt"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

const testHTML = `<html lang="en"><head><title>Bucket Guide</title>
<meta name="description" content="All about buckets.">
<link rel="canonical" href="https://example.com/guide">
</head><body><article><h1>Bucket Guide</h1>
<img src="/img/cover.png" alt="cover">
<p>bucket tokens refill capacity bucket tokens refill capacity bucket tokens</p>
</article></body></html>`

type fakeCompleter struct {
	resp    *driver.Response
	err     error
	calls   int
	lastReq *driver.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, providerName string, req *driver.Request) (*driver.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type memCache struct {
	entries map[string]*core.Metadata
	puts    int
}

func (m *memCache) Get(ctx context.Context, key string) (*core.Metadata, error) {
	if m.entries == nil {
		return nil, nil
	}
	return m.entries[key], nil
}

func (m *memCache) Put(ctx context.Context, key string, meta *core.Metadata, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string]*core.Metadata)
	}
	m.entries[key] = meta
	m.puts++
	return nil
}

func testPrompts(t *testing.T) map[string]*prompt.Prompt {
	t.Helper()
	prompts, err := prompt.Defaults()
	require.NoError(t, err)
	return prompts
}

func TestGenerateRequiresHTML(t *testing.T) {
	e := &Engine{}
	_, err := e.Generate(context.Background(), core.GenerateRequest{})
	require.ErrorContains(t, err, "html content is required")
}

func TestGenerateHeuristicWithoutInvoker(t *testing.T) {
	e := &Engine{}

	result, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML, URL: "https://example.com/guide"})
	require.NoError(t, err)

	meta := result.Metadata
	assert.Equal(t, "Bucket Guide", meta.Title)
	assert.Equal(t, "All about buckets.", meta.Description)
	assert.Equal(t, "https://example.com/guide", meta.Canonical)
	assert.Equal(t, "article", meta.OpenGraph["og:type"])
	assert.Equal(t, "/img/cover.png", meta.OpenGraph["og:image"])
	assert.Equal(t, "summary_large_image", meta.TwitterCard["twitter:card"])
	assert.Contains(t, string(meta.JSONLD), `"Article"`)
	assert.False(t, result.Cached)
}

func TestGenerateParsesProviderResponse(t *testing.T) {
	completer := &fakeCompleter{resp: &driver.Response{
		Text: "```json\n{\"title\":\"Generated Title\",\"description\":\"Generated description.\",\"keywords\":[\"bucket\",\"tokens\"]}\n```",
	}}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t)}

	result, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML, URL: "https://example.com/guide"})
	require.NoError(t, err)

	assert.Equal(t, "Generated Title", result.Metadata.Title)
	assert.Equal(t, "Generated description.", result.Metadata.Description)
	assert.Equal(t, []string{"bucket", "tokens"}, result.Metadata.Keywords)

	require.NotNil(t, completer.lastReq)
	assert.Contains(t, completer.lastReq.System, "SEO specialist")
	assert.Contains(t, completer.lastReq.Prompt, "https://example.com/guide")
}

func TestGenerateTitlePromptReturnsPlainText(t *testing.T) {
	completer := &fakeCompleter{resp: &driver.Response{Text: "A Plain Title\n"}}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t)}

	result, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML, Prompt: "title"})
	require.NoError(t, err)
	assert.Equal(t, "A Plain Title", result.Metadata.Title)
}

func TestGenerateUnknownPrompt(t *testing.T) {
	e := &Engine{Invoker: &fakeCompleter{}, Prompts: testPrompts(t)}

	_, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML, Prompt: "nope"})
	require.ErrorContains(t, err, `unknown prompt "nope"`)
}

func TestGenerateRejectsNonJSONMetadataResponse(t *testing.T) {
	completer := &fakeCompleter{resp: &driver.Response{Text: "sorry, I cannot help with that"}}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t)}

	_, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML})
	require.ErrorContains(t, err, "not a JSON object")
}

func TestGenerateRateLimitErrorPassesThrough(t *testing.T) {
	completer := &fakeCompleter{err: &ratelimit.ExceededError{Provider: "openai-prod", WaitTime: time.Second}}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t)}

	_, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML})

	var exceeded *ratelimit.ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "openai-prod", exceeded.Provider)
}

func TestGenerateUsesCache(t *testing.T) {
	completer := &fakeCompleter{resp: &driver.Response{Text: `{"title":"T","description":"D"}`}}
	cache := &memCache{}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t), Cache: cache}

	req := core.GenerateRequest{HTML: testHTML, URL: "https://example.com/guide"}

	first, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, 1, cache.puts)

	second, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, "T", second.Metadata.Title)
}

func TestGenerateSkipCache(t *testing.T) {
	completer := &fakeCompleter{resp: &driver.Response{Text: `{"title":"T","description":"D"}`}}
	cache := &memCache{}
	e := &Engine{Invoker: completer, Prompts: testPrompts(t), Cache: cache}

	req := core.GenerateRequest{HTML: testHTML, SkipCache: true}

	_, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	_, err = e.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, completer.calls)
}

func TestGenerateSiteName(t *testing.T) {
	e := &Engine{Prompts: testPrompts(t), SiteName: "Acme Media"}

	result, err := e.Generate(context.Background(), core.GenerateRequest{HTML: testHTML})
	require.NoError(t, err)
	assert.Equal(t, "Acme Media", result.Metadata.OpenGraph["og:site_name"])
	assert.Contains(t, string(result.Metadata.JSONLD), `"publisher"`)
	assert.Contains(t, string(result.Metadata.JSONLD), "Acme Media")
}
