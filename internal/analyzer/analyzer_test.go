package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Token Buckets Explained &amp; Applied</title>
  <meta name="description" content="A practical guide to token bucket rate limiting.">
  <link rel="canonical" href="https://example.com/posts/token-buckets">
  <script>var tracking = "ignore me";</script>
  <style>.hero { color: red; }</style>
</head>
<body>
  <article>
    <h1>Token Buckets Explained</h1>
    <h2>Refill Mechanics</h2>
    <img src="/images/bucket.png" alt="bucket diagram">
    <img src="/images/no-alt.png">
    <p><a href="/posts/rate-limits">rate limits</a> inside the same site,
    and <a href="https://other.example.org/ref">an external reference</a>.
    <a href="#section">skip</a></p>
    <p>` + strings.Repeat("bucket tokens refill capacity limiter admission ", 60) + `</p>
  </article>
</body>
</html>`

func TestAnalyzeExtractsDocumentFeatures(t *testing.T) {
	a := Analyze(articleHTML, "https://example.com/posts/token-buckets")

	assert.Equal(t, "Token Buckets Explained & Applied", a.Title)
	assert.Equal(t, "A practical guide to token bucket rate limiting.", a.MetaDescription)
	assert.Equal(t, "https://example.com/posts/token-buckets", a.Canonical)

	require.Len(t, a.Headings, 2)
	assert.Equal(t, Heading{Level: 1, Text: "Token Buckets Explained"}, a.Headings[0])
	assert.Equal(t, Heading{Level: 2, Text: "Refill Mechanics"}, a.Headings[1])

	require.Len(t, a.Images, 2)
	assert.Equal(t, "/images/bucket.png", a.Images[0].Src)
	assert.Equal(t, "bucket diagram", a.Images[0].Alt)
	assert.Empty(t, a.Images[1].Alt)
}

func TestAnalyzeClassifiesLinks(t *testing.T) {
	a := Analyze(articleHTML, "https://example.com/posts/token-buckets")

	// The fragment-only anchor is dropped.
	require.Len(t, a.Links, 2)
	assert.False(t, a.Links[0].External)
	assert.True(t, a.Links[1].External)
	assert.Equal(t, "https://other.example.org/ref", a.Links[1].Href)
}

func TestAnalyzeStripsScriptAndStyle(t *testing.T) {
	a := Analyze(articleHTML, "")

	assert.NotContains(t, a.Text, "tracking")
	assert.NotContains(t, a.Text, "hero")
}

func TestAnalyzeRanksKeywords(t *testing.T) {
	a := Analyze(articleHTML, "")

	require.NotEmpty(t, a.Keywords)
	words := make([]string, 0, len(a.Keywords))
	for _, k := range a.Keywords {
		words = append(words, k.Word)
	}
	assert.Contains(t, words, "bucket")
	assert.Contains(t, words, "tokens")

	// Ranked by descending count.
	for i := 1; i < len(a.Keywords); i++ {
		assert.GreaterOrEqual(t, a.Keywords[i-1].Count, a.Keywords[i].Count)
	}
}

func TestAnalyzeDetectsLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "<p>the bucket is full and the tokens are not available for this request</p>",
			want: "en",
		},
		{
			name: "spanish",
			text: "<p>el limitador de peticiones es una parte importante de la arquitectura y no es opcional para el servicio</p>",
			want: "es",
		},
		{
			name: "german",
			text: "<p>der eimer ist voll und die anfragen sind nicht erlaubt bei diesem dienst von der konfiguration</p>",
			want: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.text, "")
			assert.Equal(t, tt.want, a.Language)
		})
	}
}

func TestClassifyContent(t *testing.T) {
	product := `<html><body><h1>Widget</h1><p>$19.99</p><button>Add to cart</button></body></html>`
	a := Analyze(product, "")
	assert.Equal(t, ContentTypeProduct, a.ContentType)

	a = Analyze(articleHTML, "")
	assert.Equal(t, ContentTypeArticle, a.ContentType)

	var sb strings.Builder
	sb.WriteString("<html><body><ul>")
	for i := 0; i < 30; i++ {
		sb.WriteString(`<li><a href="/item">item</a></li>`)
	}
	sb.WriteString("</ul></body></html>")
	a = Analyze(sb.String(), "")
	assert.Equal(t, ContentTypeListing, a.ContentType)

	a = Analyze("<html><body><p>hello world</p></body></html>", "")
	assert.Equal(t, ContentTypeGeneric, a.ContentType)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := Analyze("", "")

	assert.Empty(t, a.Title)
	assert.Zero(t, a.WordCount)
	assert.Equal(t, "en", a.Language)
	assert.Equal(t, ContentTypeGeneric, a.ContentType)
}
