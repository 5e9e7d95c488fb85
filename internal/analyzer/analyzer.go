// Package analyzer extracts SEO-relevant features from raw HTML with
// regular expressions. It trades DOM fidelity for zero dependencies; the
// output feeds prompt construction and schema.org builders, not rendering.
package analyzer

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Analysis is the extracted feature set for one page.
type Analysis struct {
	Title           string    `json:"title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	Canonical       string    `json:"canonical,omitempty"`
	Headings        []Heading `json:"headings,omitempty"`
	Images          []Image   `json:"images,omitempty"`
	Links           []Link    `json:"links,omitempty"`
	Keywords        []Keyword `json:"keywords,omitempty"`
	Language        string    `json:"language"`
	ContentType     string    `json:"content_type"`
	WordCount       int       `json:"word_count"`

	// Text is the cleaned body text, used for prompt construction.
	Text string `json:"-"`
}

// Heading is one hN element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Image is one img element with its alt text.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Link is one anchor. External is relative to the page's own host.
type Link struct {
	Href     string `json:"href"`
	Text     string `json:"text,omitempty"`
	External bool   `json:"external"`
}

// Keyword is a ranked content word.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var (
	scriptRe    = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	titleRe     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe  = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]*>`)
	canonicalRe = regexp.MustCompile(`(?is)<link[^>]+rel=["']canonical["'][^>]*>`)
	headingRe   = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	imgRe       = regexp.MustCompile(`(?is)<img[^>]*>`)
	anchorRe    = regexp.MustCompile(`(?is)<a\s[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	tagRe       = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	wordRe      = regexp.MustCompile(`[a-zA-Z\x{00C0}-\x{024F}']+`)

	contentAttrRe = regexp.MustCompile(`(?is)content=["']([^"']*)["']`)
	hrefAttrRe    = regexp.MustCompile(`(?is)href=["']([^"']*)["']`)
	srcAttrRe     = regexp.MustCompile(`(?is)src=["']([^"']*)["']`)
	altAttrRe     = regexp.MustCompile(`(?is)alt=["']([^"']*)["']`)
)

// maxKeywords bounds the ranked keyword list.
const maxKeywords = 10

// Analyze extracts the feature set from raw HTML. pageURL is used to
// classify links as internal or external and may be empty.
func Analyze(html, pageURL string) *Analysis {
	a := &Analysis{}

	cleaned := scriptRe.ReplaceAllString(html, " ")
	cleaned = commentRe.ReplaceAllString(cleaned, " ")

	if m := titleRe.FindStringSubmatch(cleaned); m != nil {
		a.Title = cleanText(m[1])
	}
	if m := metaDescRe.FindString(cleaned); m != "" {
		if c := contentAttrRe.FindStringSubmatch(m); c != nil {
			a.MetaDescription = cleanText(c[1])
		}
	}
	if m := canonicalRe.FindString(cleaned); m != "" {
		if c := hrefAttrRe.FindStringSubmatch(m); c != nil {
			a.Canonical = strings.TrimSpace(c[1])
		}
	}

	for _, m := range headingRe.FindAllStringSubmatch(cleaned, -1) {
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		text := cleanText(m[2])
		if text == "" {
			continue
		}
		a.Headings = append(a.Headings, Heading{Level: level, Text: text})
	}

	for _, m := range imgRe.FindAllString(cleaned, -1) {
		src := ""
		if c := srcAttrRe.FindStringSubmatch(m); c != nil {
			src = strings.TrimSpace(c[1])
		}
		if src == "" {
			continue
		}
		img := Image{Src: src}
		if c := altAttrRe.FindStringSubmatch(m); c != nil {
			img.Alt = cleanText(c[1])
		}
		a.Images = append(a.Images, img)
	}

	pageHost := hostOf(pageURL)
	for _, m := range anchorRe.FindAllStringSubmatch(cleaned, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		a.Links = append(a.Links, Link{
			Href:     href,
			Text:     cleanText(m[2]),
			External: isExternal(href, pageHost),
		})
	}

	a.Text = cleanText(tagRe.ReplaceAllString(cleaned, " "))
	words := wordRe.FindAllString(strings.ToLower(a.Text), -1)
	a.WordCount = len(words)
	a.Keywords = rankKeywords(words)
	a.Language = DetectLanguage(words)
	a.ContentType = classifyContent(a, html)

	return a
}

// rankKeywords counts content words, skipping stopwords and short tokens.
func rankKeywords(words []string) []Keyword {
	counts := make(map[string]int)
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		if isStopword(w) {
			continue
		}
		counts[w]++
	}

	ranked := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		if c < 2 {
			continue
		}
		ranked = append(ranked, Keyword{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})

	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}
	return ranked
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&ndash;", "-",
	"&mdash;", "-",
)

func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func hostOf(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func isExternal(href, pageHost string) bool {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if pageHost == "" {
		return true
	}
	return !strings.EqualFold(u.Host, pageHost)
}
