package analyzer

import (
	"regexp"
	"strings"
)

// Content type labels produced by classifyContent.
const (
	ContentTypeArticle = "article"
	ContentTypeProduct = "product"
	ContentTypeListing = "listing"
	ContentTypeGeneric = "generic"
)

// Stopword samples per language, used both for keyword filtering and for
// scoring-based language detection. English doubles as the keyword
// stopword list.
var stopwords = map[string]map[string]bool{
	"en": toSet("the a an and or but of to in on for with is are was were be been this that it as at by from not have has had will would can could"),
	"es": toSet("el la los las un una unas y o pero de a en para con es son fue eran ser este esta esto que como por desde no haber tiene"),
	"fr": toSet("le la les un une des et ou mais de à en pour avec est sont était être cette ce que comme par depuis ne pas avoir"),
	"de": toSet("der die das ein eine und oder aber von zu in auf für mit ist sind war waren sein diese dass es als bei aus nicht haben hat"),
}

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

func isStopword(word string) bool {
	return stopwords["en"][word]
}

// DetectLanguage scores lowercase words against per-language stopword
// sets and returns the best ISO 639-1 code, defaulting to "en".
func DetectLanguage(words []string) string {
	if len(words) == 0 {
		return "en"
	}

	best, bestScore := "en", 0
	for lang, set := range stopwords {
		score := 0
		for _, w := range words {
			if set[w] {
				score++
			}
		}
		if score > bestScore || (score == bestScore && lang == "en") {
			best, bestScore = lang, score
		}
	}
	return best
}

var (
	priceRe = regexp.MustCompile(`(?i)([$€£]\s?\d+([.,]\d{2})?|\d+([.,]\d{2})?\s?(USD|EUR|GBP))`)
	cartRe  = regexp.MustCompile(`(?i)(add to cart|add to basket|buy now|in stock|out of stock)`)
)

// classifyContent applies coarse heuristics over the extracted features.
func classifyContent(a *Analysis, rawHTML string) string {
	if priceRe.MatchString(rawHTML) && cartRe.MatchString(rawHTML) {
		return ContentTypeProduct
	}

	hasH1 := false
	for _, h := range a.Headings {
		if h.Level == 1 {
			hasH1 = true
			break
		}
	}
	if strings.Contains(strings.ToLower(rawHTML), "<article") || (hasH1 && a.WordCount >= 300) {
		return ContentTypeArticle
	}

	// Link-dense pages with little prose read as index/listing pages.
	if len(a.Links) >= 20 && a.WordCount < len(a.Links)*15 {
		return ContentTypeListing
	}

	return ContentTypeGeneric
}
