package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// TierKind decides when a tier runs and how its output is combined.
type TierKind int

const (
	// TierSeed always runs and its text leads the output. Like every tier,
	// its whitespace is collapsed, so the output starts with the seed text
	// in normalized form rather than byte for byte.
	TierSeed TierKind = iota
	// TierStructural always runs and appends to the output.
	TierStructural
	// TierFallback runs only when no structural tier found anything. The
	// first fallback that yields text wins and the rest are skipped.
	// Seed fragments do not count, so a page with only a seed still falls back.
	TierFallback
)

func (k TierKind) String() string {
	switch k {
	case TierSeed:
		return "seed"
	case TierStructural:
		return "structural"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Strategy pulls text fragments out of a parsed page. It must not modify doc.
type Strategy func(doc *goquery.Document) []string

// Tier is one step of the extraction chain.
type Tier struct {
	Name     string
	Kind     TierKind
	Strategy Strategy
}

// Fragment is a piece of text together with the tier that produced it.
type Fragment struct {
	Tier string
	Text string
}

type Extraction struct {
	Fragments []Fragment
}

// Texts returns the fragment texts in extraction order.
func (e Extraction) Texts() []string {
	texts := make([]string, len(e.Fragments))
	for i, f := range e.Fragments {
		texts[i] = f.Text
	}
	return texts
}

func (e Extraction) Empty() bool {
	return len(e.Fragments) == 0
}

// Extractor runs a chain of tiers over a page.
type Extractor struct {
	tiers []Tier
}

// NewExtractor returns an extractor over tiers, or over DefaultTiers when
// none are given. Tiers are evaluated in the order given.
func NewExtractor(tiers ...Tier) *Extractor {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	return &Extractor{tiers: tiers}
}

// DefaultTiers is the page description, then video titles, then generic
// page content.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "og:description", Kind: TierSeed, Strategy: MetaDescription},
		{Name: "video-titles", Kind: TierStructural, Strategy: VideoTitles},
		{Name: "content", Kind: TierFallback, Strategy: ContentText},
	}
}

// ReadabilityTier is a fallback that runs the readability article extractor
// over the page.
func ReadabilityTier() Tier {
	return Tier{Name: "readability", Kind: TierFallback, Strategy: ReadableArticle}
}

// ExtractHTML parses body and extracts from it. Markup that cannot be parsed
// yields an empty extraction rather than an error.
func (e *Extractor) ExtractHTML(body, pageURL string) Extraction {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Extraction{}
	}
	if u, err := url.Parse(pageURL); err == nil {
		doc.Url = u
	}
	return e.Extract(doc)
}

func (e *Extractor) Extract(doc *goquery.Document) Extraction {
	var seeds, structural, fallback []Fragment

	for _, tier := range e.tiers {
		switch tier.Kind {
		case TierSeed:
			seeds = append(seeds, run(tier, doc)...)
		case TierStructural:
			structural = append(structural, run(tier, doc)...)
		case TierFallback:
			if len(structural) > 0 || len(fallback) > 0 {
				continue
			}
			fallback = run(tier, doc)
		}
	}

	fragments := make([]Fragment, 0, len(seeds)+len(structural)+len(fallback))
	fragments = append(fragments, seeds...)
	fragments = append(fragments, structural...)
	fragments = append(fragments, fallback...)
	return Extraction{Fragments: fragments}
}

// run collects the non-blank fragments of tier with each run of whitespace
// collapsed to a single space.
func run(tier Tier, doc *goquery.Document) []Fragment {
	var fragments []Fragment
	for _, text := range tier.Strategy(doc) {
		if text = cleanContent(text); text != "" {
			fragments = append(fragments, Fragment{Tier: tier.Name, Text: text})
		}
	}
	return fragments
}

func cleanContent(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// MetaDescription returns the og:description of the page, if any.
func MetaDescription(doc *goquery.Document) []string {
	content, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content")
	if !ok {
		return nil
	}
	return []string{content}
}

// VideoTitles returns the title of every video entry link, in document
// order and without removing repeats.
func VideoTitles(doc *goquery.Document) []string {
	var titles []string
	doc.Find("a#video-title").Each(func(_ int, s *goquery.Selection) {
		title, ok := s.Attr("title")
		if !ok || strings.TrimSpace(title) == "" {
			title = s.Text()
		}
		titles = append(titles, title)
	})
	return titles
}

const contentSelector = "p, li, h1, h2, h3, h4, h5, h6, a"

// ContentText returns the visible text of paragraphs, list items, headings
// and links in document order. Elements nested inside another matched
// element are skipped since their text is already part of the outer one.
func ContentText(doc *goquery.Document) []string {
	var texts []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(contentSelector).Length() > 0 {
			return
		}
		texts = append(texts, s.Text())
	})
	return texts
}

// ReadableArticle returns the main article text as found by readability.
func ReadableArticle(doc *goquery.Document) []string {
	html, err := doc.Html()
	if err != nil {
		return nil
	}
	pageURL := doc.Url
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return nil
	}
	return []string{article.TextContent}
}
