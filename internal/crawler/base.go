package crawler

import (
	"net/url"
	"strings"

	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/services/store"
)

// CardMatcher assigns campaigns to cards by keyword
type CardMatcher struct {
	cards    store.CardMap
	keywords map[string][]string
}

// NewCardMatcher pairs the store's cards with the configured keywords. A
// card without configured keywords is matched by its slug.
func NewCardMatcher(cards store.CardMap, configured []config.CardKeywords) CardMatcher {
	keywords := make(map[string][]string, len(configured))
	for _, ck := range configured {
		kws := make([]string, 0, len(ck.Keywords))
		for _, kw := range ck.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		keywords[ck.Slug] = kws
	}
	return CardMatcher{cards: cards, keywords: keywords}
}

// Match returns the first card, in store order, whose keyword appears in
// text. When nothing matches the source's first card is used; this default
// can misattribute campaigns of secondary cards.
func (m CardMatcher) Match(text string) int64 {
	lower := strings.ToLower(text)
	for _, card := range m.cards {
		kws, ok := m.keywords[card.Slug]
		if !ok || len(kws) == 0 {
			kws = []string{strings.ToLower(card.Slug)}
		}
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				return card.ID
			}
		}
	}
	first, _ := m.cards.First()
	return first.ID
}

// ResolveURL makes href absolute against base. Empty and "#" hrefs are
// rejected, and so is anything that does not end up http(s), such as
// "javascript:void(0)" or "mailto:".
func ResolveURL(base, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return href, isWebScheme(ref.Scheme)
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() || !isWebScheme(b.Scheme) {
		return "", false
	}
	return b.ResolveReference(ref).String(), true
}

func isWebScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}
