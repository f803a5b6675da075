package crawler

import (
	"testing"

	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/services/store"

	"github.com/stretchr/testify/assert"
)

var akbankCards = store.CardMap{
	{ID: 11, Slug: "akbank-axess", Name: "Axess"},
	{ID: 12, Slug: "akbank-wings", Name: "Wings"},
}

func TestCardMatcher(t *testing.T) {
	m := NewCardMatcher(akbankCards, []config.CardKeywords{
		{Slug: "akbank-axess", Keywords: []string{"Axess", "akbank axess"}},
		{Slug: "akbank-wings", Keywords: []string{"wings"}},
	})

	tests := []struct {
		text string
		want int64
	}{
		{"Wings sahiplerine Migros'ta %10 indirim", 12},
		{"AXESS ile Trendyol'da 100 TL", 11},
		{"Axess ve Wings kartlara taksit", 11},
		// no keyword: first card of the source
		{"Teknosa'da 9 taksit", 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.text), tt.text)
	}
}

func TestCardMatcherFallsBackToSlug(t *testing.T) {
	m := NewCardMatcher(store.CardMap{
		{ID: 1, Slug: "garanti-bonus"},
		{ID: 2, Slug: "garanti-shopfly"},
	}, nil)

	assert.Equal(t, int64(2), m.Match("garanti-shopfly kampanyası"))
	assert.Equal(t, int64(1), m.Match("Shop&Fly kampanyası"))
}

func TestResolveURL(t *testing.T) {
	base := "https://www.axess.com.tr"
	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"/axess/kampanyadetay/8/123/migros", "https://www.axess.com.tr/axess/kampanyadetay/8/123/migros", true},
		{"https://www.bonus.com.tr/kampanyalar/x", "https://www.bonus.com.tr/kampanyalar/x", true},
		{"kampanyalar/y", "https://www.axess.com.tr/kampanyalar/y", true},
		{"  ", "", false},
		{"#", "", false},
		{"//cdn.axess.com.tr/x", "https://cdn.axess.com.tr/x", true},
		{"javascript:void(0)", "", false},
		{"JavaScript:openPopup('x')", "", false},
		{"mailto:kampanya@axess.com.tr", "", false},
		{"tel:4440025", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveURL(base, tt.href)
		assert.Equal(t, tt.ok, ok, tt.href)
		assert.Equal(t, tt.want, got, tt.href)
	}

	_, ok := ResolveURL("", "/kampanyalar/x")
	assert.False(t, ok, "relative links need a base")
}
