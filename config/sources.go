package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CardKeywords maps one card slug to the lower-case keywords that identify it in listing text
type CardKeywords struct {
	Slug     string   `yaml:"slug"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Source is the static description of one bank's campaign listing
type Source struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	URL          string         `yaml:"url"`
	BaseURL      string         `yaml:"base_url"`
	Cards        []CardKeywords `yaml:"cards"`
	WaitSelector string         `yaml:"wait_selector"`
	// RequestDelay is the fixed politeness pause after the page is loaded.
	// In YAML it needs a unit ("3s"); a bare number is rejected.
	RequestDelay time.Duration `yaml:"request_delay"`

	ScrollPasses   int    `yaml:"scroll_passes"`
	LoadMoreText   string `yaml:"load_more_text"`
	LoadMoreClicks int    `yaml:"load_more_clicks"`
	NeedsBrowser   bool   `yaml:"needs_browser"`
}

// Sources is the ordered, immutable set of configured sources
type Sources []Source

// DefaultSources returns the built-in table of bank campaign pages
func DefaultSources() Sources {
	return Sources{
		{
			ID:      "akbank",
			Name:    "Akbank",
			URL:     "https://www.axess.com.tr/kampanyalar",
			BaseURL: "https://www.axess.com.tr",
			Cards: []CardKeywords{
				{Slug: "akbank-axess", Name: "Axess", Keywords: []string{"axess", "akbank axess"}},
				{Slug: "akbank-wings", Name: "Wings", Keywords: []string{"wings", "akbank wings"}},
			},
			WaitSelector: ".boutiqueWrapper, .owl-carousel, .owl-item",
			RequestDelay: 3 * time.Second,
			ScrollPasses: 1,
			NeedsBrowser: true,
		},
		{
			ID:      "garanti",
			Name:    "Garanti BBVA",
			URL:     "https://www.bonus.com.tr/kampanyalar",
			BaseURL: "https://www.bonus.com.tr",
			Cards: []CardKeywords{
				{Slug: "garanti-bonus", Name: "Bonus", Keywords: []string{"bonus", "bonus card", "bonuscard"}},
				{Slug: "garanti-shopfly", Name: "Shop&Fly", Keywords: []string{"shop&fly", "shop and fly", "shopfly", "shop & fly"}},
			},
			WaitSelector: "li a[href*='/kampanyalar/'], h3",
			RequestDelay: 3 * time.Second,
			NeedsBrowser: true,
		},
		{
			ID:      "yapikredi",
			Name:    "Yapı Kredi",
			URL:     "https://www.worldcard.com.tr/kampanyalar",
			BaseURL: "https://www.worldcard.com.tr",
			Cards: []CardKeywords{
				{Slug: "yapikredi-world", Name: "World", Keywords: []string{"world", "world card", "worldcard"}},
				{Slug: "yapikredi-play", Name: "Play", Keywords: []string{"play", "play card", "playcard"}},
			},
			WaitSelector:   ".col-lg-4 a[href], .last-day",
			RequestDelay:   3 * time.Second,
			ScrollPasses:   5,
			LoadMoreText:   "Daha Fazla Göster",
			LoadMoreClicks: 3,
			NeedsBrowser:   true,
		},
		{
			ID:      "isbank",
			Name:    "İş Bankası",
			URL:     "https://www.maximum.com.tr/kampanyalar",
			BaseURL: "https://www.maximum.com.tr",
			Cards: []CardKeywords{
				{Slug: "isbank-maximum", Name: "Maximum", Keywords: []string{"maximum", "maximum card", "maximum kart"}},
			},
			WaitSelector: "h3 a[href*='/kampanyalar/']",
			RequestDelay: 3 * time.Second,
			ScrollPasses: 3,
			NeedsBrowser: true,
		},
		{
			ID:      "finansbank",
			Name:    "QNB Finansbank",
			URL:     "https://www.qnbcard.com.tr/kampanyalar",
			BaseURL: "https://www.qnbcard.com.tr",
			Cards: []CardKeywords{
				{Slug: "finansbank-cardfinans", Name: "CardFinans", Keywords: []string{"cardfinans", "card finans", "qnb", "parapuan"}},
			},
			WaitSelector: ".box-item",
			RequestDelay: 3 * time.Second,
			ScrollPasses: 3,
			NeedsBrowser: true,
		},
	}
}

// LoadSources returns the built-in sources, or the sources in path when it is set
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file struct {
		Sources Sources `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if err := file.Sources.prepare(); err != nil {
		return nil, err
	}
	return file.Sources, nil
}

// prepare checks loaded sources and fills BaseURL from the listing URL's
// scheme and host when it is omitted.
func (s Sources) prepare() error {
	if len(s) == 0 {
		return fmt.Errorf("no sources configured")
	}
	seen := make(map[string]bool, len(s))
	for i, src := range s {
		if src.ID == "" {
			return fmt.Errorf("source #%d has no id", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		if src.URL == "" {
			return fmt.Errorf("source %q has no url", src.ID)
		}
		if src.BaseURL == "" {
			u, err := url.Parse(src.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("source %q has an invalid url %q", src.ID, src.URL)
			}
			s[i].BaseURL = u.Scheme + "://" + u.Host
		}
	}
	return nil
}

// Get returns the source with the given id
func (s Sources) Get(id string) (Source, bool) {
	for _, src := range s {
		if src.ID == id {
			return src, true
		}
	}
	return Source{}, false
}

// IDs returns the configured source ids in order
func (s Sources) IDs() []string {
	ids := make([]string, len(s))
	for i, src := range s {
		ids[i] = src.ID
	}
	return ids
}

// Select returns the sources named by ids, in the order given.
// An empty ids list selects every source. Unknown ids are rejected.
func (s Sources) Select(ids []string) (Sources, error) {
	if len(ids) == 0 {
		return s, nil
	}

	var unknown []string
	selected := make(Sources, 0, len(ids))
	picked := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || picked[id] {
			continue
		}
		src, ok := s.Get(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		picked[id] = true
		selected = append(selected, src)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown source(s): %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(s.IDs(), ", "))
	}
	return selected, nil
}
