package site

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&site)

	if err := validate(&site); err != nil {
		return nil, fmt.Errorf("invalid site config %s: %w", path, err)
	}

	return &site, nil
}

func setDefaults(site *Site) {
	if site.Podcast.Path == "" {
		site.Podcast.Path = "podcast.xml"
	}
	if site.Podcast.PostCategory == "" {
		site.Podcast.PostCategory = "podcast"
	}
	if site.Podcast.EnclosureBase == "" {
		site.Podcast.EnclosureBase = "https://archive.org/"
	}
	if site.FeedLength == 0 {
		site.FeedLength = 10
	}
}

func validate(site *Site) error {
	if site.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if len(site.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}
	if site.FeedLength < 0 {
		return fmt.Errorf("feed_length must be non-negative")
	}

	for lang := range site.Languages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("invalid language tag '%s': %w", lang, err)
		}
	}

	return nil
}

// SortedLanguages returns the configured language tags in a stable
// order so build units are planned deterministically.
func (s *Site) SortedLanguages() []string {
	langs := make([]string, 0, len(s.Languages))
	for lang := range s.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
