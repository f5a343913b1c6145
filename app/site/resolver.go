package site

import "fmt"

// ResolveChannel resolves the podcast channel configuration for one
// language. Translatable fields resolve override-first, then the
// site-wide blog setting for the same language. A required field that
// resolves to empty is a configuration error, surfaced here so the
// build fails before any episode is processed.
func (s *Site) ResolveChannel(lang string) (Channel, error) {
	if _, ok := s.Languages[lang]; !ok {
		return Channel{}, fmt.Errorf("language '%s' is not configured", lang)
	}

	ch := Channel{Lang: lang}

	ch.Title = s.Podcast.Title.Get(lang)
	if ch.Title == "" {
		ch.Title = s.Title.Get(lang)
	}
	if ch.Title == "" {
		return Channel{}, fmt.Errorf("channel title unresolved for language '%s'", lang)
	}

	ch.Link = s.Podcast.Link
	if ch.Link == "" {
		ch.Link = s.BaseURL
	}
	if ch.Link == "" {
		return Channel{}, fmt.Errorf("channel link unresolved for language '%s'", lang)
	}

	ch.Description = s.Podcast.Description.Get(lang)
	if ch.Description == "" {
		ch.Description = s.Description.Get(lang)
	}
	if ch.Description == "" {
		return Channel{}, fmt.Errorf("channel description unresolved for language '%s'", lang)
	}

	// The author override wins as a pair. A partial override is never
	// merged with the site defaults.
	if !s.Podcast.Author.IsZero() {
		ch.AuthorName = s.Podcast.Author.Name
		ch.AuthorEmail = s.Podcast.Author.Email
	} else {
		ch.AuthorName = s.Author
		ch.AuthorEmail = s.Email
	}

	ch.Category = s.Podcast.Category.Get(lang)

	ch.Logo = s.Podcast.Logo
	if ch.Logo == "" {
		ch.Logo = s.Logo
	}

	return ch, nil
}

// ResolveChannels resolves every configured language, failing fast on
// the first unresolved required field.
func (s *Site) ResolveChannels() (map[string]Channel, error) {
	channels := make(map[string]Channel, len(s.Languages))
	for _, lang := range s.SortedLanguages() {
		ch, err := s.ResolveChannel(lang)
		if err != nil {
			return nil, err
		}
		channels[lang] = ch
	}
	return channels, nil
}
