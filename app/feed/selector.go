package feed

import "podfeed/app/content"

// SelectEpisodes filters posts down to those whose per-language
// category matches exactly, preserving source order and truncating to
// max. A zero max means no limit.
func SelectEpisodes(posts []content.Post, lang, category string, max int) []content.Post {
	var episodes []content.Post

	for i := range posts {
		if posts[i].Category(lang) != category {
			continue
		}
		episodes = append(episodes, posts[i])
		if max > 0 && len(episodes) == max {
			break
		}
	}

	return episodes
}
