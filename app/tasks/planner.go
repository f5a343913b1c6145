package tasks

import (
	"log/slog"
	"net/url"
	"path/filepath"

	"podfeed/app/content"
	"podfeed/app/feed"
	"podfeed/app/site"
)

// AssemblerFactory builds a fresh assembler (with its own enclosure
// service) per unit. Units may run concurrently, so they never share
// memoization state.
type AssemblerFactory func() *feed.Assembler

// Planner turns "one feed per configured language" into independent
// build units and declares each unit's input dependencies to the
// external build scheduler.
type Planner struct {
	site       *site.Site
	channels   map[string]site.Channel
	outputDir  string
	sink       DependencySink
	assemblers AssemblerFactory
}

func NewPlanner(siteCfg *site.Site, channels map[string]site.Channel, outputDir string,
	sink DependencySink, assemblers AssemblerFactory) *Planner {
	return &Planner{
		site:       siteCfg,
		channels:   channels,
		outputDir:  outputDir,
		sink:       sink,
		assemblers: assemblers,
	}
}

// Plan produces one build unit per configured language, in stable
// language order. Dependencies are the union of each selected
// episode's declared tokens for that language.
func (p *Planner) Plan(posts []content.Post) []*BuildFeedTask {
	var units []*BuildFeedTask

	for _, lang := range p.site.SortedLanguages() {
		episodes := feed.SelectEpisodes(posts, lang, p.site.Podcast.PostCategory, p.site.FeedLength)

		var deps, uptodate []string
		for i := range episodes {
			deps = append(deps, episodes[i].DepsFor(lang)...)
			uptodate = append(uptodate, episodes[i].DepsUptodateFor(lang)...)
		}

		feedURL := p.feedURL(lang)
		outputPath := p.outputPath(lang)

		if p.sink != nil {
			p.sink.Declare(outputPath, deps, uptodate)
		}

		unit := NewBuildFeedTask(p.channels[lang], episodes, feedURL, outputPath,
			deps, uptodate, p.assemblers())
		units = append(units, unit)

		slog.Debug("Planned build unit", "lang", lang, "episodes", len(episodes), "output", outputPath, "deps", len(deps))
	}

	return units
}

func (p *Planner) feedURL(lang string) string {
	joined, err := url.JoinPath(p.site.BaseURL, p.site.Languages[lang], p.site.Podcast.Path)
	if err != nil {
		slog.Warn("Failed to derive feed URL", "lang", lang, "error", err)
		return p.site.BaseURL
	}
	return joined
}

func (p *Planner) outputPath(lang string) string {
	return filepath.Join(p.outputDir, p.site.Languages[lang], p.site.Podcast.Path)
}
