package tasks

import (
	"net/http"
	"testing"
	"time"

	"podfeed/app/content"
	"podfeed/app/enclosure"
	"podfeed/app/feed"
	"podfeed/app/site"
)

type declaredTarget struct {
	target   string
	deps     []string
	uptodate []string
}

type recordingSink struct {
	declared []declaredTarget
}

func (s *recordingSink) Declare(target string, deps []string, uptodate []string) {
	s.declared = append(s.declared, declaredTarget{target, deps, uptodate})
}

func testSite() *site.Site {
	return &site.Site{
		BaseURL:    "https://example.com/",
		Languages:  map[string]string{"en": "", "de": "de"},
		FeedLength: 5,
		Podcast: site.PodcastConfig{
			Path:         "podcast.xml",
			PostCategory: "podcast",
		},
	}
}

func testChannels() map[string]site.Channel {
	return map[string]site.Channel{
		"en": {Lang: "en", Title: "Test Podcast", Link: "https://example.com/", Description: "English feed"},
		"de": {Lang: "de", Title: "Test Podcast", Link: "https://example.com/de/", Description: "German feed"},
	}
}

func testAssemblerFactory(calls *int) AssemblerFactory {
	return func() *feed.Assembler {
		*calls++
		service := enclosure.NewService(&http.Client{}, "", nil, nil, "podfeed-test/1.0", time.Second)
		return feed.NewAssembler(service, content.RenderOptions{}, "https://example.com/", time.UTC)
	}
}

func episodeIn(slug, lang string, deps, uptodate []string) content.Post {
	return content.Post{
		Slug: slug,
		Date: "2023-07-01T10:00:00Z",
		Meta: map[string]map[string]string{
			lang: {content.MetaTitle: slug, content.MetaCategory: "podcast"},
		},
		Permalink: map[string]string{lang: "/posts/" + slug + "/"},
		Deps:      map[string][]string{lang: deps},
		DepsUp:    map[string][]string{lang: uptodate},
	}
}

func TestPlannerOneUnitPerLanguage(t *testing.T) {
	var factoryCalls int
	planner := NewPlanner(testSite(), testChannels(), "out", nil, testAssemblerFactory(&factoryCalls))

	posts := []content.Post{
		episodeIn("ep-en", "en", nil, nil),
		episodeIn("ep-de", "de", nil, nil),
	}

	units := planner.Plan(posts)

	if len(units) != 2 {
		t.Fatalf("Expected one unit per language, got %d", len(units))
	}
	if units[0].Lang != "de" || units[1].Lang != "en" {
		t.Errorf("Expected stable language order [de en], got [%s %s]", units[0].Lang, units[1].Lang)
	}
	if factoryCalls != 2 {
		t.Errorf("Each unit should get its own assembler, factory called %d times", factoryCalls)
	}
}

func TestPlannerFeedURLsAndOutputPaths(t *testing.T) {
	var factoryCalls int
	planner := NewPlanner(testSite(), testChannels(), "out", nil, testAssemblerFactory(&factoryCalls))

	units := planner.Plan(nil)

	byLang := map[string]*BuildFeedTask{}
	for _, unit := range units {
		byLang[unit.Lang] = unit
	}

	if got := byLang["en"].FeedURL; got != "https://example.com/podcast.xml" {
		t.Errorf("Unexpected English feed URL: %s", got)
	}
	if got := byLang["de"].FeedURL; got != "https://example.com/de/podcast.xml" {
		t.Errorf("Unexpected German feed URL: %s", got)
	}
	if got := byLang["en"].OutputPath; got != "out/podcast.xml" {
		t.Errorf("Unexpected English output path: %s", got)
	}
	if got := byLang["de"].OutputPath; got != "out/de/podcast.xml" {
		t.Errorf("Unexpected German output path: %s", got)
	}
}

func TestPlannerUnionsDependencies(t *testing.T) {
	var factoryCalls int
	sink := &recordingSink{}
	planner := NewPlanner(testSite(), testChannels(), "out", sink, testAssemblerFactory(&factoryCalls))

	posts := []content.Post{
		episodeIn("ep-1", "en", []string{"posts/ep-1.md"}, []string{"config:site"}),
		episodeIn("ep-2", "en", []string{"posts/ep-2.md"}, nil),
	}

	units := planner.Plan(posts)

	var enUnit *BuildFeedTask
	for _, unit := range units {
		if unit.Lang == "en" {
			enUnit = unit
		}
	}
	if enUnit == nil {
		t.Fatal("Expected an English unit")
	}

	if len(enUnit.Deps) != 2 || enUnit.Deps[0] != "posts/ep-1.md" || enUnit.Deps[1] != "posts/ep-2.md" {
		t.Errorf("Expected the union of episode deps, got %v", enUnit.Deps)
	}
	if len(enUnit.DepsUptodate) != 1 || enUnit.DepsUptodate[0] != "config:site" {
		t.Errorf("Expected the union of uptodate deps, got %v", enUnit.DepsUptodate)
	}

	if len(sink.declared) != 2 {
		t.Fatalf("Expected 2 declared targets, got %d", len(sink.declared))
	}
	for _, declared := range sink.declared {
		if declared.target == "out/podcast.xml" {
			if len(declared.deps) != 2 {
				t.Errorf("Declared deps should match the unit, got %v", declared.deps)
			}
			return
		}
	}
	t.Error("English target was never declared")
}

func TestPlannerAppliesFeedLength(t *testing.T) {
	siteCfg := testSite()
	siteCfg.Languages = map[string]string{"en": ""}
	siteCfg.FeedLength = 2

	var factoryCalls int
	planner := NewPlanner(siteCfg, testChannels(), "out", nil, testAssemblerFactory(&factoryCalls))

	posts := []content.Post{
		episodeIn("ep-1", "en", nil, nil),
		episodeIn("ep-2", "en", nil, nil),
		episodeIn("ep-3", "en", nil, nil),
	}

	units := planner.Plan(posts)

	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}
	if len(units[0].Episodes) != 2 {
		t.Errorf("Expected the selection truncated to 2 episodes, got %d", len(units[0].Episodes))
	}
	if units[0].Episodes[0].Slug != "ep-1" || units[0].Episodes[1].Slug != "ep-2" {
		t.Errorf("Truncation must keep the first posts, got [%s %s]",
			units[0].Episodes[0].Slug, units[0].Episodes[1].Slug)
	}
}

func TestPlannerSkipsDependenciesOfUnselectedPosts(t *testing.T) {
	siteCfg := testSite()
	siteCfg.Languages = map[string]string{"en": ""}

	var factoryCalls int
	planner := NewPlanner(siteCfg, testChannels(), "out", nil, testAssemblerFactory(&factoryCalls))

	blog := episodeIn("blog-post", "en", []string{"posts/blog-post.md"}, nil)
	blog.Meta["en"][content.MetaCategory] = "blog"

	units := planner.Plan([]content.Post{
		episodeIn("ep-1", "en", []string{"posts/ep-1.md"}, nil),
		blog,
	})

	if len(units[0].Deps) != 1 || units[0].Deps[0] != "posts/ep-1.md" {
		t.Errorf("Only selected episodes contribute dependencies, got %v", units[0].Deps)
	}
}
