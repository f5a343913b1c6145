package feed

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"podfeed/app/cfg"
	"podfeed/app/enclosure"
	"podfeed/app/site"
)

func setupTestConfig(t *testing.T) {
	t.Helper()

	originalArgs := os.Args
	os.Args = []string{"podfeed-test"}
	t.Cleanup(func() { os.Args = originalArgs })

	if _, err := cfg.Load(); err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}
}

func testDocument() *Document {
	published := time.Date(2023, 7, 1, 10, 0, 0, 0, time.UTC)

	return &Document{
		Channel: site.Channel{
			Lang:        "en",
			Title:       "Test Podcast",
			Link:        "https://example.com/",
			Description: "A test podcast",
			AuthorName:  "Jane Doe",
			AuthorEmail: "jane@example.com",
			Category:    []string{"Technology", "Podcasting"},
			Logo:        "https://example.com/logo.png",
		},
		FeedURL: "https://example.com/podcast.xml",
		Entries: []Entry{
			{
				Title:       "Episode 1",
				Content:     "<p>Full episode <b>body</b></p>",
				Summary:     "The first episode",
				Link:        "https://example.com/posts/episode-1/",
				Published:   published,
				AuthorName:  "Jane Doe",
				AuthorEmail: "jane@example.com",
				Enclosure: &enclosure.Metadata{
					URL:      "https://archive.org/download/show/episode1.mp3",
					Length:   24576000,
					Type:     "audio/mpeg",
					Duration: "1803",
				},
			},
			{
				Title:     "Episode 2",
				Summary:   "The second episode",
				Link:      "https://example.com/posts/episode-2/",
				Published: published.Add(-24 * time.Hour),
			},
		},
	}
}

func TestGeneratorChannelElements(t *testing.T) {
	setupTestConfig(t)

	output, err := NewGenerator().Run(testDocument())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"`,
		"<title>Test Podcast</title>",
		"<link>https://example.com/</link>",
		`<atom:link href="https://example.com/podcast.xml" rel="self" type="application/rss+xml" />`,
		"<description>A test podcast</description>",
		"<managingEditor>jane@example.com (Jane Doe)</managingEditor>",
		"<language>en</language>",
		"<category>Technology/Podcasting</category>",
		`<itunes:category text="Technology">`,
		`<itunes:category text="Podcasting" />`,
		"<url>https://example.com/logo.png</url>",
		`<itunes:image href="https://example.com/logo.png" />`,
		"<lastBuildDate>Sat, 01 Jul 2023 10:00:00 +0000</lastBuildDate>",
	}
	for _, fragment := range expected {
		if !strings.Contains(output, fragment) {
			t.Errorf("Output should contain '%s'", fragment)
		}
	}

	if !strings.Contains(output, "<generator>podfeed/") {
		t.Error("Output should contain the generator element")
	}
}

func TestGeneratorEntryElements(t *testing.T) {
	setupTestConfig(t)

	output, err := NewGenerator().Run(testDocument())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		"<title>Episode 1</title>",
		"<content:encoded><![CDATA[<p>Full episode <b>body</b></p>]]></content:encoded>",
		"<description>The first episode</description>",
		`<guid isPermaLink="true">https://example.com/posts/episode-1/</guid>`,
		"<pubDate>Sat, 01 Jul 2023 10:00:00 +0000</pubDate>",
		"<author>jane@example.com (Jane Doe)</author>",
		`<enclosure url="https://archive.org/download/show/episode1.mp3" length="24576000" type="audio/mpeg" />`,
		"<itunes:duration>1803</itunes:duration>",
	}
	for _, fragment := range expected {
		if !strings.Contains(output, fragment) {
			t.Errorf("Output should contain '%s'", fragment)
		}
	}

	if strings.Count(output, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(output, "<item>"))
	}
}

func TestGeneratorOmitsEmptyElements(t *testing.T) {
	setupTestConfig(t)

	doc := testDocument()
	doc.Channel.Category = nil
	doc.Channel.Logo = ""
	doc.Entries = doc.Entries[1:]

	output, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	absent := []string{
		"<category>",
		"<itunes:category",
		"<image>",
		"<itunes:image",
		"<content:encoded>",
		"<enclosure",
		"<itunes:duration>",
	}
	for _, fragment := range absent {
		if strings.Contains(output, fragment) {
			t.Errorf("Output should not contain '%s'", fragment)
		}
	}
}

func TestGeneratorEmptyFeedOmitsLastBuildDate(t *testing.T) {
	setupTestConfig(t)

	doc := testDocument()
	doc.Entries = nil

	output, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(output, "<lastBuildDate>") {
		t.Error("Empty feeds should carry no lastBuildDate")
	}
	if strings.Contains(output, "<item>") {
		t.Error("Empty feeds should carry no items")
	}
	if !strings.Contains(output, "<title>Test Podcast</title>") {
		t.Error("Channel metadata should survive an empty feed")
	}
}

func TestGeneratorDegradedEnclosureStillEmitted(t *testing.T) {
	setupTestConfig(t)

	doc := testDocument()
	doc.Entries = doc.Entries[:1]
	doc.Entries[0].Enclosure = &enclosure.Metadata{
		URL:    "https://example.com/ep.bin",
		Length: 0,
		Type:   enclosure.FallbackType,
	}

	output, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := `<enclosure url="https://example.com/ep.bin" length="0" type="application/octet-stream" />`
	if !strings.Contains(output, expected) {
		t.Errorf("Output should contain the degraded enclosure '%s'", expected)
	}
	if strings.Contains(output, "<itunes:duration>") {
		t.Error("Unknown durations should be omitted")
	}
}

func TestGeneratorEscapesSpecialCharacters(t *testing.T) {
	setupTestConfig(t)

	doc := testDocument()
	doc.Channel.Title = "News & <Reviews>"
	doc.Entries = doc.Entries[:1]
	doc.Entries[0].Title = `Episode "One" & Friends`

	output, err := NewGenerator().Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(output, "<title>News &amp; &lt;Reviews&gt;</title>") {
		t.Error("Channel title should be XML-escaped")
	}
	if strings.Contains(output, "<title>News & <Reviews></title>") {
		t.Error("Raw special characters leaked into the output")
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	setupTestConfig(t)

	generator := NewGenerator()
	doc := testDocument()

	first, err := generator.Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	second, err := generator.Run(doc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if first != second {
		t.Error("Repeated runs over the same document must produce identical output")
	}
}

func TestGeneratorOutputParses(t *testing.T) {
	setupTestConfig(t)

	output, err := NewGenerator().Run(testDocument())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(output)
	if err != nil {
		t.Fatalf("Generated feed failed to parse: %v", err)
	}

	if parsed.Title != "Test Podcast" {
		t.Errorf("Expected channel title 'Test Podcast', got '%s'", parsed.Title)
	}
	if parsed.Link != "https://example.com/" {
		t.Errorf("Expected channel link 'https://example.com/', got '%s'", parsed.Link)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Items))
	}

	item := parsed.Items[0]
	if item.Title != "Episode 1" {
		t.Errorf("Expected item title 'Episode 1', got '%s'", item.Title)
	}
	if item.GUID != "https://example.com/posts/episode-1/" {
		t.Errorf("Unexpected item GUID: %s", item.GUID)
	}
	if len(item.Enclosures) != 1 {
		t.Fatalf("Expected 1 enclosure, got %d", len(item.Enclosures))
	}

	enc := item.Enclosures[0]
	if enc.URL != "https://archive.org/download/show/episode1.mp3" {
		t.Errorf("Unexpected enclosure URL: %s", enc.URL)
	}
	if enc.Length != "24576000" || enc.Type != "audio/mpeg" {
		t.Errorf("Unexpected enclosure attributes: length=%s type=%s", enc.Length, enc.Type)
	}
}
