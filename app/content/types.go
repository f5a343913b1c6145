package content

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Post is one record from the host content pipeline. It is read-only
// for this system; all per-language data comes from the manifest.
type Post struct {
	Slug      string                       `yaml:"slug"`
	Date      string                       `yaml:"date"`
	Author    string                       `yaml:"author"`
	Meta      map[string]map[string]string `yaml:"meta"`      // language -> metadata key -> value
	Content   map[string]string            `yaml:"content"`   // language -> rendered HTML body
	Permalink map[string]string            `yaml:"permalink"` // language -> site-relative permalink
	Deps      map[string][]string          `yaml:"deps"`      // language -> dependency tokens
	DepsUp    map[string][]string          `yaml:"deps_uptodate"`
}

// Manifest is the ordered post sequence emitted by the host pipeline.
// Order is owned by the pipeline and preserved throughout.
type Manifest struct {
	Posts []Post `yaml:"posts"`
}

const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaCategory    = "category"
	MetaEnclosure   = "enclosure"
	MetaEmail       = "email"
)

func (p *Post) MetaValue(lang, key string) string {
	if m, ok := p.Meta[lang]; ok {
		return m[key]
	}
	return ""
}

func (p *Post) Title(lang string) string {
	return p.MetaValue(lang, MetaTitle)
}

func (p *Post) Description(lang string) string {
	return p.MetaValue(lang, MetaDescription)
}

func (p *Post) Category(lang string) string {
	return p.MetaValue(lang, MetaCategory)
}

func (p *Post) Enclosure(lang string) string {
	return p.MetaValue(lang, MetaEnclosure)
}

// AuthorInfo returns the post author name and the per-language email.
func (p *Post) AuthorInfo(lang string) (string, string) {
	return p.Author, p.MetaValue(lang, MetaEmail)
}

// AbsolutePermalink joins the per-language permalink against the site
// base URL. Returns "" when the post has no permalink for lang.
func (p *Post) AbsolutePermalink(lang, base string) string {
	rel := p.Permalink[lang]
	if rel == "" {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return rel
	}

	ref, err := url.Parse(rel)
	if err != nil {
		return rel
	}

	return baseURL.ResolveReference(ref).String()
}

func (p *Post) DepsFor(lang string) []string {
	return p.Deps[lang]
}

func (p *Post) DepsUptodateFor(lang string) []string {
	return p.DepsUp[lang]
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PublishedAt parses the post date. RFC 3339 timestamps keep their
// zone; naive timestamps are interpreted in loc rather than silently
// treated as UTC.
func (p *Post) PublishedAt(loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(p.Date)
	if raw == "" {
		return time.Time{}, fmt.Errorf("post '%s' has no date", p.Slug)
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("post '%s' has unparseable date '%s'", p.Slug, raw)
}
