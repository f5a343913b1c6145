package site

import "gopkg.in/yaml.v3"

// Translatable is a setting that may carry one value for all languages
// (YAML scalar) or a per-language map. The scalar form is stored under
// the empty key and acts as the fallback for every language.
type Translatable struct {
	values map[string]string
}

func (t *Translatable) UnmarshalYAML(node *yaml.Node) error {
	t.values = make(map[string]string)

	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		t.values[""] = s
		return nil
	}

	return node.Decode(&t.values)
}

// Get returns the value for lang, falling back to the scalar form.
// Returns "" when neither is set.
func (t Translatable) Get(lang string) string {
	if v, ok := t.values[lang]; ok && v != "" {
		return v
	}
	return t.values[""]
}

func (t Translatable) IsZero() bool {
	for _, v := range t.values {
		if v != "" {
			return false
		}
	}
	return true
}

// TranslatableList is the list-valued counterpart of Translatable,
// used for the podcast category path.
type TranslatableList struct {
	values map[string][]string
}

func (t *TranslatableList) UnmarshalYAML(node *yaml.Node) error {
	t.values = make(map[string][]string)

	if node.Kind == yaml.SequenceNode {
		var s []string
		if err := node.Decode(&s); err != nil {
			return err
		}
		t.values[""] = s
		return nil
	}

	return node.Decode(&t.values)
}

func (t TranslatableList) Get(lang string) []string {
	if v, ok := t.values[lang]; ok && len(v) > 0 {
		return v
	}
	return t.values[""]
}

// Author is a name/email pair. An override is taken wholly or not at
// all, never merged field-by-field with the site defaults.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (a Author) IsZero() bool {
	return a.Name == "" && a.Email == ""
}

// PodcastConfig holds the podcast channel overrides. Every field is
// optional; unset fields fall back to the site-wide blog settings.
type PodcastConfig struct {
	Path         string `yaml:"path"`
	PostCategory string `yaml:"post_category"`
	// EnclosureBase is the remote object-storage base URL that relative
	// enclosure references are joined against.
	EnclosureBase   string           `yaml:"enclosure_base"`
	OEmbedEndpoints []string         `yaml:"oembed_endpoints"`
	Title           Translatable     `yaml:"title"`
	Link            string           `yaml:"link"`
	Description     Translatable     `yaml:"description"`
	Author          Author           `yaml:"author"`
	Category        TranslatableList `yaml:"category"`
	Logo            string           `yaml:"logo"`
}

// RenderFlags are forwarded opaquely to the body renderer.
type RenderFlags struct {
	Teasers          bool   `yaml:"teasers"`
	Plain            bool   `yaml:"plain"`
	ReadMoreLink     string `yaml:"read_more_link"`
	LinksAppendQuery string `yaml:"links_append_query"`
}

// Site is the site-wide configuration provided by the host pipeline.
type Site struct {
	BaseURL     string            `yaml:"base_url"`
	Languages   map[string]string `yaml:"languages"` // language tag -> output path prefix
	Title       Translatable      `yaml:"title"`
	Description Translatable      `yaml:"description"`
	Author      string            `yaml:"author"`
	Email       string            `yaml:"email"`
	Logo        string            `yaml:"logo"`
	FeedLength  int               `yaml:"feed_length"`
	Render      RenderFlags       `yaml:"render"`
	Podcast     PodcastConfig     `yaml:"podcast"`
}

// Channel is the fully resolved per-language channel configuration.
// Title, Link and Description are guaranteed non-empty; Category and
// Logo may be legitimately absent.
type Channel struct {
	Lang        string
	Title       string
	Link        string
	Description string
	AuthorName  string
	AuthorEmail string
	Category    []string
	Logo        string
}
