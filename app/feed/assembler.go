package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"podfeed/app/content"
	"podfeed/app/enclosure"
	"podfeed/app/site"
)

// maxConcurrentLookups bounds enclosure resolution within one unit.
const maxConcurrentLookups = 4

// Assembler builds feed documents. Episodes with missing required data
// are skipped with a collected warning; degraded enclosure metadata
// never aborts assembly.
type Assembler struct {
	enclosures *enclosure.Service
	opts       content.RenderOptions
	baseURL    string
	location   *time.Location
}

func NewAssembler(enclosures *enclosure.Service, opts content.RenderOptions, baseURL string, location *time.Location) *Assembler {
	return &Assembler{
		enclosures: enclosures,
		opts:       opts,
		baseURL:    baseURL,
		location:   location,
	}
}

// Run assembles the document for one language. The returned warnings
// describe skipped episodes; they do not indicate failure.
func (a *Assembler) Run(ctx context.Context, ch site.Channel, feedURL string, episodes []content.Post) (*Document, []string, error) {
	doc := &Document{
		Channel: ch,
		FeedURL: feedURL,
	}

	var warnings []string
	refs := make([]string, 0, len(episodes))

	for i := range episodes {
		post := &episodes[i]

		entry, ref, err := a.buildEntry(post, ch.Lang)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}

		doc.Entries = append(doc.Entries, entry)
		refs = append(refs, ref)
	}

	a.attachEnclosures(ctx, doc.Entries, refs)

	return doc, warnings, nil
}

func (a *Assembler) buildEntry(post *content.Post, lang string) (Entry, string, error) {
	title := post.Title(lang)
	if title == "" {
		return Entry{}, "", fmt.Errorf("skipping post '%s': no title for language '%s'", post.Slug, lang)
	}

	link := post.AbsolutePermalink(lang, a.baseURL)
	if link == "" {
		return Entry{}, "", fmt.Errorf("skipping post '%s': no permalink for language '%s'", post.Slug, lang)
	}

	published, err := post.PublishedAt(a.location)
	if err != nil {
		return Entry{}, "", fmt.Errorf("skipping post '%s': %v", post.Slug, err)
	}

	body, err := post.Text(lang, a.opts, link)
	if err != nil {
		return Entry{}, "", fmt.Errorf("skipping post '%s': %v", post.Slug, err)
	}

	name, email := post.AuthorInfo(lang)

	entry := Entry{
		Title:       title,
		Content:     body,
		Summary:     post.Description(lang),
		Link:        link,
		Published:   published,
		AuthorName:  name,
		AuthorEmail: email,
	}

	return entry, post.Enclosure(lang), nil
}

// attachEnclosures resolves enclosure metadata with bounded
// concurrency. Results are written back by index so entries keep
// selector order regardless of lookup completion order.
func (a *Assembler) attachEnclosures(ctx context.Context, entries []Entry, refs []string) {
	sem := make(chan struct{}, maxConcurrentLookups)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref == "" {
			continue
		}

		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			md := a.enclosures.Resolve(ctx, ref)
			entries[i].Enclosure = &md
		}(i, ref)
	}

	wg.Wait()
}
