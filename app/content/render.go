package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RenderOptions are opaque rendering flags supplied by the site
// configuration. This package forwards them without reinterpreting.
type RenderOptions struct {
	TeaserOnly       bool
	StripHTML        bool
	ReadMoreLink     string // template with a {link} placeholder, appended after a cut teaser
	LinksAppendQuery string // query string appended to the read-more link target
}

// TeaserEnd is the marker the content pipeline leaves in rendered
// bodies to separate the teaser from the rest of the post.
const TeaserEnd = "<!-- TEASER_END -->"

// Text renders the post body for a feed entry. permalink is the
// absolute entry link, used for the read-more link when the teaser is
// cut.
func (p *Post) Text(lang string, opts RenderOptions, permalink string) (string, error) {
	body := p.Content[lang]

	if opts.TeaserOnly {
		if idx := strings.Index(body, TeaserEnd); idx >= 0 {
			body = body[:idx]
			if opts.ReadMoreLink != "" {
				link := permalink
				if opts.LinksAppendQuery != "" {
					link = appendQuery(link, opts.LinksAppendQuery)
				}
				body += strings.ReplaceAll(opts.ReadMoreLink, "{link}", link)
			}
		}
	}

	if opts.StripHTML {
		return stripHTML(body)
	}

	return body, nil
}

func stripHTML(body string) (string, error) {
	if body == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse body: %w", err)
	}

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func appendQuery(link, query string) string {
	if strings.Contains(link, "?") {
		return link + "&" + query
	}
	return link + "?" + query
}
