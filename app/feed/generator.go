package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"podfeed/app/cfg"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run serializes the document. Output is deterministic for a given
// document: fixed element order, no wall-clock timestamps.
func (g *Generator) Run(doc *Document) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">`)
	buf.WriteString("\n  <channel>\n")

	ch := doc.Channel

	g.writeElement(&buf, "title", ch.Title, 4)
	g.writeElement(&buf, "link", ch.Link, 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(doc.FeedURL)))
	g.writeElement(&buf, "description", ch.Description, 4)
	g.writeElement(&buf, "managingEditor", formatAuthor(ch.AuthorName, ch.AuthorEmail), 4)
	g.writeElement(&buf, "language", ch.Lang, 4)

	if len(ch.Category) > 0 {
		g.writeElement(&buf, "category", joinCategory(ch.Category), 4)
		g.writeItunesCategory(&buf, ch.Category)
	}

	if ch.Logo != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", ch.Logo, 6)
		g.writeElement(&buf, "title", ch.Title, 6)
		g.writeElement(&buf, "link", ch.Link, 6)
		buf.WriteString("    </image>\n")
		buf.WriteString(fmt.Sprintf("    <itunes:image href=\"%s\" />\n", html.EscapeString(ch.Logo)))
	}

	g.writeElement(&buf, "generator", fmt.Sprintf("podfeed/%s", cfg.Get().Version), 4)

	if newest := newestPublished(doc.Entries); !newest.IsZero() {
		g.writeElement(&buf, "lastBuildDate", newest.Format(time.RFC1123Z), 4)
	}

	for i := range doc.Entries {
		g.writeEntry(&buf, &doc.Entries[i])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeEntry(buf *bytes.Buffer, entry *Entry) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", entry.Title, 6)

	if entry.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(entry.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "description", entry.Summary, 6)
	g.writeElement(buf, "link", entry.Link, 6)

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(entry.Link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", entry.Published.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", formatAuthor(entry.AuthorName, entry.AuthorEmail), 6)

	if entry.Enclosure != nil {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(entry.Enclosure.URL),
			entry.Enclosure.Length,
			html.EscapeString(entry.Enclosure.Type)))

		if entry.Enclosure.Duration != "" {
			g.writeElement(buf, "itunes:duration", entry.Enclosure.Duration, 6)
		}
	}

	buf.WriteString("    </item>\n")
}

// writeItunesCategory emits the category path as nested itunes
// categories. The extension supports two levels; deeper paths are
// truncated.
func (g *Generator) writeItunesCategory(buf *bytes.Buffer, path []string) {
	if len(path) == 1 {
		buf.WriteString(fmt.Sprintf("    <itunes:category text=\"%s\" />\n", html.EscapeString(path[0])))
		return
	}

	buf.WriteString(fmt.Sprintf("    <itunes:category text=\"%s\">\n", html.EscapeString(path[0])))
	buf.WriteString(fmt.Sprintf("      <itunes:category text=\"%s\" />\n", html.EscapeString(path[1])))
	buf.WriteString("    </itunes:category>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func joinCategory(path []string) string {
	joined := path[0]
	for _, p := range path[1:] {
		joined += "/" + p
	}
	return joined
}

func formatAuthor(name, email string) string {
	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	}
	return email
}

func newestPublished(entries []Entry) time.Time {
	var newest time.Time
	for i := range entries {
		if entries[i].Published.After(newest) {
			newest = entries[i].Published
		}
	}
	return newest
}
