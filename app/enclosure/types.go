package enclosure

// Metadata describes one resolved enclosure. Length and Duration
// degrade to their zero values when lookups fail; Type degrades to
// application/octet-stream. A degraded Metadata is still emitted.
type Metadata struct {
	URL      string
	Length   int64
	Type     string
	Duration string // seconds or HH:MM:SS, "" when unknown
}
