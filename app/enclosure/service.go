package enclosure

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"
)

// Audio extensions the stdlib table does not guarantee across
// platforms. Registered up front so generated feeds do not depend on
// the host's mime.types files.
var audioTypes = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
}

func init() {
	for ext, typ := range audioTypes {
		mime.AddExtensionType(ext, typ)
	}
}

// FallbackType is used when no MIME type can be inferred from the URL.
// RSS requires a type attribute on every enclosure, so unknown types
// degrade instead of suppressing the element.
const FallbackType = "application/octet-stream"

// LookupStore is an optional persistent cache below the providers.
// Implementations must be safe for concurrent use; build units running
// in parallel share one store.
type LookupStore interface {
	Get(url string) (*Metadata, error)
	Put(md Metadata) error
}

// Service resolves enclosure metadata. Each unique URL is resolved at
// most once per Service instance; create one Service per build unit.
// Lookup failures degrade single fields and are never returned.
type Service struct {
	client    *http.Client
	base      *url.URL
	providers []MetadataProvider
	store     LookupStore
	userAgent string
	timeout   time.Duration

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	md   Metadata
}

func NewService(client *http.Client, baseURL string, providers []MetadataProvider, store LookupStore, userAgent string, timeout time.Duration) *Service {
	base, err := url.Parse(baseURL)
	if err != nil {
		slog.Warn("Invalid enclosure base URL, relative enclosures will not resolve", "base", baseURL, "error", err)
		base = nil
	}

	return &Service{
		client:    client,
		base:      base,
		providers: providers,
		store:     store,
		userAgent: userAgent,
		timeout:   timeout,
		cache:     make(map[string]*cacheEntry),
	}
}

// Resolve returns the metadata for one enclosure reference. Repeated
// and concurrent calls for the same reference share a single lookup.
func (s *Service) Resolve(ctx context.Context, ref string) Metadata {
	s.mu.Lock()
	entry, ok := s.cache[ref]
	if !ok {
		entry = &cacheEntry{}
		s.cache[ref] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.md = s.lookup(ctx, ref)
	})

	return entry.md
}

func (s *Service) lookup(ctx context.Context, ref string) Metadata {
	absolute := s.absoluteURL(ref)

	if s.store != nil {
		cached, err := s.store.Get(absolute)
		if err != nil {
			slog.Warn("Lookup cache read failed", "url", absolute, "error", err)
		} else if cached != nil {
			slog.Debug("Enclosure resolved from lookup cache", "url", absolute)
			return *cached
		}
	}

	md := Metadata{
		URL:      absolute,
		Type:     typeFor(absolute),
		Length:   s.contentLength(ctx, absolute),
		Duration: s.duration(ctx, absolute),
	}

	if s.store != nil {
		if err := s.store.Put(md); err != nil {
			slog.Warn("Lookup cache write failed", "url", absolute, "error", err)
		}
	}

	return md
}

// absoluteURL joins a relative enclosure reference against the remote
// storage base. Already-absolute references pass through unchanged.
func (s *Service) absoluteURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() || s.base == nil {
		return ref
	}
	return s.base.ResolveReference(u).String()
}

func typeFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FallbackType
	}

	if t := mime.TypeByExtension(path.Ext(u.Path)); t != "" {
		return t
	}
	return FallbackType
}

// contentLength issues a HEAD request and reads the content-length
// header, following redirects. Any failure degrades to 0.
func (s *Service) contentLength(ctx context.Context, rawURL string) int64 {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "HEAD", rawURL, nil)
	if err != nil {
		slog.Warn("Failed to create size request", "url", rawURL, "error", err)
		return 0
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("Enclosure size lookup failed", "url", rawURL, "error", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("Enclosure size lookup returned non-success status", "url", rawURL, "status", resp.StatusCode)
		return 0
	}

	if resp.ContentLength >= 0 {
		return resp.ContentLength
	}

	if v := resp.Header.Get("Content-Length"); v != "" {
		if length, err := strconv.ParseInt(v, 10, 64); err == nil && length >= 0 {
			return length
		}
	}

	slog.Debug("Enclosure response carried no content-length", "url", rawURL)
	return 0
}

// duration tries each provider in order until one returns data. No
// provider data means an unknown duration, not an error.
func (s *Service) duration(ctx context.Context, rawURL string) string {
	for _, provider := range s.providers {
		timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
		duration, err := provider.Lookup(timeoutCtx, rawURL)
		cancel()

		if err != nil {
			slog.Warn("Metadata provider lookup failed", "provider", provider.Name(), "url", rawURL, "error", err)
			continue
		}
		if duration != "" {
			return duration
		}
	}

	return ""
}
