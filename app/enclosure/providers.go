package enclosure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MetadataProvider resolves richer metadata (duration) for an
// enclosure URL. Providers are tried in a fixed order; the first
// non-empty result wins. Returning ("", nil) means the provider has no
// data for this URL.
type MetadataProvider interface {
	Name() string
	Lookup(ctx context.Context, rawURL string) (string, error)
}

// ArchiveProvider resolves durations through the archive.org metadata
// API for enclosures hosted under archive.org/download/.
type ArchiveProvider struct {
	client       *http.Client
	userAgent    string
	metadataBase string
}

func NewArchiveProvider(client *http.Client, userAgent string) *ArchiveProvider {
	return &ArchiveProvider{
		client:       client,
		userAgent:    userAgent,
		metadataBase: "https://archive.org/metadata/",
	}
}

func (p *ArchiveProvider) Name() string {
	return "archive.org"
}

func (p *ArchiveProvider) Lookup(ctx context.Context, rawURL string) (string, error) {
	identifier, name, ok := parseArchiveURL(rawURL)
	if !ok {
		return "", nil
	}

	body, err := fetchJSON(ctx, p.client, p.userAgent, p.metadataBase+identifier)
	if err != nil {
		return "", err
	}

	var meta struct {
		Files []struct {
			Name   string `json:"name"`
			Length string `json:"length"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("failed to parse metadata response: %w", err)
	}

	for _, f := range meta.Files {
		if f.Name == name {
			return f.Length, nil
		}
	}

	return "", nil
}

// parseArchiveURL splits an archive.org download URL into item
// identifier and file name.
func parseArchiveURL(rawURL string) (string, string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}
	if u.Host != "archive.org" && !strings.HasSuffix(u.Host, ".archive.org") {
		return "", "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 || segments[0] != "download" {
		return "", "", false
	}

	return segments[1], strings.Join(segments[2:], "/"), true
}

// OEmbedProvider queries a single oEmbed endpoint for a duration
// field. Endpoints that do not know the URL answer without a duration,
// which is treated as no data.
type OEmbedProvider struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

func NewOEmbedProvider(endpoint string, client *http.Client, userAgent string) *OEmbedProvider {
	return &OEmbedProvider{endpoint: endpoint, client: client, userAgent: userAgent}
}

func (p *OEmbedProvider) Name() string {
	return "oembed"
}

func (p *OEmbedProvider) Lookup(ctx context.Context, rawURL string) (string, error) {
	query := url.Values{}
	query.Set("url", rawURL)
	query.Set("format", "json")

	body, err := fetchJSON(ctx, p.client, p.userAgent, p.endpoint+"?"+query.Encode())
	if err != nil {
		return "", err
	}

	var resp struct {
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse oEmbed response: %w", err)
	}

	if resp.Duration <= 0 {
		return "", nil
	}

	return strconv.FormatInt(int64(resp.Duration), 10), nil
}

func fetchJSON(ctx context.Context, client *http.Client, userAgent, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
