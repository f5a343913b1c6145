package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads the post manifest written by the host content
// pipeline. Post order in the file is preserved.
func LoadManifest(path string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range manifest.Posts {
		if manifest.Posts[i].Slug == "" {
			return nil, fmt.Errorf("post at index %d has no slug", i)
		}
	}

	return manifest.Posts, nil
}
