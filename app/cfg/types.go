package cfg

import "time"

type Cfg struct {
	// Input/output paths
	SiteFile  string
	PostsFile string
	OutputDir string

	// Build configuration
	WorkerCount   int
	LookupTimeout int
	LookupCache   string

	// Preview server
	Serve bool
	Port  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string

	// Location resolved from Timezone, UTC when resolution fails
	Location *time.Location
}
