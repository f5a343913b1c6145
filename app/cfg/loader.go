package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Input/output paths
	SiteFile  string `long:"site-file" env:"SITE_FILE" default:"site.yml" description:"Site configuration file"`
	PostsFile string `long:"posts-file" env:"POSTS_FILE" default:"posts.yml" description:"Post manifest produced by the content pipeline"`
	OutputDir string `long:"output-dir" env:"OUTPUT_DIR" default:"output" description:"Root directory for generated feeds"`

	// Build configuration
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent feed build workers"`
	LookupTimeout int    `long:"lookup-timeout" env:"LOOKUP_TIMEOUT" default:"10" description:"Timeout in seconds for enclosure metadata lookups"`
	LookupCache   string `long:"lookup-cache" env:"LOOKUP_CACHE" description:"Path to sqlite file for caching enclosure lookups (disabled if empty)"`

	// Preview server
	Serve bool   `long:"serve" env:"SERVE" description:"Serve the output directory over HTTP after building"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"Preview server port"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"podfeed/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Default timezone for post timestamps without zone information"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SiteFile:      raw.SiteFile,
		PostsFile:     raw.PostsFile,
		OutputDir:     raw.OutputDir,
		WorkerCount:   raw.WorkerCount,
		LookupTimeout: raw.LookupTimeout,
		LookupCache:   raw.LookupCache,
		Serve:         raw.Serve,
		Port:          raw.Port,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', falling back to UTC: %v\n", cfg.Timezone, err)
		loc = time.UTC
	}
	cfg.Location = loc

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
