package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podfeed/app/api"
	"podfeed/app/cfg"
	"podfeed/app/content"
	"podfeed/app/enclosure"
	"podfeed/app/feed"
	"podfeed/app/site"
	"podfeed/app/tasks"
)

// depLogger is the default dependency sink when no external build
// scheduler is attached: declared dependencies are only logged.
type depLogger struct{}

func (depLogger) Declare(target string, deps []string, uptodate []string) {
	slog.Debug("Declared build dependencies", "target", target, "deps", len(deps), "uptodate", len(uptodate))
}

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	slog.Info("Starting podfeed build", "version", appCfg.Version)

	siteCfg, err := site.Load(appCfg.SiteFile)
	if err != nil {
		slog.Error("Failed to load site configuration", "error", err)
		os.Exit(1)
	}

	// Resolve every language up front so configuration errors surface
	// before any network call or episode processing.
	channels, err := siteCfg.ResolveChannels()
	if err != nil {
		slog.Error("Channel configuration error", "error", err)
		os.Exit(1)
	}
	slog.Info("Channel configuration resolved", "languages", len(channels))

	posts, err := content.LoadManifest(appCfg.PostsFile)
	if err != nil {
		slog.Error("Failed to load post manifest", "error", err)
		os.Exit(1)
	}
	slog.Info("Post manifest loaded", "posts", len(posts))

	var store enclosure.LookupStore
	if appCfg.LookupCache != "" {
		cache, err := enclosure.OpenLookupCache(appCfg.LookupCache)
		if err != nil {
			slog.Warn("Lookup cache unavailable, continuing without it", "path", appCfg.LookupCache, "error", err)
		} else {
			defer cache.Close()
			store = cache
			slog.Info("Lookup cache opened", "path", appCfg.LookupCache)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{}
	lookupTimeout := time.Duration(appCfg.LookupTimeout) * time.Second

	opts := content.RenderOptions{
		TeaserOnly:       siteCfg.Render.Teasers,
		StripHTML:        siteCfg.Render.Plain,
		ReadMoreLink:     siteCfg.Render.ReadMoreLink,
		LinksAppendQuery: siteCfg.Render.LinksAppendQuery,
	}

	assemblers := func() *feed.Assembler {
		providers := []enclosure.MetadataProvider{
			enclosure.NewArchiveProvider(httpClient, appCfg.UserAgent),
		}
		for _, endpoint := range siteCfg.Podcast.OEmbedEndpoints {
			providers = append(providers, enclosure.NewOEmbedProvider(endpoint, httpClient, appCfg.UserAgent))
		}

		service := enclosure.NewService(httpClient, siteCfg.Podcast.EnclosureBase,
			providers, store, appCfg.UserAgent, lookupTimeout)
		return feed.NewAssembler(service, opts, siteCfg.BaseURL, appCfg.Location)
	}

	planner := tasks.NewPlanner(siteCfg, channels, appCfg.OutputDir, depLogger{}, assemblers)
	units := planner.Plan(posts)
	slog.Info("Build units planned", "units", len(units))

	runner := tasks.NewRunner(ctx, appCfg.WorkerCount)
	runner.Start()

	for _, unit := range units {
		if err := runner.EnqueueTask(unit); err != nil {
			slog.Error("Failed to enqueue build unit", "lang", unit.GetLang(), "error", err)
		}
	}

	failures := runner.Wait()
	runner.Stop()

	if failures > 0 {
		slog.Error("Build finished with failed units", "failed", failures, "total", len(units))
		if !appCfg.Serve {
			os.Exit(1)
		}
	} else {
		slog.Info("Build complete", "feeds", len(units), "output", appCfg.OutputDir)
	}

	if appCfg.Serve {
		servePreview(ctx, appCfg)
	}
}

func servePreview(ctx context.Context, appCfg *cfg.Cfg) {
	handler := api.NewHandler(appCfg.OutputDir, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server started", "port", appCfg.Port, "dir", appCfg.OutputDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down preview server")
	case err := <-serverErrChan:
		slog.Error("Preview server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Preview server shutdown error", "error", err)
	}
}
