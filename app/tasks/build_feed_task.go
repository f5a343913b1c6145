package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"podfeed/app/content"
	"podfeed/app/feed"
	"podfeed/app/site"
)

// BuildFeedTask is one build unit: the feed for a single language. It
// owns its enclosure service instance, so per-URL memoization never
// crosses unit boundaries.
type BuildFeedTask struct {
	Task
	Channel      site.Channel
	Episodes     []content.Post
	FeedURL      string
	OutputPath   string
	Deps         []string
	DepsUptodate []string

	assembler *feed.Assembler
	generator *feed.Generator
}

func NewBuildFeedTask(ch site.Channel, episodes []content.Post, feedURL, outputPath string,
	deps, uptodate []string, assembler *feed.Assembler) *BuildFeedTask {
	return &BuildFeedTask{
		Task:         NewTask(ch.Lang),
		Channel:      ch,
		Episodes:     episodes,
		FeedURL:      feedURL,
		OutputPath:   outputPath,
		Deps:         deps,
		DepsUptodate: uptodate,
		assembler:    assembler,
		generator:    feed.NewGenerator(),
	}
}

func (t *BuildFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	doc, warnings, err := t.assembler.Run(ctx, t.Channel, t.FeedURL, t.Episodes)
	if err != nil {
		return fmt.Errorf("failed to assemble feed: %w", err)
	}

	for _, warning := range warnings {
		slog.Warn("Episode skipped", "lang", t.Lang, "reason", warning)
	}

	document, err := t.generator.Run(doc)
	if err != nil {
		return fmt.Errorf("failed to generate feed: %w", err)
	}

	if err := t.writeAtomic(ctx, document); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	slog.Info("Task completed",
		"lang", t.Lang,
		"duration", t.GetDuration(),
		"entries", len(doc.Entries),
		"skipped", len(warnings),
		"output", t.OutputPath)

	return nil
}

// writeAtomic writes to a temp file in the target directory and
// renames on success, so a cancelled or failed unit never leaves a
// partial document at the declared output path.
func (t *BuildFeedTask) writeAtomic(ctx context.Context, document string) error {
	dir := filepath.Dir(t.OutputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".podcast-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.WriteString(document); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	select {
	case <-ctx.Done():
		os.Remove(tmpName)
		return ctx.Err()
	default:
	}

	if err := os.Rename(tmpName, t.OutputPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit output: %w", err)
	}

	return nil
}
