package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/vonshlovens/zettelkasten/internal/config"
	"github.com/vonshlovens/zettelkasten/internal/scanner"
	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

// Engine pushes processed notes into the Postgres sink.
type Engine struct {
	db     *DB
	config *config.Config
}

// NewEngine wires an export Engine to an already-connected database.
func NewEngine(database *DB, cfg *config.Config) *Engine {
	return &Engine{db: database, config: cfg}
}

// ExportNote upserts a single processed note.
func (e *Engine) ExportNote(ctx context.Context, note *zettel.Note) error {
	record, err := RecordFromNote(note)
	if err != nil {
		return fmt.Errorf("failed to build record for %s: %w", note.FilePath, err)
	}
	return e.db.UpsertRecord(ctx, record)
}

// FullExport loads every note under the configured corpus, upserts
// whichever have a changed content hash, and deletes sink rows for paths
// no longer present locally. It mirrors the teacher's full-reconcile
// shape: walk everything, hash-diff against what the sink already has,
// then touch only what changed.
func (e *Engine) FullExport(ctx context.Context) error {
	slog.Info("starting full export")
	start := time.Now()

	notes, err := scanner.LoadAll(ctx, e.config.CorpusPath, e.config.Extensions)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	sinkHashes, err := e.db.GetAllHashes(ctx)
	if err != nil {
		return fmt.Errorf("failed to get existing hashes: %w", err)
	}

	records := make([]*ZettelRecord, 0, len(notes))
	localPaths := make(map[string]bool, len(notes))
	var toExport []*ZettelRecord

	for _, note := range notes {
		record, err := RecordFromNote(note)
		if err != nil {
			slog.Warn("failed to build record, skipping", "path", note.FilePath, "error", err)
			continue
		}
		records = append(records, record)
		localPaths[record.Path] = true

		if existingHash, ok := sinkHashes[record.Path]; !ok || existingHash != record.ContentHash {
			toExport = append(toExport, record)
		}
	}

	var toDelete []string
	for path := range sinkHashes {
		if !localPaths[path] {
			toDelete = append(toDelete, path)
		}
	}

	if len(toExport) > 0 {
		bar := progressbar.NewOptions(len(toExport),
			progressbar.OptionSetDescription("Exporting notes"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
		for _, record := range toExport {
			if err := e.db.UpsertRecord(ctx, record); err != nil {
				slog.Error("failed to export record", "path", record.Path, "error", err)
			}
			bar.Add(1)
		}
		bar.Finish()
	}

	if len(toDelete) > 0 {
		if err := e.db.BatchDeleteRecords(ctx, toDelete); err != nil {
			slog.Error("failed to batch delete records", "error", err)
		}
		slog.Info("deleted removed records", "count", len(toDelete))
	}

	slog.Info("full export completed",
		"total", len(records),
		"exported", len(toExport),
		"deleted", len(toDelete),
		"duration_s", time.Since(start).Seconds())

	return nil
}
