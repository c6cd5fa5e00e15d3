package export

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// UpsertRecord inserts or updates a zettel record keyed by path.
func (db *DB) UpsertRecord(ctx context.Context, r *ZettelRecord) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO zettels (
			path, title, note_type, metadata, reference, sections, content_hash
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (path) DO UPDATE SET
			title = EXCLUDED.title,
			note_type = EXCLUDED.note_type,
			metadata = EXCLUDED.metadata,
			reference = EXCLUDED.reference,
			sections = EXCLUDED.sections,
			content_hash = EXCLUDED.content_hash,
			synced_at = NOW()
	`,
		r.Path, r.Title, r.NoteType, r.Metadata, r.Reference, r.Sections, r.ContentHash,
	)
	return err
}

// DeleteRecord removes the record at path.
func (db *DB) DeleteRecord(ctx context.Context, path string) error {
	_, err := db.Pool.Exec(ctx, "DELETE FROM zettels WHERE path = $1", path)
	return err
}

// BatchDeleteRecords removes every record whose path is in paths.
func (db *DB) BatchDeleteRecords(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := db.Pool.Exec(ctx, "DELETE FROM zettels WHERE path = ANY($1)", paths)
	return err
}

// GetAllHashes returns path -> content_hash for every exported record.
func (db *DB) GetAllHashes(ctx context.Context) (map[string]string, error) {
	rows, err := db.Pool.Query(ctx, "SELECT path, content_hash FROM zettels")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		hashes[path] = hash
	}
	return hashes, rows.Err()
}

// GetRecordByPath retrieves a single record, or nil if it doesn't exist.
func (db *DB) GetRecordByPath(ctx context.Context, path string) (*ZettelRecord, error) {
	r := &ZettelRecord{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, path, title, note_type, metadata, reference, sections, content_hash, synced_at
		FROM zettels WHERE path = $1
	`, path).Scan(
		&r.ID, &r.Path, &r.Title, &r.NoteType, &r.Metadata, &r.Reference, &r.Sections,
		&r.ContentHash, &r.SyncedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
