package export

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

// ZettelRecord is the row shape exported to Postgres: one processed note's
// metadata, reference (back matter), and sections, plus the bookkeeping
// needed to detect whether a file needs re-export.
type ZettelRecord struct {
	ID          uuid.UUID `db:"id"`
	Path        string    `db:"path"`
	Title       *string   `db:"title"`
	NoteType    *string   `db:"note_type"`
	Metadata    []byte    `db:"metadata"` // jsonb
	Reference   []byte    `db:"reference"`
	Sections    []byte    `db:"sections"`
	ContentHash string    `db:"content_hash"`
	SyncedAt    time.Time `db:"synced_at"`
}

// RecordFromNote builds a ZettelRecord ready for upsert from a fully
// processed note. The content hash is taken over the note's own rendered
// metadata/reference/sections rather than the source file's raw bytes, so
// that two files differing only in, say, trailing whitespace the pipeline
// normalizes away are not re-exported as changed.
func RecordFromNote(note *zettel.Note) (*ZettelRecord, error) {
	metadataJSON, err := json.Marshal(note.Metadata)
	if err != nil {
		return nil, err
	}
	referenceJSON, err := json.Marshal(note.Reference)
	if err != nil {
		return nil, err
	}
	sectionsJSON, err := json.Marshal(note.Sections)
	if err != nil {
		return nil, err
	}

	combined := make([]byte, 0, len(metadataJSON)+len(referenceJSON)+len(sectionsJSON))
	combined = append(combined, metadataJSON...)
	combined = append(combined, referenceJSON...)
	combined = append(combined, sectionsJSON...)

	record := &ZettelRecord{
		Path:        note.FilePath,
		Metadata:    metadataJSON,
		Reference:   referenceJSON,
		Sections:    sectionsJSON,
		ContentHash: HashContent(combined),
	}

	if v, ok := note.Metadata.Get("title"); ok {
		if s, isStr := v.AsString(); isStr {
			record.Title = &s
		}
	}
	if v, ok := note.Metadata.Get("type"); ok {
		if s, isStr := v.AsString(); isStr {
			record.NoteType = &s
		}
	}

	return record, nil
}
