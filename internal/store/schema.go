package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
        id         TEXT PRIMARY KEY,
        audio_path TEXT NOT NULL,
        language   TEXT NOT NULL,
        full_text  TEXT NOT NULL,
        speakers   TEXT NOT NULL,
        created_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS annotated_segments (
        analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
        pos         INTEGER NOT NULL,
        start_sec   REAL NOT NULL,
        end_sec     REAL NOT NULL,
        speaker     TEXT NOT NULL,
        text        TEXT NOT NULL,
        PRIMARY KEY (analysis_id, pos)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_segments_speaker
        ON annotated_segments(analysis_id, speaker)`,
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
