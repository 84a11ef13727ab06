package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

// Store manages analysis persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Analysis is one stored fusion result.
type Analysis struct {
	ID         string
	AudioPath  string
	CreatedAt  time.Time
	Transcript *transcript.SpeakerTranscript
}

// Summary is the listing view of an analysis.
type Summary struct {
	ID        string    `json:"id"`
	AudioPath string    `json:"audio_path"`
	Language  string    `json:"language"`
	Speakers  int       `json:"speakers"`
	Segments  int       `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
}

// Open initializes or connects to the analysis database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAnalysis persists a fused transcript and returns its new id.
func (s *Store) SaveAnalysis(ctx context.Context, audioPath string, st *transcript.SpeakerTranscript) (string, error) {
	speakers, err := json.Marshal(st.Speakers)
	if err != nil {
		return "", fmt.Errorf("encode speakers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO analyses (id, audio_path, language, full_text, speakers, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, audioPath, st.Language, st.FullText, string(speakers), now,
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO annotated_segments (analysis_id, pos, start_sec, end_sec, speaker, text)
         VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for pos, seg := range st.Segments {
		if _, err := stmt.ExecContext(ctx, id, pos, seg.Span.Start, seg.Span.End, seg.Speaker, seg.Text); err != nil {
			return "", fmt.Errorf("insert segment %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return id, nil
}

// GetAnalysis loads one stored analysis and rebuilds its transcript,
// including the per-speaker partition.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT audio_path, language, full_text, speakers, created_at FROM analyses WHERE id = ?`,
		id,
	)

	var audioPath, lang, fullText, speakersJSON, createdAt string
	if err := row.Scan(&audioPath, &lang, &fullText, &speakersJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, faults.Wrap(faults.ErrNotFound, "store", "get", fmt.Sprintf("analysis %q", id), nil)
		}
		return nil, fmt.Errorf("load analysis: %w", err)
	}

	var speakers []string
	if err := json.Unmarshal([]byte(speakersJSON), &speakers); err != nil {
		return nil, fmt.Errorf("decode speakers: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT start_sec, end_sec, speaker, text FROM annotated_segments WHERE analysis_id = ? ORDER BY pos`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}
	defer rows.Close()

	st := &transcript.SpeakerTranscript{
		FullText:  fullText,
		Language:  lang,
		Speakers:  speakers,
		BySpeaker: make(map[string][]transcript.AnnotatedSegment),
	}
	for rows.Next() {
		var seg transcript.AnnotatedSegment
		if err := rows.Scan(&seg.Span.Start, &seg.Span.End, &seg.Speaker, &seg.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		st.Segments = append(st.Segments, seg)
		st.BySpeaker[seg.Speaker] = append(st.BySpeaker[seg.Speaker], seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &Analysis{ID: id, AudioPath: audioPath, CreatedAt: created, Transcript: st}, nil
}

// ListAnalyses returns stored analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT a.id, a.audio_path, a.language, a.speakers, a.created_at,
                (SELECT COUNT(*) FROM annotated_segments seg WHERE seg.analysis_id = a.id)
         FROM analyses a
         ORDER BY a.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var speakersJSON, createdAt string
		if err := rows.Scan(&s.ID, &s.AudioPath, &s.Language, &speakersJSON, &createdAt, &s.Segments); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		var speakers []string
		if err := json.Unmarshal([]byte(speakersJSON), &speakers); err != nil {
			return nil, fmt.Errorf("decode speakers: %w", err)
		}
		s.Speakers = len(speakers)
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
