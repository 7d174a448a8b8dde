package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/papers-extractor/constants"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// ExtractionRecord is one processed document as kept by the local store.
type ExtractionRecord struct {
	ID        uuid.UUID
	Source    string
	Status    constants.JobStatus
	Error     string
	Result    *entity.Result // nil for failed documents
	CreatedAt time.Time
}

// LocalStore keeps batch results in a SQLite file.
type LocalStore struct {
	db  *sql.DB
	log *slog.Logger
}

// sortable fixed-width UTC timestamp
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z"

const createExtractions = `
CREATE TABLE IF NOT EXISTS extractions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	result_json TEXT,
	created_at  TEXT NOT NULL
)`

// OpenLocalStore opens (or creates) the SQLite store. Use ":memory:" for an ephemeral store.
func OpenLocalStore(ctx context.Context, path string, log *slog.Logger) (*LocalStore, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createExtractions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create extractions table: %v", common.ErrDatabase, err)
	}
	log.Info("local store opened", "path", path)
	return &LocalStore{db: db, log: log}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Save records a finished document. A nil result marks it as failed with runErr.
func (s *LocalStore) Save(ctx context.Context, source string, res *entity.Result, runErr error) (ExtractionRecord, error) {
	rec := ExtractionRecord{
		ID:        uuid.New(),
		Source:    source,
		Status:    constants.JobStatusFailed,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
	var payload sql.NullString
	if res != nil {
		if res.RunID != uuid.Nil {
			rec.ID = res.RunID
		}
		rec.Status = constants.JobStatusIncomplete
		if res.Complete {
			rec.Status = constants.JobStatusComplete
		}
		b, err := json.Marshal(res)
		if err != nil {
			return ExtractionRecord{}, common.WrapError(err, "encode result")
		}
		payload = sql.NullString{String: string(b), Valid: true}
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO extractions (id, source, status, error, result_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Source, string(rec.Status), rec.Error, payload, rec.CreatedAt.Format(storeTimeLayout),
	)
	if err != nil {
		s.log.Error("extraction save failed", "source", source, "err", err)
		return ExtractionRecord{}, fmt.Errorf("%w: save extraction: %v", common.ErrDatabase, err)
	}
	s.log.Info("extraction saved", "id", rec.ID, "source", source, "status", rec.Status)
	return rec, nil
}

// List returns every record, oldest first.
func (s *LocalStore) List(ctx context.Context) ([]ExtractionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, status, error, result_json, created_at FROM extractions ORDER BY created_at, source`)
	if err != nil {
		return nil, fmt.Errorf("%w: list extractions: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []ExtractionRecord
	for rows.Next() {
		var (
			id, status, created string
			rec                 ExtractionRecord
			payload             sql.NullString
		)
		if err := rows.Scan(&id, &rec.Source, &status, &rec.Error, &payload, &created); err != nil {
			return nil, fmt.Errorf("%w: scan extraction: %v", common.ErrDatabase, err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, common.WrapError(err, "parse extraction id")
		}
		rec.Status = constants.JobStatus(status)
		if rec.CreatedAt, err = time.Parse(storeTimeLayout, created); err != nil {
			return nil, common.WrapError(err, "parse created_at")
		}
		if payload.Valid {
			var res entity.Result
			if err := json.Unmarshal([]byte(payload.String), &res); err != nil {
				return nil, common.WrapError(err, "decode result")
			}
			rec.Result = &res
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
