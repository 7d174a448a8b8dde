package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// StagingTable is where extracted papers wait for review.
const StagingTable = "soles.papers_staging"

// StagingRepository stores pipeline results for review.
type StagingRepository interface {
	Stage(ctx context.Context, res *entity.Result, ingestionSource string) (uuid.UUID, error)
}

type stagingRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewStagingRepository(pool *pgxpool.Pool, log *slog.Logger) StagingRepository {
	if log == nil {
		log = slog.Default()
	}
	return &stagingRepo{pool: pool, log: log}
}

const insertStaged = `
INSERT INTO ` + StagingTable + ` (title, authors, journal, year, abstract, ingestion_source, embedding)
VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7::vector)
RETURNING id::text`

func (r *stagingRepo) Stage(ctx context.Context, res *entity.Result, ingestionSource string) (uuid.UUID, error) {
	md := res.Metadata
	authors := md.Authors
	if authors == nil {
		authors = []string{}
	}
	var embedding any
	if len(res.Embedding) > 0 {
		embedding = VectorLiteral(res.Embedding)
	}

	var idText string
	err := r.pool.QueryRow(ctx, insertStaged,
		md.Title, authors, md.Journal, md.Year, md.Abstract, ingestionSource, embedding,
	).Scan(&idText)
	if err != nil {
		r.log.Error("papers_staging insert failed", "run_id", res.RunID, "err", err)
		return uuid.Nil, fmt.Errorf("%w: insert staged paper: %v", common.ErrDatabase, err)
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return uuid.Nil, common.WrapError(err, "parse staged id")
	}
	r.log.Info("papers_staging inserted", "id", id, "run_id", res.RunID, "title", md.Title)
	return id, nil
}

// VectorLiteral renders an embedding in pgvector text form, e.g. [0.1,0.2].
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// CountStaged returns the number of rows waiting in the staging table.
func CountStaged(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var n int64
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+StagingTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count staged papers: %v", common.ErrDatabase, err)
	}
	return n, nil
}
