// Package store persists finished build runs to PostgreSQL. Each run gets a
// row in pkn_runs and its edges land in pkn_edges via COPY, so a full
// network with a few hundred thousand edges loads in one round trip per
// batch.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Run identifies one persisted build.
type Run struct {
	ID        string
	Organism  int
	Subset    string
	CreatedAt time.Time
}

// NewRun creates a Run with a fresh UUID.
func NewRun(organism int, subset string) Run {
	return Run{
		ID:        uuid.NewString(),
		Organism:  organism,
		Subset:    subset,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the PostgreSQL persistence layer.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

var edgeColumns = []string{
	"run_id", "source", "target",
	"source_type", "target_type",
	"id_type_a", "id_type_b",
	"interaction_type", "resource", "mor",
	"locations", "attrs",
}

// SaveRun inserts the run row and bulk-copies its edges in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, rows []schemas.Interaction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit reports ErrTxClosed; that is not
		// worth an error log.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO pkn_runs (id, organism, subset, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Organism, run.Subset, run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(rows) > 0 {
		if err := s.copyEdges(ctx, tx, run.ID, rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("run persisted",
		zap.String("run_id", run.ID),
		zap.Int("edges", len(rows)),
	)
	return nil
}

func (s *Store) copyEdges(ctx context.Context, tx pgx.Tx, runID string, rows []schemas.Interaction) error {
	records := make([][]interface{}, len(rows))
	for i, row := range rows {
		attrs, err := json.Marshal(row.Attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal attrs for %s → %s: %w", row.Source, row.Target, err)
		}
		records[i] = []interface{}{
			runID, row.Source, row.Target,
			string(row.SourceType), string(row.TargetType),
			string(row.IDTypeA), string(row.IDTypeB),
			row.InteractionType, row.Resource, row.Mor,
			row.Locations, attrs,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"pkn_edges"},
		edgeColumns,
		pgx.CopyFromRows(records),
	)
	if err != nil {
		return fmt.Errorf("failed to copy edges: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied edge count: expected %d, got %d", len(rows), copyCount)
	}
	return nil
}

// GetEdgesByRunID loads every edge of one run in insertion order.
func (s *Store) GetEdgesByRunID(ctx context.Context, runID string) ([]schemas.Interaction, error) {
	query := `
        SELECT source, target, source_type, target_type, id_type_a, id_type_b,
               interaction_type, resource, mor, locations, attrs
        FROM pkn_edges
        WHERE run_id = $1
        ORDER BY id ASC;
    `
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []schemas.Interaction
	for rows.Next() {
		var (
			edge                                 schemas.Interaction
			sourceType, targetType, typeA, typeB string
			attrs                                []byte
		)
		err := rows.Scan(
			&edge.Source, &edge.Target,
			&sourceType, &targetType,
			&typeA, &typeB,
			&edge.InteractionType, &edge.Resource, &edge.Mor,
			&edge.Locations, &attrs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		edge.SourceType = schemas.EntityType(sourceType)
		edge.TargetType = schemas.EntityType(targetType)
		edge.IDTypeA = schemas.IDType(typeA)
		edge.IDTypeB = schemas.IDType(typeB)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &edge.Attrs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attrs: %w", err)
			}
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return edges, nil
}
