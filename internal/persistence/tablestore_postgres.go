package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresTableStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTableStore backs logical tables by the table_entities relation.
func NewPostgresTableStore(pool *pgxpool.Pool) TableStore {
	return &postgresTableStore{pool: pool}
}

func (s *postgresTableStore) CreateTableIfNotExists(ctx context.Context, table string) error {
	const query = `INSERT INTO entity_tables (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	_, err := s.pool.Exec(ctx, query, table)
	return err
}

func (s *postgresTableStore) Upsert(ctx context.Context, table string, rec Record) error {
	const query = `
        INSERT INTO table_entities (table_name, partition_key, row_key, data, etag, updated_at)
        VALUES ($1,$2,$3,$4,$5,NOW())
        ON CONFLICT (table_name, partition_key, row_key)
        DO UPDATE SET data=EXCLUDED.data, etag=EXCLUDED.etag, updated_at=NOW()`
	_, err := s.pool.Exec(ctx, query, table, rec.PartitionKey, rec.RowKey, rec.Data, uuid.NewString())
	return err
}

func (s *postgresTableStore) Get(ctx context.Context, table, partitionKey, rowKey string) (*Record, error) {
	const query = `
        SELECT partition_key, row_key, data, etag, updated_at
        FROM table_entities WHERE table_name=$1 AND partition_key=$2 AND row_key=$3`
	var rec Record
	err := s.pool.QueryRow(ctx, query, table, partitionKey, rowKey).Scan(
		&rec.PartitionKey,
		&rec.RowKey,
		&rec.Data,
		&rec.ETag,
		&rec.Timestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *postgresTableStore) Query(ctx context.Context, table, partitionKey string) ([]Record, error) {
	const query = `
        SELECT partition_key, row_key, data, etag, updated_at
        FROM table_entities WHERE table_name=$1 AND partition_key=$2
        ORDER BY row_key`
	rows, err := s.pool.Query(ctx, query, table, partitionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.PartitionKey, &rec.RowKey, &rec.Data, &rec.ETag, &rec.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (s *postgresTableStore) Delete(ctx context.Context, table, partitionKey, rowKey string) error {
	const query = `DELETE FROM table_entities WHERE table_name=$1 AND partition_key=$2 AND row_key=$3`
	_, err := s.pool.Exec(ctx, query, table, partitionKey, rowKey)
	return err
}
