// internal/docstore/postgres.go
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const (
	documentsTable      = "documents"
	uniqueViolationCode = "23505"
)

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) CreateDocument(ctx context.Context, databaseID, collectionID, id string, fields interface{}) (*Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encode fields: %v", ErrCreateFailed, err)
	}

	query, args, err := s.qb.
		Insert(documentsTable).
		Columns("database_id", "collection_id", "id", "data").
		Values(databaseID, collectionID, id, string(data)).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build query: %v", ErrCreateFailed, err)
	}

	var createdAt time.Time
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrDuplicateDocument, databaseID, collectionID, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	return &Document{
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		ID:           id,
		Data:         data,
		CreatedAt:    createdAt.UTC(),
	}, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, databaseID, collectionID, id string) (*Document, error) {
	query, args, err := s.qb.
		Select("data", "created_at").
		From(documentsTable).
		Where(sq.Eq{"database_id": databaseID, "collection_id": collectionID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var (
		data      []byte
		createdAt time.Time
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrDocumentNotFound, databaseID, collectionID, id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &Document{
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		ID:           id,
		Data:         data,
		CreatedAt:    createdAt.UTC(),
	}, nil
}
