// internal/docstore/store.go

// Package docstore persists JSON documents addressed by database,
// collection and id.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrDuplicateDocument = errors.New("DUPLICATE_DOCUMENT")
	ErrDocumentNotFound  = errors.New("DOCUMENT_NOT_FOUND")
	ErrCreateFailed      = errors.New("DOCUMENT_CREATE_FAILED")
)

// Document is a stored JSON object and its address.
type Document struct {
	DatabaseID   string          `json:"databaseId"`
	CollectionID string          `json:"collectionId"`
	ID           string          `json:"id"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v interface{}) error {
	return json.Unmarshal(d.Data, v)
}

// Store creates and reads documents.
type Store interface {
	CreateDocument(ctx context.Context, databaseID, collectionID, id string, fields interface{}) (*Document, error)
	GetDocument(ctx context.Context, databaseID, collectionID, id string) (*Document, error)
}
