package cache

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by GetDocument when the namespace holds no such document.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentCache stores small JSON documents grouped by namespace.
// A document is always written whole; there are no partial updates.
type DocumentCache interface {
	// GetDocument returns the raw document id of namespace.
	GetDocument(ctx context.Context, namespace, id string) ([]byte, error)

	// PutDocument overwrites the document id of namespace.
	PutDocument(ctx context.Context, namespace, id string, doc []byte) error

	// DeleteDocument removes the document id of namespace. Removing a missing document is not an error.
	DeleteDocument(ctx context.Context, namespace, id string) error

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
