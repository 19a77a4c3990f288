package document

import "context"

// Store persists issuance records. Create returns sentinel.ErrConflict when
// the document hash already exists; FindByHash returns sentinel.ErrNotFound
// for unknown hashes.
type Store interface {
	Create(ctx context.Context, doc *IssuedDocument) error
	FindByHash(ctx context.Context, docHash string) (*IssuedDocument, error)
	CountValid(ctx context.Context) (int64, error)
}
