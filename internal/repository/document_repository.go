package repository

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eteeap/admissions-api/internal/models"
)

const documentColumns = `id, owner_id, filename, content_type, label, size_bytes, upload_date`

// DocumentRepository stores uploaded files as a metadata row plus an ordered
// sequence of byte chunks, all inside the application database.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists the metadata row and every chunk in one transaction, so a
// failed upload leaves no partial file behind.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document, data []byte, chunkSize int) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}
	doc.SizeBytes = int64(len(data))
	if chunkSize <= 0 {
		chunkSize = 256 * 1024
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document tx: %w", err)
	}
	defer tx.Rollback()

	const metaQuery = `INSERT INTO documents (id, owner_id, filename, content_type, label, size_bytes, upload_date)
		VALUES (:id, :owner_id, :filename, :content_type, :label, :size_bytes, :upload_date)`
	if _, err := tx.NamedExecContext(ctx, metaQuery, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	const chunkQuery = `INSERT INTO document_chunks (document_id, seq, data) VALUES ($1, $2, $3)`
	for seq := 0; seq*chunkSize < len(data); seq++ {
		end := (seq + 1) * chunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := tx.ExecContext(ctx, chunkQuery, doc.ID, seq, data[seq*chunkSize:end]); err != nil {
			return fmt.Errorf("write document chunk %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document tx: %w", err)
	}
	return nil
}

// FindMetaForOwner returns the metadata row only when the document belongs to
// the owner. Ownership is part of the lookup key so callers cannot reach
// another applicant's files.
func (r *DocumentRepository) FindMetaForOwner(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 AND owner_id = $2 LIMIT 1`, documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

// ReadContent reassembles the file from its chunks in sequence order.
func (r *DocumentRepository) ReadContent(ctx context.Context, id string) ([]byte, error) {
	const query = `SELECT data FROM document_chunks WHERE document_id = $1 ORDER BY seq ASC`
	var chunks [][]byte
	if err := r.db.SelectContext(ctx, &chunks, query, id); err != nil {
		return nil, fmt.Errorf("read document chunks: %w", err)
	}
	var buf bytes.Buffer
	for _, chunk := range chunks {
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}

// ListByOwner returns the owner's document metadata, oldest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE owner_id = $1 ORDER BY upload_date ASC`, documentColumns)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, ownerID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document owned by ownerID. Chunks cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
