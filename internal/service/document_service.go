package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document, data []byte, chunkSize int) error
	FindMetaForOwner(ctx context.Context, id, ownerID string) (*models.Document, error)
	ReadContent(ctx context.Context, id string) ([]byte, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// DocumentConfig bounds uploads.
type DocumentConfig struct {
	MaxFileSizeBytes int64
	ChunkSizeBytes   int
	AllowedMIMEs     []string
}

// UploadInput is one file extracted from a multipart request.
type UploadInput struct {
	Filename    string
	ContentType string
	Label       string
	Data        []byte
}

// DocumentService stores applicant submissions as chunked rows in the
// database. Every read is scoped to the owning applicant.
type DocumentService struct {
	documents documentRepository
	config    DocumentConfig
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(documents documentRepository, config DocumentConfig, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if config.ChunkSizeBytes <= 0 {
		config.ChunkSizeBytes = 256 * 1024
	}
	return &DocumentService{documents: documents, config: config, logger: logger}
}

// Upload validates and stores a batch of files for the owner. The batch is
// rejected up front when any file is oversized or of a disallowed type.
func (s *DocumentService) Upload(ctx context.Context, ownerID string, files []UploadInput) ([]dto.UploadedFile, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files provided")
	}

	for _, file := range files {
		if int64(len(file.Data)) > s.config.MaxFileSizeBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s exceeds the %d byte upload limit", file.Filename, s.config.MaxFileSizeBytes))
		}
		if !s.mimeAllowed(file.ContentType) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s has unsupported type %s", file.Filename, file.ContentType))
		}
	}

	uploaded := make([]dto.UploadedFile, 0, len(files))
	for _, file := range files {
		label := file.Label
		if label == "" {
			label = models.DefaultDocumentLabel
		}
		doc := &models.Document{
			OwnerID:     ownerID,
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Label:       label,
		}
		if err := s.documents.Create(ctx, doc, file.Data, s.config.ChunkSizeBytes); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
		}
		uploaded = append(uploaded, dto.UploadedFile{
			FileID:      doc.ID,
			Filename:    doc.Filename,
			Size:        doc.SizeBytes,
			ContentType: doc.ContentType,
		})
	}

	s.logger.Info("documents uploaded", zap.String("owner_id", ownerID), zap.Int("count", len(uploaded)))
	return uploaded, nil
}

// Fetch returns the metadata and reassembled bytes of a single document. The
// owner scope is part of the lookup, so a wrong owner sees not-found.
func (s *DocumentService) Fetch(ctx context.Context, documentID, ownerID string) (*models.Document, []byte, error) {
	doc, err := s.documents.FindMetaForOwner(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	content, err := s.documents.ReadContent(ctx, doc.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document")
	}
	return doc, content, nil
}

// ListByOwner groups the owner's documents by label for the profile view.
func (s *DocumentService) ListByOwner(ctx context.Context, ownerID string) (map[string][]models.Document, error) {
	docs, err := s.documents.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	grouped := make(map[string][]models.Document)
	for _, doc := range docs {
		grouped[doc.Label] = append(grouped[doc.Label], doc)
	}
	return grouped, nil
}

// Delete removes one of the owner's documents and its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID, ownerID string) error {
	if err := s.documents.Delete(ctx, documentID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	return nil
}

func (s *DocumentService) mimeAllowed(contentType string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedMIMEs {
		if contentType == allowed {
			return true
		}
	}
	return false
}
