package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type mockDocumentRepo struct {
	docs    []models.Document
	content map[string][]byte
	deleted []string
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document, data []byte, chunkSize int) error {
	doc.ID = fmt.Sprintf("doc-%d", len(m.docs)+1)
	doc.SizeBytes = int64(len(data))
	m.docs = append(m.docs, *doc)
	if m.content == nil {
		m.content = make(map[string][]byte)
	}
	m.content[doc.ID] = data
	return nil
}

func (m *mockDocumentRepo) FindMetaForOwner(ctx context.Context, id, ownerID string) (*models.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id && m.docs[i].OwnerID == ownerID {
			return &m.docs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) ReadContent(ctx context.Context, id string) ([]byte, error) {
	return m.content[id], nil
}

func (m *mockDocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, doc := range m.docs {
		if doc.ID == id && doc.OwnerID == ownerID {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newDocumentService(repo *mockDocumentRepo) *DocumentService {
	return NewDocumentService(repo, DocumentConfig{
		MaxFileSizeBytes: 1024,
		ChunkSizeBytes:   256,
		AllowedMIMEs:     []string{"application/pdf", "image/png"},
	}, zap.NewNop())
}

func TestUploadStoresFiles(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	uploaded, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "transcript.pdf", ContentType: "application/pdf", Data: []byte("pdf-bytes")},
		{Filename: "diploma.png", ContentType: "image/png", Label: "supporting", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	require.Len(t, uploaded, 2)
	assert.Equal(t, models.DefaultDocumentLabel, repo.docs[0].Label)
	assert.Equal(t, "supporting", repo.docs[1].Label)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	_, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "big.pdf", ContentType: "application/pdf", Data: bytes.Repeat([]byte{0x01}, 2048)},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.docs)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	_, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "script.exe", ContentType: "application/octet-stream", Data: []byte("bin")},
	})
	require.Error(t, err)
	assert.Empty(t, repo.docs)
}

func TestUploadRejectsWholeBatchOnOneBadFile(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	_, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "ok.pdf", ContentType: "application/pdf", Data: []byte("fine")},
		{Filename: "bad.exe", ContentType: "application/octet-stream", Data: []byte("bin")},
	})
	require.Error(t, err)
	assert.Empty(t, repo.docs)
}

func TestFetchScopedToOwner(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	uploaded, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "transcript.pdf", ContentType: "application/pdf", Data: []byte("pdf-bytes")},
	})
	require.NoError(t, err)

	doc, content, err := svc.Fetch(context.Background(), uploaded[0].FileID, "a1")
	require.NoError(t, err)
	assert.Equal(t, "transcript.pdf", doc.Filename)
	assert.Equal(t, []byte("pdf-bytes"), content)

	_, _, err = svc.Fetch(context.Background(), uploaded[0].FileID, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListByOwnerGroupsByLabel(t *testing.T) {
	repo := &mockDocumentRepo{}
	svc := newDocumentService(repo)

	_, err := svc.Upload(context.Background(), "a1", []UploadInput{
		{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("a")},
		{Filename: "b.pdf", ContentType: "application/pdf", Data: []byte("b")},
		{Filename: "c.png", ContentType: "image/png", Label: "supporting", Data: []byte("c")},
	})
	require.NoError(t, err)

	grouped, err := svc.ListByOwner(context.Background(), "a1")
	require.NoError(t, err)
	assert.Len(t, grouped[models.DefaultDocumentLabel], 2)
	assert.Len(t, grouped["supporting"], 1)
}
