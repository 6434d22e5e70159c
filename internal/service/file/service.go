package file

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
	"github.com/google/uuid"
)

type FileService interface {
	// ArchiveExport stores a generated export and returns its storage path
	ArchiveExport(ctx context.Context, workspaceID string, filename string, contentType string, data []byte) (string, error)

	// GetFileURL returns the URL an archived file is served from
	GetFileURL(ctx context.Context, path string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// ArchiveExport implements FileService.
// Path: exports/{workspaceID}/{yyyy-mm-dd}/{uuid}-{filename}
func (s *fileServiceImpl) ArchiveExport(ctx context.Context, workspaceID string, filename string, contentType string, data []byte) (string, error) {
	if workspaceID == "" || strings.ContainsAny(workspaceID, `/\`) {
		return "", fmt.Errorf("invalid workspace id: %q", workspaceID)
	}

	base := path.Base(filename)
	if base == "." || base == "/" || strings.ContainsAny(base, `\`) {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}

	uniqueID := uuid.New().String()
	storagePath := path.Join("exports", workspaceID, s.now().Format("2006-01-02"), uniqueID+"-"+base)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(data), storagePath, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}

	return uploadedPath, nil
}

// GetFileURL implements FileService.
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string) (string, error) {
	return s.storage.GetURL(ctx, path)
}
