package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// StoredFile describes a receipt after it has been written.
type StoredFile struct {
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

// ReceiptStore writes uploaded receipts below baseDir, one directory per
// month, under a random name that keeps the original extension.
type ReceiptStore struct {
	fs      afero.Fs
	baseDir string
	now     func() time.Time
	logger  *slog.Logger
}

func NewReceiptStore(fs afero.Fs, baseDir string, logger *slog.Logger) *ReceiptStore {
	return &ReceiptStore{
		fs:      fs,
		baseDir: baseDir,
		now:     time.Now,
		logger:  logger,
	}
}

// NewOSReceiptStore stores receipts on the local filesystem.
func NewOSReceiptStore(baseDir string, logger *slog.Logger) *ReceiptStore {
	return NewReceiptStore(afero.NewOsFs(), baseDir, logger)
}

// Save copies one multipart file into the store. The media type is the
// declared one unless the part declares nothing useful, in which case it is
// sniffed from the content.
func (s *ReceiptStore) Save(ctx context.Context, fh *multipart.FileHeader) (StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		detected, err := mimetype.DetectReader(src)
		if err != nil {
			return StoredFile{}, fmt.Errorf("detect media type of %s: %w", fh.Filename, err)
		}
		mimeType = detected.String()
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return StoredFile{}, fmt.Errorf("rewind upload %s: %w", fh.Filename, err)
		}
	}

	rel := s.relativePath(fh.Filename)
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))

	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create receipt directory: %w", err)
	}

	dst, err := s.fs.Create(full)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create receipt file: %w", err)
	}

	written, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(full)
		if copyErr != nil {
			return StoredFile{}, fmt.Errorf("write receipt %s: %w", fh.Filename, copyErr)
		}
		return StoredFile{}, fmt.Errorf("close receipt %s: %w", fh.Filename, closeErr)
	}

	s.logger.Debug("receipt stored", "file_name", fh.Filename, "path", rel, "size", written, "mime_type", mimeType)

	return StoredFile{
		OriginalName: fh.Filename,
		Path:         rel,
		Size:         written,
		MimeType:     mimeType,
	}, nil
}

// Remove deletes a stored receipt by the path Save returned.
func (s *ReceiptStore) Remove(ctx context.Context, rel string) error {
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := s.fs.Remove(full); err != nil {
		return fmt.Errorf("remove receipt %s: %w", rel, err)
	}
	return nil
}

func (s *ReceiptStore) relativePath(original string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	month := s.now().Format("2006/01")
	return path.Join(month, uuid.NewString()+ext)
}
