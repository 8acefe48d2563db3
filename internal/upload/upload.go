// Package upload implements the photo upload guard: it validates a single
// multipart file field and persists the bytes under a collision-resistant
// name before the handler proceeds.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"planets-api/internal/shared/config"
	"planets-api/internal/shared/errors"

	"github.com/google/uuid"
)

// ErrNoFile reports that the request carried no file at all. The handler
// owns the response for this case.
var ErrNoFile = fmt.Errorf("no file attached")

// InvalidTypeMessage is the exact client-visible text for a rejected MIME
// type.
const InvalidTypeMessage = "Error: uploaded file must be a .png, .jpg or .jpeg image"

// extensionsByMIME doubles as the MIME allowlist.
var extensionsByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

type Guard struct {
	dir         string
	maxFileSize int64
	logger      *slog.Logger
}

func NewGuard(cfg *config.Config, logger *slog.Logger) *Guard {
	logger.Debug("Initializing upload guard",
		"dir", cfg.Upload.Dir,
		"max_file_size", cfg.Upload.MaxFileSize,
	)

	return &Guard{
		dir:         cfg.Upload.Dir,
		maxFileSize: cfg.Upload.MaxFileSize,
		logger:      logger,
	}
}

// Dir returns the directory uploaded files are stored in.
func (g *Guard) Dir() string {
	return g.dir
}

// ProcessPhoto validates the named multipart file field and stores its bytes.
// It returns the generated filename, ErrNoFile when the field is absent, or
// an upload_rejected error for a bad MIME type or an oversize file.
func (g *Guard) ProcessPhoto(r *http.Request, field string) (string, error) {
	logger := g.logger.With("component", "upload_guard", "field", field)

	if err := r.ParseMultipartForm(g.maxFileSize); err != nil {
		if err == http.ErrNotMultipart || err == http.ErrMissingBoundary {
			logger.Debug("Request is not multipart", "error", err)
			return "", ErrNoFile
		}
		logger.Error("Failed to parse multipart form", "error", err)
		return "", errors.WrapInternal("failed to parse multipart form", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			logger.Debug("No file attached")
			return "", ErrNoFile
		}
		logger.Error("Failed to read multipart file", "error", err)
		return "", errors.WrapInternal("failed to read uploaded file", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Failed to close uploaded file", "error", err)
		}
	}()

	mimeType := header.Header.Get("Content-Type")
	ext, ok := extensionsByMIME[mimeType]
	if !ok {
		logger.Info("Rejected upload with invalid MIME type", "mime_type", mimeType)
		return "", errors.UploadRejected(InvalidTypeMessage)
	}

	if header.Size > g.maxFileSize {
		logger.Info("Rejected oversize upload", "size", header.Size, "max", g.maxFileSize)
		return "", errors.UploadRejected("File too large")
	}

	filename := GenerateFilename(ext)

	if err := g.store(file, filename, logger); err != nil {
		return "", err
	}

	logger.Debug("Upload stored",
		"filename", filename,
		"size", header.Size,
		"mime_type", mimeType,
	)

	return filename, nil
}

// GenerateFilename builds a stored name that cannot collide even under
// concurrent uploads: a random UUID plus the current unix-millis timestamp.
func GenerateFilename(ext string) string {
	return fmt.Sprintf("%s-%d.%s", uuid.NewString(), time.Now().UnixMilli(), ext)
}

func (g *Guard) store(file multipart.File, filename string, logger *slog.Logger) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", "error", err)
		return errors.WrapInternal("failed to create upload directory", err)
	}

	dst, err := os.Create(filepath.Join(g.dir, filename))
	if err != nil {
		logger.Error("Failed to create upload file", "error", err)
		return errors.WrapInternal("failed to store uploaded file", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		if closeErr := dst.Close(); closeErr != nil {
			logger.Error("Failed to close upload file after write failure", "error", closeErr)
		}
		logger.Error("Failed to write upload file", "error", err)
		return errors.WrapInternal("failed to store uploaded file", err)
	}

	if err := dst.Close(); err != nil {
		logger.Error("Failed to close upload file", "error", err)
		return errors.WrapInternal("failed to store uploaded file", err)
	}

	return nil
}
