package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// allowedContentTypes are the MIME types browsers and CLI tools send for CSV.
var allowedContentTypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// checkUpload rejects requests that must not be parsed at all.
func (s *Service) checkUpload(req UploadRequest) error {
	if req.Body == nil || req.FileName == "" {
		return ErrNoFile
	}
	if req.Size > s.opts.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, req.Size, s.opts.MaxFileSize)
	}
	if !acceptedFile(req.FileName, req.ContentType) {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, req.FileName, req.ContentType)
	}
	return nil
}

// acceptedFile allows a known CSV MIME type, or a .csv name when the client
// sent no useful type.
func acceptedFile(name, contentType string) bool {
	isCSVName := strings.EqualFold(filepath.Ext(name), ".csv")

	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return false
		}
		mediaType = mt
	}

	switch mediaType {
	case "", "application/octet-stream":
		return isCSVName
	default:
		return allowedContentTypes[mediaType]
	}
}

// spoolUpload lands the body in a temp file, enforcing limit, then reads it
// back as normalized text. The temp file is removed on every path.
func spoolUpload(body io.Reader, dir string, limit int64) (text string, n int64, err error) {
	err = withTempFile(dir, "upload-*.csv", func(f *os.File) error {
		n, err = io.Copy(f, io.LimitReader(body, limit+1))
		if err != nil {
			return fmt.Errorf("write temp file: %w", err)
		}
		if n > limit {
			return fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind temp file: %w", err)
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("read temp file: %w", err)
		}
		text = normalizeInput(data)
		return nil
	})
	return text, n, err
}

// withTempFile creates a temp file in dir (os.TempDir when empty), passes it to
// fn, then closes and deletes it whatever fn returns.
func withTempFile(dir, pattern string, fn func(f *os.File) error) error {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			slog.Warn("failed to remove temp upload file",
				slog.String("path", f.Name()),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	return fn(f)
}
