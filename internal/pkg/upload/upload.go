package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5 MB
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/uploads"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrInvalidMimeType = errors.New("unsupported file type")
)

// AllowedImageTypes lists the MIME types accepted for device photos.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SavedFile describes a file written to disk by SaveImage.
type SavedFile struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
}

// Saver writes repair-order images to the local disk under a
// per-order directory: <baseDir>/repairs/<orderID>/<uuid><ext>.
type Saver struct {
	baseDir string
}

func NewSaver(baseDir string) *Saver {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	return &Saver{baseDir: baseDir}
}

func (s *Saver) BaseDir() string { return s.baseDir }

// OrderDir returns the directory holding a repair order's files.
func (s *Saver) OrderDir(orderID int64) string {
	return filepath.Join(s.baseDir, "repairs", fmt.Sprintf("%d", orderID))
}

// SaveImage validates and writes one uploaded image. The stored
// filename is randomized; the extension comes from the original name
// or, when absent, is inferred from the detected MIME type.
func (s *Saver) SaveImage(orderID int64, fh *multipart.FileHeader) (*SavedFile, error) {
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedImageTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	dir := s.OrderDir(orderID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	filename := uuid.New().String() + ext

	absPath := filepath.Join(dir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &SavedFile{
		Filename:     filename,
		OriginalName: filepath.Base(fh.Filename),
		MimeType:     mimeType,
		Size:         fh.Size,
	}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Saver) Remove(orderID int64, filename string) error {
	err := os.Remove(filepath.Join(s.OrderDir(orderID), filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveOrderDir deletes an order's whole upload directory.
func (s *Saver) RemoveOrderDir(orderID int64) error {
	return os.RemoveAll(s.OrderDir(orderID))
}

// PublicURL returns the path a stored file is served under.
func (s *Saver) PublicURL(orderID int64, filename string) string {
	return fmt.Sprintf("%s/repairs/%d/%s", StaticURLBase, orderID, filename)
}

func mimeToExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
