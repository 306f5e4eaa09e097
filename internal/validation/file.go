package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints is a whitelist of content types and extensions plus a size cap.
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	// ImageConstraints covers screenshots and photos used as goal evidence.
	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
		},
		MaxSize: 5 << 20,
	}

	// DocumentConstraints covers certificates and write-ups.
	DocumentConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"application/pdf":           true,
			"text/plain; charset=utf-8": true,
		},
		AllowedExtensions: map[string]bool{
			".pdf": true,
			".txt": true,
			".md":  true,
		},
		MaxSize: 10 << 20,
	}
)

// ValidateFile accepts the upload if it satisfies any of the constraint sets.
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) error {
	if len(constraints) == 0 {
		return fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, c := range constraints {
		err := validateAgainstConstraint(header, c)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return lastErr
}

func validateAgainstConstraint(header *multipart.FileHeader, c FileConstraints) error {
	if header.Size > c.MaxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", c.MaxSize/(1<<20))
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Sniff the real type from the first 512 bytes; the client header is not trusted.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	detected := http.DetectContentType(buffer[:n])
	if !c.AllowedMimeTypes[detected] {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !c.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
