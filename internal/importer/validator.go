package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"okrhub/internal/common"
)

const (
	// MaxUploadBytes caps upload size at 10MB
	MaxUploadBytes = 10 << 20
	// MaxUploadMB is the client-facing limit
	MaxUploadMB = 10
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

var allowedContentTypes = map[string]bool{
	"text/csv":          true,
	"application/csv":   true,
	"text/plain":        true, // CSVs are frequently declared as plain text
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/octet-stream":                                         true,
}

// ValidateFileMeta checks the declared filename, size and content type before
// a signed URL is issued.
func ValidateFileMeta(filename string, size int64, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: file type %q is not supported, expected .csv or .xlsx", common.ErrValidation, ext)
	}
	if contentType != "" && !allowedContentTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("%w: content type %q is not supported", common.ErrValidation, contentType)
	}
	if size <= 0 {
		return fmt.Errorf("%w: file size must be positive", common.ErrValidation)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("%w: file exceeds the %dMB limit", common.ErrValidation, MaxUploadMB)
	}
	return nil
}

// ValidateContent re-checks the uploaded bytes after the client's direct
// upload. Extension alone is not trusted; the content is sniffed.
func ValidateContent(filename string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: uploaded file is empty", common.ErrValidation)
	}
	if len(data) > MaxUploadBytes {
		return fmt.Errorf("%w: file exceeds the %dMB limit", common.ErrValidation, MaxUploadMB)
	}

	detected := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		if !detected.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") && !detected.Is("application/zip") {
			return fmt.Errorf("%w: file content does not look like an XLSX workbook (detected %s)", common.ErrValidation, detected.String())
		}
	case ".csv":
		if !detected.Is("text/csv") && !detected.Is("text/plain") && !strings.HasPrefix(detected.String(), "text/") {
			return fmt.Errorf("%w: file content does not look like CSV (detected %s)", common.ErrValidation, detected.String())
		}
	default:
		return fmt.Errorf("%w: file type %q is not supported, expected .csv or .xlsx", common.ErrValidation, ext)
	}
	return nil
}

// Checksum returns the hex-encoded SHA-256 of the file content
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum compares the client-declared checksum against the uploaded
// content. An empty expectation skips verification.
func VerifyChecksum(expected string, data []byte) error {
	if expected == "" {
		return nil
	}
	actual := Checksum(data)
	if !strings.EqualFold(expected, actual) {
		return fmt.Errorf("%w: checksum mismatch, declared %s but uploaded content hashes to %s", common.ErrValidation, expected, actual)
	}
	return nil
}
