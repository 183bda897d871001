package content

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
)

// CodeInvalidImageType is raised for uploads outside the extension allow-list
const CodeInvalidImageType = "INVALID_IMAGE_TYPE"

// ErrImageTypeNotAllowed is returned for unsupported image extensions
var ErrImageTypeNotAllowed = shared.NewDomainError(CodeInvalidImageType, "File type not allowed")

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageStorage stores uploaded images and serves them under a public URL
type ImageStorage interface {
	// Save stores the object under name and returns its public URL
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object behind a managed URL
	Delete(ctx context.Context, url string) error
	// IsManaged reports whether url points at an object this storage owns
	IsManaged(url string) bool
}

// AllowedImage reports whether filename carries an accepted image extension
func AllowedImage(filename string) bool {
	return allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ImageObjectName builds the stored name "<unix-nanos>_<sanitized name>"
func ImageObjectName(now time.Time, filename string) string {
	return strconv.FormatInt(now.UnixNano(), 10) + "_" + SanitizeFilename(filename)
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore. Leading dots are dropped.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return "image"
	}
	return name
}
